package pattern

import (
	"github.com/blender/bslc/scope"
	"github.com/blender/bslc/token"
)

// Match is one successful match: one token.Token per pattern element
// (Invalid for unmatched optionals and the ".." control element), plus the
// token index range it consumed.
type Match struct {
	Tokens []token.Token
	Start  int32
	End    int32 // exclusive
}

// Callback receives a Match; returning false stops the scan early.
type Callback func(Match) bool

// tokenSource is the minimal view a Matcher needs: a stream plus the scope
// tree (for the ".." end-of-scope control element and scope-filtered
// scans).
type tokenSource struct {
	s    *token.Stream
	tree *scope.Tree
}

// Scan runs p against the half-open token range [start, end) of s,
// left-to-right and non-overlapping, invoking cb for every match. tree may
// be nil unless p uses the ".." control element.
func (p *Pattern) Scan(s *token.Stream, tree *scope.Tree, start, end int32, cb Callback) {
	src := tokenSource{s: s, tree: tree}
	i := start
	for i < end {
		if m, next, ok := p.tryMatch(src, i, end); ok {
			if !cb(m) {
				return
			}
			if next <= i {
				next = i + 1
			}
			i = next
			continue
		}
		i++
	}
}

// tryMatch attempts to match p starting exactly at i. Returns the match,
// the index just past it, and whether it succeeded.
func (p *Pattern) tryMatch(src tokenSource, i, end int32) (Match, int32, bool) {
	m := Match{Tokens: make([]token.Token, len(p.elems)), Start: i}
	cur := i

	for ei, e := range p.elems {
		if e.kind == elemToScopeEnd {
			scopeEnd := end
			if src.tree != nil && cur > 0 {
				ownerScope := -1
				if int(cur-1) < len(src.tree.Owner) {
					ownerScope = int(src.tree.Owner[cur-1])
				}
				if ownerScope >= 0 {
					_, r := src.tree.At(ownerScope)
					scopeEnd = r.End
				}
			}
			m.Tokens[ei] = token.Token{}
			cur = scopeEnd
			continue
		}

		if cur >= end {
			if e.optional {
				m.Tokens[ei] = token.Token{}
				continue
			}
			return Match{}, 0, false
		}

		tok := src.s.At(int(cur))
		if matches(e, tok) {
			m.Tokens[ei] = tok
			cur++
			continue
		}

		if e.optional {
			m.Tokens[ei] = token.Token{}
			continue
		}
		return Match{}, 0, false
	}

	m.End = cur
	return m, cur, true
}

func matches(e elem, tok token.Token) bool {
	if tok.Kind == token.EOF {
		return false
	}
	switch e.kind {
	case elemWord:
		return tok.Kind == token.Word
	case elemNumber:
		return tok.Kind == token.Number
	case elemString:
		return tok.Kind == token.String
	case elemKeyword, elemLiteral:
		return tok.Kind == e.lit
	default:
		return false
	}
}
