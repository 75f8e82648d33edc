package lexer

import (
	"github.com/blender/bslc/atom"
	"github.com/blender/bslc/token"
)

// MergeLiterals runs the second lexer pass (spec.md §4.2): string literals
// and numeric literals that were tokenized as several adjacent raw tokens
// are merged into one String/Number token each. The result is a new stream;
// s itself is left unchanged.
func MergeLiterals(src string, s *token.Stream) *token.Stream {
	out := &token.Stream{}
	n := s.Len()

	for i := 0; i < n; {
		k := s.Kinds[i]

		if k == token.Kind('"') {
			j := mergeStringLiteral(s, i)
			out.Push(token.Token{Kind: token.String, Start: s.Starts[i], End: s.Ends[j-1]}, atom.Invalid)
			i = j
			continue
		}

		if k == token.Number {
			j := mergeNumberLiteral(src, s, i)
			out.Push(token.Token{Kind: token.Number, Start: s.Starts[i], End: s.Ends[j-1]}, atom.Invalid)
			i = j
			continue
		}

		out.Push(s.At(i), s.Atoms[i])
		i++
	}

	return out
}

// mergeStringLiteral consumes tokens starting at the opening '"' (index i)
// up to and including the matching unescaped closing '"'. Returns the index
// just past the literal.
func mergeStringLiteral(s *token.Stream, i int) int {
	n := s.Len()
	j := i + 1
	for j < n {
		if s.Kinds[j] == token.Kind('\\') {
			// Escape: the following token is part of the literal regardless
			// of its own type, per spec.md §4.2.
			j++
			if j < n {
				j++
			}
			continue
		}
		if s.Kinds[j] == token.Kind('"') {
			j++
			return j
		}
		if s.Kinds[j] == token.EOF {
			return j
		}
		j++
	}
	return j
}

// mergeNumberLiteral consumes the run of tokens following a Number token
// that still form a valid numeric literal spelling, per the predicates in
// spec.md §4.2: hex prefix "0x", hex digits, "u"/"f" suffixes, a decimal
// point, and an exponent "e" optionally followed by a sign.
func mergeNumberLiteral(src string, s *token.Stream, i int) int {
	n := s.Len()
	j := i + 1
	text := s.At(i).Text(src)
	isHex := len(text) >= 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X')

	for j < n {
		k := s.Kinds[j]
		piece := s.At(j).Text(src)

		switch {
		case k == token.Word && isValidNumberSuffix(piece, isHex):
			j++
		case k == token.Number:
			j++
		case k == token.Kind('.'):
			j++
		case (k == token.Kind('+') || k == token.Kind('-')) && precededByExponent(src, s, j):
			j++
		default:
			return j
		}
	}
	return j
}

// isValidNumberSuffix reports whether word (a Word-classed run immediately
// following digits) can still be part of the same numeric literal: hex
// digits, the "u"/"f" size/type suffixes, or an exponent marker "e".
func isValidNumberSuffix(word string, isHex bool) bool {
	for _, c := range []byte(word) {
		switch {
		case c >= '0' && c <= '9':
		case isHex && ((c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')):
		case c == 'u' || c == 'U' || c == 'f' || c == 'F':
		case c == 'e' || c == 'E':
		case c == 'l' || c == 'L':
		default:
			return false
		}
	}
	return word != ""
}

// precededByExponent reports whether the token immediately before index j
// is an exponent marker ("e"/"E" possibly merged with preceding digits),
// which licenses a following '+'/'-' to keep merging into the literal.
func precededByExponent(src string, s *token.Stream, j int) bool {
	if j == 0 {
		return false
	}
	prev := s.At(j - 1).Text(src)
	return len(prev) > 0 && (prev[len(prev)-1] == 'e' || prev[len(prev)-1] == 'E')
}

// MergeWhitespace folds NewLine/Space tokens into the end of their
// preceding token (spec.md §4.2, optional pass). original[i] records the
// pre-merge end offset of logical token i, so passes that need the exact
// post-token boundary (e.g. for column computation) can still recover it.
func MergeWhitespace(s *token.Stream) *token.Stream {
	out := &token.Stream{}
	n := s.Len()

	for i := 0; i < n; i++ {
		k := s.Kinds[i]
		if (k == token.Space || k == token.NewLine) && out.Len() > 0 {
			last := out.Len() - 1
			out.OriginalEnds[last] = out.Ends[last]
			out.Ends[last] = s.Ends[i]
			continue
		}
		out.Push(s.At(i), s.Atoms[i])
		out.OriginalEnds = append(out.OriginalEnds, s.Ends[i])
	}

	return out
}
