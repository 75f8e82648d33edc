// Package ir ties a token.Stream and a scope.Tree to the source text they
// were built from, plus the pending edit queue that lets a lowering pass
// rewrite that text and reparse it. It is this module's realization of
// original_source's MutableString/IntermediateForm (intermediate.hh):
// "structure holding an intermediate form of the source code ... made for
// fast traversal and mutation."
package ir

import (
	"strconv"
	"strings"

	"github.com/blender/bslc/atom"
	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/lexer"
	"github.com/blender/bslc/scope"
	"github.com/blender/bslc/token"
)

// Form is the mutable intermediate representation a lowering pass works
// against: the current source text, its token.Stream, its scope.Tree, and
// an atom.Interner shared across reparses so identical spellings keep the
// same Atom. File is carried through purely for diagnostic positions.
type Form struct {
	mutable

	File     string
	Stream   *token.Stream
	Tree     scope.Tree
	Interner *atom.Interner

	report   diagnostic.Callback
	resolver *diagnostic.Resolver
}

// New builds a Form from source text, running the lexer and scope builder
// once up front. report receives diagnostics raised during (re)parsing; it
// may be nil.
func New(file, source string, report diagnostic.Callback) *Form {
	f := &Form{
		File:     file,
		mutable:  newMutable(token.EnsureTrailingNewline(source)),
		Interner: atom.NewInterner(),
		report:   report,
	}
	f.reparse()
	return f
}

// reparse re-runs the tokenizer, keyword identification, and scope builder
// against the current source. The scope builder runs over the raw
// (non-whitespace-merged) stream: this implementation's resolution of an
// ambiguity in how original_source's tokenize() keeps directive-terminating
// NewLine tokens even in its default whitespace-folding mode (see
// DESIGN.md) — MergeWhitespace is offered as a separate, optional pass for
// any later stage that wants merged token boundaries instead.
func (f *Form) reparse() {
	s := lexer.Tokenize(f.src)
	s = lexer.MergeLiterals(f.src, s)
	if err := lexer.IdentifyKeywords(f.src, s, f.Interner); err != nil && f.report != nil {
		f.report(diagnostic.Diagnostic{
			Severity: diagnostic.Structural,
			Pos:      diagnostic.Position{File: f.File},
			Message:  err.Error(),
		})
	}
	f.Stream = s

	onErr := func(tokenIndex int32, message string) {
		if f.report == nil {
			return
		}
		pos := f.positionOf(int(s.Starts[clampIndex(tokenIndex, s)]))
		f.report(diagnostic.Diagnostic{
			Severity:   diagnostic.Structural,
			Pos:        pos,
			SourceLine: f.resolver.SourceLine(int(s.Starts[clampIndex(tokenIndex, s)])),
			Message:    message,
		})
	}
	f.Tree = scope.NewBuilder(s, onErr).WithSource(f.src).Build()
	f.resolver = diagnostic.NewResolver(f.File, f.src)
}

func clampIndex(i int32, s *token.Stream) int {
	if i < 0 {
		return 0
	}
	if int(i) >= s.Len() {
		return s.Len() - 1
	}
	return int(i)
}

func (f *Form) positionOf(offset int) diagnostic.Position {
	return f.resolver.Position(offset)
}

// Root returns the Global scope, always index 0 per scope.Builder's
// invariant that the outermost scope is opened first and closed last.
func (f *Form) Root() (scope.Kind, scope.Range) {
	if f.Tree.Len() == 0 {
		return scope.Invalid, scope.Range{}
	}
	return f.Tree.At(0)
}

// --- token/scope-indexed mutation helpers, mirroring MutableString's
// Token/Scope overloads (intermediate.hh) over our index-based Stream/Tree.

// tokenBounds returns a token's inclusive [first,last] byte range, using
// OriginalEnds (the pre-whitespace-merge boundary) when keepTrailingWhitespace
// is false and the stream has that data, matching
// str_index_last_no_whitespace() vs str_index_last().
func (f *Form) tokenBounds(i int, keepTrailingWhitespace bool) (int, int) {
	tok := f.Stream.At(i)
	first := int(tok.Start)
	last := int(tok.End) - 1
	if !keepTrailingWhitespace && f.Stream.OriginalEnds != nil && i < len(f.Stream.OriginalEnds) {
		last = int(f.Stream.OriginalEnds[i]) - 1
	}
	return first, last
}

// ReplaceTokenRange replaces tokens [fromIdx,toIdx] (inclusive) with
// replacement, per original_source's `replace(Token from, Token to, ...)`.
func (f *Form) ReplaceTokenRange(fromIdx, toIdx int, replacement string, keepTrailingWhitespace bool) {
	first, _ := f.tokenBounds(fromIdx, true)
	_, last := f.tokenBounds(toIdx, keepTrailingWhitespace)
	f.Replace(first, last, replacement)
}

// ReplaceToken replaces a single token.
func (f *Form) ReplaceToken(idx int, replacement string, keepTrailingWhitespace bool) {
	f.ReplaceTokenRange(idx, idx, replacement, keepTrailingWhitespace)
}

// ReplaceScope replaces every token belonging to scope scopeIdx, from its
// opening token through its closing token inclusive.
func (f *Form) ReplaceScope(scopeIdx int, replacement string, keepTrailingWhitespace bool) {
	_, r := f.Tree.At(scopeIdx)
	if r.End <= r.Start {
		return
	}
	f.ReplaceTokenRange(int(r.Start), int(r.End)-1, replacement, keepTrailingWhitespace)
}

// EraseTokenRange blanks tokens [fromIdx,toIdx] (inclusive) with
// line/indentation-preserving whitespace.
func (f *Form) EraseTokenRange(fromIdx, toIdx int) {
	if fromIdx > toIdx {
		return
	}
	first, _ := f.tokenBounds(fromIdx, true)
	_, last := f.tokenBounds(toIdx, true)
	f.Erase(first, last)
}

// EraseToken blanks a single token.
func (f *Form) EraseToken(idx int) { f.EraseTokenRange(idx, idx) }

// EraseScope blanks every token belonging to scope scopeIdx.
func (f *Form) EraseScope(scopeIdx int) {
	_, r := f.Tree.At(scopeIdx)
	if r.End <= r.Start {
		return
	}
	f.EraseTokenRange(int(r.Start), int(r.End)-1)
}

// InsertBeforeToken queues content immediately before token idx's first
// byte.
func (f *Form) InsertBeforeToken(idx int, content string, prepend bool) {
	first, _ := f.tokenBounds(idx, true)
	f.InsertBefore(first, content, prepend)
}

// InsertAfterToken queues content immediately after token idx's last byte.
func (f *Form) InsertAfterToken(idx int, content string) {
	_, last := f.tokenBounds(idx, true)
	f.InsertAfter(last, content)
}

// InsertLineNumberAfterToken queues a `#line N` directive after token idx.
func (f *Form) InsertLineNumberAfterToken(idx int, line int) {
	_, last := f.tokenBounds(idx, true)
	f.InsertLineNumber(last, line)
}

// InsertDirective inserts a preprocessor directive on its own line right
// after token idx, plus a `#line` directive so later diagnostics still
// report the original logical line, and re-establishes idx's original
// indentation on the line that follows. Ported from original_source's
// insert_directive (intermediate.hh): "This also insert a line directive to
// keep correct error reporting."
func (f *Form) InsertDirective(idx int, directive string) {
	_, last := f.tokenBounds(idx, true)
	f.InsertAfter(last, "\n"+directive+"\n")

	trailing := f.trailingWhitespace(idx)
	lines := strings.Count(trailing, "\n")
	line := f.positionOf(int(f.Stream.At(idx).Start)).Line + lines
	f.InsertLineNumber(last, line)

	lineBreak := strings.LastIndexByte(f.src[:last+1], '\n')
	spaces := last - lineBreak
	if spaces > 0 {
		f.InsertAfter(last, strings.Repeat(" ", spaces))
	}
}

// trailingWhitespace returns the whitespace text between token idx's
// no-whitespace end and its whitespace-merged end, i.e. the text
// MergeWhitespace would have folded into it.
func (f *Form) trailingWhitespace(idx int) string {
	if f.Stream.OriginalEnds == nil || idx >= len(f.Stream.OriginalEnds) {
		return ""
	}
	noWS := int(f.Stream.OriginalEnds[idx])
	withWS := int(f.Stream.At(idx).End)
	if noWS < 0 || withWS > len(f.src) || noWS > withWS {
		return ""
	}
	return f.src[noWS:withWS]
}

// ApplyMutations splices every queued mutation into the source in one
// left-to-right pass, clears the queue, and reparses. Returns whether
// anything was applied. Mirrors original_source's
// IntermediateForm::apply_mutations: "Apply pending mutation and parse the
// resulting string."
func (f *Form) ApplyMutations() bool {
	_, applied := f.apply()
	if applied {
		f.reparse()
	}
	return applied
}

// OnlyApplyMutations splices queued mutations without reparsing, for
// callers that will immediately queue more edits before the next
// ApplyMutations. Mirrors only_apply_mutations.
func (f *Form) OnlyApplyMutations() bool {
	_, applied := f.apply()
	return applied
}

// Result applies any pending mutations and returns the resulting source.
func (f *Form) Result() string {
	f.OnlyApplyMutations()
	return f.src
}

// PendingEdits reports how many mutations are queued but not yet applied.
func (f *Form) PendingEdits() int { return f.pendingCount() }

// String renders a compact "tokens=N scopes=M" summary of the form's token
// and scope counts, for test failure messages.
func (f *Form) String() string {
	var b strings.Builder
	b.WriteString("tokens=")
	b.WriteString(strconv.Itoa(f.Stream.Len()))
	b.WriteString(" scopes=")
	b.WriteString(strconv.Itoa(f.Tree.Len()))
	return b.String()
}
