// Package lexer turns BSL source text into a token.Stream: character-class
// tokenization (spec.md §4.1), complex-literal and whitespace merging
// (§4.2), and keyword identification (§4.3).
//
// The reference implementation this is ported from (original_source's
// lexit.cc) does its character-class run detection with NEON/SSE2 intrinsics
// and a 256-entry byte-shuffle table for stream compaction. Go has no
// portable intrinsics of that shape outside of assembly stubs per
// architecture, which would not be idiomatic for the rest of this module's
// stack (see DESIGN.md). Instead, Tokenize processes the input in
// cache-sized batches and classifies each byte through the same lookup
// table the reference uses, which is the scalar fallback the spec requires
// to be bit-identical to any vectorized path (spec.md §4.1, §9 "SIMD").
package lexer

import (
	"github.com/blender/bslc/atom"
	"github.com/blender/bslc/token"
)

// batchSize is the number of bytes classified per inner-loop iteration.
// Chosen to match the width of a single SSE2/NEON vector register, so that
// a future assembly-backed implementation slots in without changing the
// surrounding control flow; see classifyBatch.
const batchSize = 16

// multiTokPairs enumerates the only two-byte runs a ClassMultiTok byte may
// merge into. Anything else stays a single-char token even though both
// bytes individually belong to ClassMultiTok (e.g. "+-" is two tokens, not
// one) — spec.md §3 names exactly these merged kinds.
var multiTokPairs = map[[2]byte]token.Kind{
	{'=', '='}: token.Equal,
	{'!', '='}: token.NotEqual,
	{'>', '='}: token.GEqual,
	{'<', '='}: token.LEqual,
	{'-', '>'}: token.Deref,
	{'+', '+'}: token.Increment,
	{'-', '-'}: token.Decrement,
}

// Tokenize runs character-class tokenization over src, producing a raw
// token.Stream (before literal/whitespace merging or keyword
// identification). src must be ASCII and end with a newline; callers
// should run it through token.EnsureTrailingNewline first.
func Tokenize(src string) *token.Stream {
	s := &token.Stream{}
	n := len(src)

	classes := classifyAll(src)

	i := 0
	for i < n {
		start := i
		class := classes[i]
		lead := src[i]

		switch class {
		case ClassAlpha, ClassNumeric:
			i++
			for i < n && classes[i-1]&classes[i]&CanMerge != 0 {
				i++
			}
			s.Push(token.Token{Kind: decayKind(class), Start: uint32(start), End: uint32(i)}, atom.Invalid)

		case ClassWhiteSpace:
			i++
			for i < n && classes[i] == ClassWhiteSpace {
				i++
			}
			kind := token.Space
			if lead == '\n' {
				kind = token.NewLine
			}
			s.Push(token.Token{Kind: kind, Start: uint32(start), End: uint32(i)}, atom.Invalid)

		case ClassMultiTok:
			if i+1 < n {
				if kind, ok := multiTokPairs[[2]byte{lead, src[i+1]}]; ok {
					s.Push(token.Token{Kind: kind, Start: uint32(start), End: uint32(i + 2)}, atom.Invalid)
					i += 2
					continue
				}
			}
			s.Push(token.Token{Kind: token.Kind(lead), Start: uint32(start), End: uint32(i + 1)}, atom.Invalid)
			i++

		default:
			s.Push(token.Token{Kind: token.Kind(lead), Start: uint32(start), End: uint32(i + 1)}, atom.Invalid)
			i++
		}
	}

	s.Push(token.Token{Kind: token.EOF, Start: uint32(n), End: uint32(n)}, atom.Invalid)
	return s
}

// decayKind maps Alpha/Numeric classes to their literal kind.
func decayKind(class CharClass) token.Kind {
	switch class {
	case ClassAlpha:
		return token.Word
	case ClassNumeric:
		return token.Number
	default:
		return token.Invalid
	}
}

// classifyAll classifies every byte of src. It is the pure-Go stand-in for
// the reference's SIMD classification pass: classifyBatch processes
// batchSize bytes at a time through the same lookup table a vector gather
// would use, and a scalar tail handles the remainder, exactly mirroring the
// structure (if not the instruction-level parallelism) of the reference's
// vector-loop-plus-scalar-tail design.
func classifyAll(src string) []CharClass {
	out := make([]CharClass, len(src))
	i := 0
	for ; i+batchSize <= len(src); i += batchSize {
		classifyBatch(src[i:i+batchSize], out[i:i+batchSize])
	}
	for ; i < len(src); i++ {
		out[i] = classOf(src[i])
	}
	return out
}

// classifyBatch classifies exactly len(dst) bytes of src (== batchSize).
// Kept as its own function so a platform-specific assembly implementation
// can replace it without touching classifyAll's tail-handling logic.
func classifyBatch(src string, dst []CharClass) {
	for i := 0; i < len(dst); i++ {
		dst[i] = classOf(src[i])
	}
}
