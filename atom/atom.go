// Package atom implements interned identifier atoms for the BSL lexer.
//
// An Atom is a 16-bit value assigned to every distinct word (identifier)
// spelling seen by the lexer. Unlike a general-purpose string interner, the
// encoding is structured so that the shortest, most common spellings never
// need a table lookup to round-trip: a one- or two-character word carries
// its own bytes in the atom value. Only words of three or more bytes consume
// a slot in the Interner's tables.
package atom

// Atom is an interned identifier. The zero value is not a valid atom for any
// non-empty word; callers that need a sentinel should use Invalid.
type Atom uint16

// Invalid is returned for inputs that cannot be represented as a word atom
// (e.g. the empty string).
const Invalid Atom = 0xFFFF

// Reserved ranges, see package doc and spec.md §3 "Atom".
const (
	// MaxSingle is the largest atom assigned to a one-byte word.
	MaxSingle Atom = 127
	// MinDouble/MaxDouble bound atoms assigned to two-byte words.
	MinDouble Atom = 128
	MaxDouble Atom = 16511
	// MinLong is the first atom handed out by the counters for words of
	// three bytes or more.
	MinLong Atom = 16512
)

// shortLen reports how many source bytes an atom created by encodeShort occupies,
// or 0 if the atom is not a short (1- or 2-byte) encoding.
func (a Atom) shortLen() int {
	switch {
	case a <= MaxSingle:
		return 1
	case a >= MinDouble && a <= MaxDouble:
		return 2
	default:
		return 0
	}
}

// IsShort reports whether a is a self-describing 1- or 2-byte atom that
// does not require an Interner lookup to decode.
func (a Atom) IsShort() bool {
	return a.shortLen() > 0
}

// encodeSingle builds the atom for a one-byte word. b must be < 128 (the
// caller is expected to have already validated the input is ASCII).
func encodeSingle(b byte) Atom {
	return Atom(b & 0x7f)
}

// encodeDouble builds the atom for a two-byte word directly from its bytes.
func encodeDouble(b0, b1 byte) Atom {
	return MinDouble + Atom(b0&0x7f)*128 + Atom(b1&0x7f)
}

// decodeShort reverses encodeSingle/encodeDouble. ok is false if a does not
// fall in either short range.
func decodeShort(a Atom) (s [2]byte, n int, ok bool) {
	switch {
	case a <= MaxSingle:
		return [2]byte{byte(a), 0}, 1, true
	case a >= MinDouble && a <= MaxDouble:
		rest := a - MinDouble
		return [2]byte{byte(rest / 128), byte(rest % 128)}, 2, true
	default:
		return s, 0, false
	}
}
