package atom

import "fmt"

// Interner assigns Atoms to word spellings of three bytes or more. One-
// and two-byte words never touch the Interner: they self-encode (see
// encodeSingle/encodeDouble).
//
// An Interner belongs to exactly one lexer instance for the lifetime of one
// IntermediateForm (spec.md §5: "the atom interner and all tables are owned
// by the lexer owned by the IntermediateForm"). It is not safe for
// concurrent use, and does not need to be: the transpiler is single-threaded
// cooperative per source file.
type Interner struct {
	// by4/by8 accelerate the common case of short-to-medium identifiers by
	// keying directly on the packed bytes instead of hashing a string header.
	by4 map[uint32]Atom
	by8 map[uint64]Atom
	// byAny is the fallback for words that don't fit in 8 bytes.
	byAny map[string]Atom

	spellings []string // indexed by (atom - MinLong)
	next      Atom
}

// NewInterner returns a ready-to-use, empty Interner.
func NewInterner() *Interner {
	return &Interner{
		by4:   make(map[uint32]Atom),
		by8:   make(map[uint64]Atom),
		byAny: make(map[string]Atom),
		next:  MinLong,
	}
}

// Intern returns the Atom for word, assigning a fresh one if this is the
// first time word has been seen. word must be a non-empty ASCII spelling;
// behavior is undefined otherwise. ok is false for an empty word, and when
// the long-atom counter has been exhausted (more than 65535-16512 distinct
// long identifiers in one file) — callers should treat the latter as a
// Structural diagnostic.
func (in *Interner) Intern(word string) (Atom, bool) {
	switch len(word) {
	case 0:
		return Invalid, false
	case 1:
		return encodeSingle(word[0]), true
	case 2:
		return encodeDouble(word[0], word[1]), true
	}

	if len(word) <= 4 {
		key := pack4(word)
		if a, ok := in.by4[key]; ok {
			return a, true
		}
		a, ok := in.alloc(word)
		if ok {
			in.by4[key] = a
		}
		return a, ok
	}
	if len(word) <= 8 {
		key := pack8(word)
		if a, ok := in.by8[key]; ok {
			return a, true
		}
		a, ok := in.alloc(word)
		if ok {
			in.by8[key] = a
		}
		return a, ok
	}

	if a, ok := in.byAny[word]; ok {
		return a, true
	}
	a, ok := in.alloc(word)
	if ok {
		in.byAny[word] = a
	}
	return a, ok
}

func (in *Interner) alloc(word string) (Atom, bool) {
	if in.next == Invalid || in.next < MinLong {
		return Invalid, false
	}
	a := in.next
	in.next++
	in.spellings = append(in.spellings, word)
	return a, true
}

// Value returns the spelling an atom was interned from. Short atoms decode
// without consulting the table at all.
func (in *Interner) Value(a Atom) string {
	if s, n, ok := decodeShort(a); ok {
		return string(s[:n])
	}
	idx := int(a) - int(MinLong)
	if idx < 0 || idx >= len(in.spellings) {
		panic(fmt.Sprintf("atom: %d was never interned by this Interner", a))
	}
	return in.spellings[idx]
}

func pack4(s string) uint32 {
	var b [4]byte
	copy(b[:], s)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func pack8(s string) uint64 {
	var b [8]byte
	copy(b[:], s)
	var v uint64
	for i, c := range b {
		v |= uint64(c) << (8 * i)
	}
	return v
}
