package lexer

import (
	"fmt"

	"github.com/blender/bslc/atom"
	"github.com/blender/bslc/token"
)

// IdentifyKeywords runs the third lexer pass (spec.md §4.3): every Word
// token is interned into in, and exact-spelling matches against
// token.Keywords are promoted to their keyword Kind. Non-matching Words
// keep their atom and stay token.Word.
//
// Returns an error if the interner's long-atom counter is exhausted (more
// distinct 3+ byte identifiers than fit in the 16-bit atom space); this is
// reported as a Structural diagnostic by callers (diagnostic package).
func IdentifyKeywords(src string, s *token.Stream, in *atom.Interner) error {
	for i := 0; i < s.Len(); i++ {
		if s.Kinds[i] != token.Word {
			continue
		}
		word := s.At(i).Text(src)
		a, ok := in.Intern(word)
		if !ok {
			return fmt.Errorf("lexer: atom space exhausted interning %q", word)
		}
		s.Atoms[i] = a
		if kw, isKeyword := token.Keywords[word]; isKeyword {
			s.Kinds[i] = kw
		}
	}
	return nil
}
