// Package token defines the Token and Kind types shared by the lexer, the
// scope tree builder, and every lowering pass. A Token never owns its text:
// it is a (kind, byte range) triple into the IntermediateForm's source
// string, per spec.md §3 "Token".
package token

import "github.com/blender/bslc/atom"

// Kind is the closed set of token types from spec.md §3. Single-character
// punctuation is encoded as its own ASCII byte value, mirroring the
// original_source lexit::TokenType enum this is grounded on: it lets a Kind
// round-trip through fmt/string formatting as a printable character, which
// is invaluable when debugging token dumps.
type Kind uint8

// Sentinel and literal kinds. Punctuation kinds are simply their ASCII code
// and are constructed with Kind(b), so most are not named here.
const (
	Invalid Kind = 0
	Word    Kind = 'A' // decays from CharClass Alpha
	Number  Kind = '1' // decays from CharClass Numeric
	String  Kind = '"'
	Space   Kind = ' '
	NewLine Kind = '\n'
	EOF     Kind = 0x01

	// Merged multi-character punctuation. Values are chosen outside the
	// printable-ASCII range used by single-char punctuation and the named
	// kinds above, so a Kind is always unambiguous.
	Equal               Kind = 0x80 + iota // ==
	NotEqual                               // !=
	GEqual                                  // >=
	LEqual                                  // <=
	Deref                                   // ->
	Increment                               // ++
	Decrement                               // --
	PreprocessorNewline                     // backslash-newline, logical continuation
)

// Keyword kinds. These are only assigned to a Word token whose spelling is an
// exact match (see lexer.IdentifyKeywords); anything else stays Word.
const (
	KwIf Kind = 0xA0 + iota
	KwElse
	KwFor
	KwWhile
	KwDo
	KwSwitch
	KwCase
	KwBreak
	KwContinue
	KwReturn
	KwStruct
	KwClass
	KwEnum
	KwUnion
	KwNamespace
	KwUsing
	KwTemplate
	KwThis
	KwConst
	KwConstexpr
	KwStatic
	KwInline
	KwPrivate
	KwPublic
)

// Keywords maps exact spellings to their Kind. Declared here, next to the
// Kind constants, so the two stay in sync (spec.md §4.3).
var Keywords = map[string]Kind{
	"if":         KwIf,
	"else":       KwElse,
	"for":        KwFor,
	"while":      KwWhile,
	"do":         KwDo,
	"switch":     KwSwitch,
	"case":       KwCase,
	"break":      KwBreak,
	"continue":   KwContinue,
	"return":     KwReturn,
	"struct":     KwStruct,
	"class":      KwClass,
	"enum":       KwEnum,
	"union":      KwUnion,
	"namespace":  KwNamespace,
	"using":      KwUsing,
	"template":   KwTemplate,
	"this":       KwThis,
	"const":      KwConst,
	"constexpr":  KwConstexpr,
	"static":     KwStatic,
	"inline":     KwInline,
	"private":    KwPrivate,
	"public":     KwPublic,
}

// IsKeyword reports whether k is one of the reserved-word kinds.
func (k Kind) IsKeyword() bool {
	return k >= KwIf && k <= KwPublic
}

// IsPunct reports whether k is a single ASCII punctuation character, i.e.
// neither a literal/whitespace kind nor a merged/keyword kind.
func (k Kind) IsPunct() bool {
	return k < 0x80 && k != Invalid && k != Word && k != Number && k != String && k != Space && k != NewLine && k != EOF
}

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "<invalid>"
	case Word:
		return "Word"
	case Number:
		return "Number"
	case String:
		return "String"
	case Space:
		return "Space"
	case NewLine:
		return "NewLine"
	case EOF:
		return "EOF"
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case GEqual:
		return ">="
	case LEqual:
		return "<="
	case Deref:
		return "->"
	case Increment:
		return "++"
	case Decrement:
		return "--"
	case PreprocessorNewline:
		return "\\\n"
	}
	if k.IsKeyword() {
		for name, kind := range Keywords {
			if kind == k {
				return name
			}
		}
	}
	if k.IsPunct() {
		return string(rune(k))
	}
	return "<unknown>"
}

// Token is a triple (kind, start, end) into the owning IntermediateForm's
// source text. It never holds a copy of its own text.
type Token struct {
	Kind  Kind
	Start uint32
	End   uint32
}

// Len returns the byte length of the token's source span.
func (t Token) Len() uint32 { return t.End - t.Start }

// Text extracts the token's spelling from source. source must be the same
// string the token was produced from.
func (t Token) Text(source string) string {
	if t.End > uint32(len(source)) || t.Start > t.End {
		return ""
	}
	return source[t.Start:t.End]
}

// Valid reports whether t is a real token (as opposed to the Invalid
// sentinel returned by out-of-range lookups).
func (t Token) Valid() bool { return t.Kind != Invalid }

// Stream is the structure-of-arrays token buffer described in spec.md §3:
// parallel arrays of kinds, start offsets, and per-token atoms (meaningful
// only where Kinds[i] == Word). Keeping these as separate slices instead of
// a []Token keeps pattern scans (pattern.Matcher) cache-dense.
type Stream struct {
	Kinds  []Kind
	Starts []uint32
	// Ends holds the end offset of each token. Ordinarily Ends[i] ==
	// Starts[i+1], but whitespace-merging (lexer.MergeWhitespace) makes a
	// token's Ends[i] diverge from the next token's Starts, and
	// OriginalEnds then preserves the pre-merge boundary.
	Ends         []uint32
	Atoms        []atom.Atom
	OriginalEnds []uint32 // only populated when whitespace merging is enabled
}

// Len returns the number of tokens, including the trailing EOF sentinel.
func (s *Stream) Len() int { return len(s.Kinds) }

// At reconstructs the Token at index i.
func (s *Stream) At(i int) Token {
	if i < 0 || i >= len(s.Kinds) {
		return Token{}
	}
	return Token{Kind: s.Kinds[i], Start: s.Starts[i], End: s.Ends[i]}
}

// Push appends a token to the stream.
func (s *Stream) Push(t Token, a atom.Atom) {
	s.Kinds = append(s.Kinds, t.Kind)
	s.Starts = append(s.Starts, t.Start)
	s.Ends = append(s.Ends, t.End)
	s.Atoms = append(s.Atoms, a)
}

// EndOfFile reports the index of the trailing EOF token, which by
// invariant (spec.md §8) is always the last entry.
func (s *Stream) EndOfFile() int { return len(s.Kinds) - 1 }

// EnsureTrailingNewline appends a newline to src if it does not already end
// with one (spec.md §3: "Must end with a newline; the engine appends one
// transparently if absent"). An empty src is returned unchanged.
func EnsureTrailingNewline(src string) string {
	if src == "" {
		return src
	}
	if src[len(src)-1] != '\n' {
		return src + "\n"
	}
	return src
}
