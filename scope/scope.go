// Package scope builds and represents the bracket-driven scope tree over a
// token.Stream (spec.md §4.4). A Tree is an arena of (Kind, token range)
// entries plus a per-token back-pointer to its innermost enclosing scope,
// addressed by plain int32 index rather than a pointer — consistent with
// this module's "no long-lived borrows into token arrays" design note
// (spec.md §9) and with the teacher's arena-of-indices convention
// (internal/arena).
package scope

// Kind is the closed set of scope kinds from spec.md §3.
type Kind uint8

const (
	Invalid Kind = iota
	Global
	Namespace
	Struct
	Function
	FunctionArgs
	FunctionArg
	FunctionCall
	FunctionParam
	Local
	LoopArgs
	LoopArg
	LoopBody
	SwitchArg
	SwitchBody
	Template
	TemplateArg
	Subscript
	Attributes
	Attribute
	Preprocessor
	Assignment
)

func (k Kind) String() string {
	switch k {
	case Global:
		return "Global"
	case Namespace:
		return "Namespace"
	case Struct:
		return "Struct"
	case Function:
		return "Function"
	case FunctionArgs:
		return "FunctionArgs"
	case FunctionArg:
		return "FunctionArg"
	case FunctionCall:
		return "FunctionCall"
	case FunctionParam:
		return "FunctionParam"
	case Local:
		return "Local"
	case LoopArgs:
		return "LoopArgs"
	case LoopArg:
		return "LoopArg"
	case LoopBody:
		return "LoopBody"
	case SwitchArg:
		return "SwitchArg"
	case SwitchBody:
		return "SwitchBody"
	case Template:
		return "Template"
	case TemplateArg:
		return "TemplateArg"
	case Subscript:
		return "Subscript"
	case Attributes:
		return "Attributes"
	case Attribute:
		return "Attribute"
	case Preprocessor:
		return "Preprocessor"
	case Assignment:
		return "Assignment"
	default:
		return "Invalid"
	}
}

// Range is a half-open token index range [Start, End).
type Range struct {
	Start int32
	End   int32
}

// Contains reports whether tokenIndex falls within r.
func (r Range) Contains(tokenIndex int32) bool {
	return tokenIndex >= r.Start && tokenIndex < r.End
}

// Tree is the arena of scope entries produced by a Builder, plus the
// per-token owner back-pointer required by spec.md §3 "Scope tree".
type Tree struct {
	Kinds  []Kind
	Ranges []Range
	// Owner[tokenIndex] is the index, into Kinds/Ranges, of that token's
	// innermost enclosing scope.
	Owner []int32
}

// Len returns the number of scopes in the tree (at least 1: Global).
func (t *Tree) Len() int { return len(t.Kinds) }

// At returns scope index i's kind and range.
func (t *Tree) At(i int) (Kind, Range) {
	return t.Kinds[i], t.Ranges[i]
}

// Parent returns the index of the scope directly enclosing scope i, or -1
// if i is Global. Scopes are properly nested (spec.md §3), so this is the
// smallest-range scope, other than i itself, whose range contains i's.
func (t *Tree) Parent(i int) int {
	best := -1
	_, r := t.At(i)
	for j := range t.Kinds {
		if j == i {
			continue
		}
		_, rj := t.At(j)
		if rj.Start <= r.Start && r.End <= rj.End {
			if best == -1 {
				best = j
				continue
			}
			_, rb := t.At(best)
			if rj.Start >= rb.Start && rj.End <= rb.End {
				best = j
			}
		}
	}
	return best
}

// OwnerOf returns the innermost scope index containing tokenIndex.
func (t *Tree) OwnerOf(tokenIndex int) int {
	if tokenIndex < 0 || tokenIndex >= len(t.Owner) {
		return -1
	}
	return int(t.Owner[tokenIndex])
}
