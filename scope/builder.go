package scope

import "github.com/blender/bslc/token"

// ErrorFunc reports a fatal structural parse error at the given token
// index. Builders empty their output on any call to this, per spec.md §4.4
// "the builder then empties all output structures".
type ErrorFunc func(tokenIndex int32, message string)

type stackEntry struct {
	kind       Kind
	start      int32
	arenaIndex int32
}

// Builder runs the single linear scan described in spec.md §4.4 over a
// token.Stream and produces a Tree.
type Builder struct {
	s      *token.Stream
	src    string
	onErr  ErrorFunc
	stack  []stackEntry
	tree   Tree
	failed bool

	templateDepth int
	// pendingBody carries the retag applied to the Local scope that opens
	// immediately after a LoopArgs/SwitchArg closes, mirroring the
	// reference implementation's post-hoc `set_type(LoopBody/SwitchBody)`
	// (original_source's flow_control.cc): the generic `(` close handler
	// has no way to know in advance that the following `{` is a loop or
	// switch body, so the builder remembers the intent and applies it the
	// next time it is about to open a bare Local scope.
	pendingBody Kind
}

// NewBuilder constructs a Builder for s. onErr is invoked on structural
// errors (unbalanced brackets, unterminated scope); it may be nil to
// silently discard diagnostics (output is still emptied).
func NewBuilder(s *token.Stream, onErr ErrorFunc) *Builder {
	return &Builder{s: s, onErr: onErr}
}

// WithSource supplies the source text so the '<' tie-break (spec.md §4.4)
// can inspect the previous token's trailing byte. Without it, the builder
// falls back to the coarser "previous token isn't also '<'" rule.
func (b *Builder) WithSource(src string) *Builder {
	b.src = src
	return b
}

func (b *Builder) reportError(tokenIndex int32, msg string) {
	b.failed = true
	if b.onErr != nil {
		b.onErr(tokenIndex, msg)
	}
}

func (b *Builder) enter(kind Kind, start int32) {
	idx := int32(len(b.tree.Kinds))
	b.tree.Kinds = append(b.tree.Kinds, kind)
	b.tree.Ranges = append(b.tree.Ranges, Range{Start: start, End: start + 1})
	b.stack = append(b.stack, stackEntry{kind: kind, start: start, arenaIndex: idx})
}

func (b *Builder) exit(endTokenInclusive int32) {
	if len(b.stack) == 0 {
		return
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.tree.Ranges[top.arenaIndex].End = endTokenInclusive + 1
}

func (b *Builder) top() Kind {
	if len(b.stack) == 0 {
		return Invalid
	}
	return b.stack[len(b.stack)-1].kind
}

// Build runs the scan and returns the resulting Tree. On a structural
// error the returned Tree is empty (spec.md §4.4, §7, §8: "Input with a
// single unmatched '{' -> ... output is empty").
func (b *Builder) Build() Tree {
	b.enter(Global, 0)

	n := b.s.Len()
	var i int32
	for i = 0; i < int32(n); i++ {
		if b.top() == Preprocessor {
			if b.s.Kinds[i] == token.NewLine {
				b.exit(i)
			} else {
				continue
			}
		}

		b.step(i)
		if b.failed {
			return Tree{}
		}
	}

	if len(b.stack) == 0 {
		b.reportError(int32(n-1), "extraneous end of scope somewhere in that file")
		return Tree{}
	}
	if b.top() == Preprocessor {
		b.exit(int32(n - 2))
	}
	if b.top() != Global {
		b.reportError(b.stack[len(b.stack)-1].start, "unterminated scope")
		return Tree{}
	}
	b.exit(int32(n - 1))

	b.finish()
	return b.tree
}

func (b *Builder) kindAt(i int32) token.Kind {
	if i < 0 || int(i) >= b.s.Len() {
		return token.Invalid
	}
	return b.s.Kinds[i]
}

// step processes one token of the scan. Ported directly from
// original_source's Parser::parse_scopes.
func (b *Builder) step(i int32) {
	k := b.kindAt(i)
	if b.pendingBody != Invalid && k != token.Kind('{') && k != token.Space && k != token.NewLine {
		// The statement immediately following `for (...)`/`switch (...)`
		// wasn't a brace (e.g. a braceless loop body) — the retag only
		// applies to the very next block, so drop it rather than risk
		// mistagging an unrelated later scope.
		b.pendingBody = Invalid
	}

	switch b.kindAt(i) {
	case token.Kind('#'):
		b.enter(Preprocessor, i)

	case token.Kind('='):
		if b.top() == Assignment {
			b.exit(i - 1)
		}
		b.enter(Assignment, i)

	case token.Kind('{'):
		b.openBrace(i)

	case token.Kind('('):
		b.openParen(i)

	case token.Kind('['):
		if b.kindAt(i-1) == token.Kind('[') {
			b.enter(Attributes, i)
		} else {
			b.enter(Subscript, i)
		}

	case token.Kind('<'):
		if b.isTemplateOpen(i) {
			b.enter(Template, i)
			b.templateDepth++
		}

	case token.Kind('>'):
		if b.templateDepth > 0 && b.top() == Assignment {
			b.exit(i - 1)
		}
		if b.top() == TemplateArg {
			b.exit(i - 1)
		}
		if b.top() == Template {
			b.exit(i)
			b.templateDepth--
		}

	case token.Kind('}'):
		if b.top() == Assignment {
			b.exit(i - 1)
		}
		switch b.top() {
		case Struct, Local, Namespace, LoopBody, SwitchBody, Function:
			b.exit(i)
		default:
			b.reportError(i, "unexpected '}' token")
		}

	case token.Kind(')'):
		if b.top() == Assignment {
			b.exit(i - 1)
		}
		switch b.top() {
		case FunctionArg, FunctionParam, LoopArg:
			b.exit(i - 1)
		}
		switch b.top() {
		case LoopArgs:
			b.exit(i)
			b.pendingBody = LoopBody
		case SwitchArg:
			b.exit(i)
			b.pendingBody = SwitchBody
		case FunctionArgs, FunctionCall, Local:
			b.exit(i)
		default:
			b.reportError(i, "unexpected ')' token")
		}

	case token.Kind(']'):
		if b.top() == Attribute {
			b.exit(i - 1)
		}
		b.exit(i)

	case token.Kind(';'):
		switch b.top() {
		case Assignment, FunctionArg, TemplateArg, LoopArg:
			b.exit(i - 1)
		}

	case token.Kind(','):
		switch b.top() {
		case Assignment, FunctionArg, FunctionParam, TemplateArg, Attributes, Attribute:
			b.exit(i - 1)
		}

	default:
		switch b.top() {
		case Attributes:
			b.enter(Attribute, i)
		case FunctionArgs:
			b.enter(FunctionArg, i)
		case FunctionCall:
			b.enter(FunctionParam, i)
		case LoopArgs:
			b.enter(LoopArg, i)
		case Template:
			b.enter(TemplateArg, i)
		}
	}
}

// openBrace implements the '{' tie-break rules of spec.md §4.4: scanning
// back across "::"-qualified prefixes and an optional host_shared-style
// attribute block to find the keyword that decorates this brace.
func (b *Builder) openBrace(i int32) {
	kw := token.Invalid
	pos := int32(2)
	for {
		if i >= pos {
			kw = b.kindAt(i - pos)
		} else {
			kw = token.Invalid
		}
		if kw != token.Kind(':') {
			break
		}
		pos += 3
	}

	if kw == token.Kind(']') {
		if i >= pos {
			kw = b.kindAt(i - pos)
		} else {
			kw = token.Invalid
		}
		if kw == token.Kind('[') {
			pos += 2
			if i >= pos {
				kw = b.kindAt(i - pos)
			} else {
				kw = token.Invalid
			}
		}
	}

	switch {
	case kw == token.KwStruct || kw == token.KwClass:
		b.enter(Struct, i)
	case kw == token.KwEnum:
		b.enter(Local, i)
	case kw == token.KwNamespace:
		b.enter(Namespace, i)
	case b.top() == Global, b.top() == Struct, b.top() == Namespace:
		b.enter(Function, i)
	default:
		if b.pendingBody != Invalid {
			body := b.pendingBody
			b.pendingBody = Invalid
			b.enter(body, i)
			return
		}
		b.enter(Local, i)
	}
}

// openParen implements the '(' tie-break rules of spec.md §4.4.
func (b *Builder) openParen(i int32) {
	prev := b.kindAt(i - 1)
	switch {
	case prev == token.KwFor || prev == token.KwWhile:
		b.enter(LoopArgs, i)
	case prev == token.KwSwitch:
		b.enter(SwitchArg, i)
	case b.top() == Global, b.top() == Struct:
		b.enter(FunctionArgs, i)
	case (b.top() == Function || b.top() == Local || b.top() == Attribute) && prev == token.Word:
		b.enter(FunctionCall, i)
	default:
		b.enter(Local, i)
	}
}

// finish populates the per-token Owner back-pointer array. Later scopes in
// the arena (opened later, i.e. more deeply nested at a given token) take
// priority, matching the reference's "last write wins while iterating
// scope_ranges in order" behavior.
func (b *Builder) finish() {
	b.tree.Owner = make([]int32, b.s.Len())
	for scopeIdx, r := range b.tree.Ranges {
		for t := r.Start; t < r.End; t++ {
			b.tree.Owner[t] = int32(scopeIdx)
		}
	}
}

// isTemplateOpen implements the '<' tie-break of spec.md §4.4: Template
// only when preceded by the `template` keyword, or when the previous
// token's last byte is not a space, newline, or '<' (this distinguishes
// `Foo<T>` from `a < b`).
func (b *Builder) isTemplateOpen(i int32) bool {
	if i < 1 {
		return false
	}
	if b.kindAt(i-1) == token.KwTemplate {
		return true
	}
	if b.src == "" {
		return b.kindAt(i-1) != token.Kind('<')
	}
	end := b.s.Ends[i-1]
	if end == 0 || int(end) > len(b.src) {
		return false
	}
	last := b.src[end-1]
	return last != ' ' && last != '\n' && b.kindAt(i-1) != token.Kind('<')
}
