package pattern

import (
	"github.com/blender/bslc/scope"
	"github.com/blender/bslc/token"
)

// ForeachToken invokes fn for every token of the given kind in [start,end).
func ForeachToken(s *token.Stream, start, end int32, kind token.Kind, fn func(idx int32)) {
	for i := start; i < end && i < int32(s.Len()); i++ {
		if s.Kinds[i] == kind {
			fn(i)
		}
	}
}

// ForeachScope invokes fn for every scope of the given kind in tree.
func ForeachScope(tree *scope.Tree, kind scope.Kind, fn func(scopeIndex int)) {
	for i, k := range tree.Kinds {
		if k == kind {
			fn(i)
		}
	}
}

// declPattern matches a struct/function declaration header: an optional
// leading attribute block, then a type word and a name word. It is a fixed
// composition over the generic pattern DSL, per spec.md §4.5 "foreach_*
// ... specialized compositions of the first four against fixed patterns".
var declPattern = Compile("AA")

// ForeachDeclaration scans [start, end) for "<type> <name>" pairs, with no
// filtering by scope kind — the shape every variable,
// function, and struct member declaration shares before its distinguishing
// punctuation (`(`, `;`, `{`, `=`).
func ForeachDeclaration(s *token.Stream, tree *scope.Tree, start, end int32, cb Callback) {
	declPattern.Scan(s, tree, start, end, cb)
}

// funcPattern matches "<ret-type> <name> (" — the header common to every
// function definition and function-args scope opener.
var funcPattern = Compile("AA(")

// ForeachFunction scans [start, end) for function header shapes.
func ForeachFunction(s *token.Stream, tree *scope.Tree, start, end int32, cb Callback) {
	funcPattern.Scan(s, tree, start, end, cb)
}

// structPattern matches "struct <name> {".
var structPattern = Compile("sA{")

// ForeachStruct scans [start, end) for struct headers.
func ForeachStruct(s *token.Stream, tree *scope.Tree, start, end int32, cb Callback) {
	structPattern.Scan(s, tree, start, end, cb)
}

// attrPattern matches one `[[name` open (the name and any arguments are
// then read out of the Attribute sub-scope by the caller).
var attrPattern = Compile("[[A")

// ForeachAttribute scans [start, end) for `[[...]]` attribute openers.
func ForeachAttribute(s *token.Stream, tree *scope.Tree, start, end int32, cb Callback) {
	attrPattern.Scan(s, tree, start, end, cb)
}
