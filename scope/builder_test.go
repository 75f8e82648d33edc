package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blender/bslc/atom"
	"github.com/blender/bslc/lexer"
	"github.com/blender/bslc/scope"
	"github.com/blender/bslc/token"
)

func buildTree(t *testing.T, src string) scope.Tree {
	t.Helper()
	src = token.EnsureTrailingNewline(src)
	s := lexer.Tokenize(src)
	s = lexer.MergeLiterals(src, s)
	require.NoError(t, lexer.IdentifyKeywords(src, s, atom.NewInterner()))
	return scope.NewBuilder(s, nil).WithSource(src).Build()
}

func kinds(tr scope.Tree) []scope.Kind {
	out := make([]scope.Kind, tr.Len())
	for i := range out {
		out[i], _ = tr.At(i)
	}
	return out
}

func TestFunctionCallVersusFunctionArgs(t *testing.T) {
	tr := buildTree(t, "int f(int x) { return g(x); }\n")
	ks := kinds(tr)
	assert.Contains(t, ks, scope.FunctionArgs)
	assert.Contains(t, ks, scope.FunctionCall)
	assert.NotContains(t, ks, scope.Invalid)
}

func TestTemplateOpenVersusLessThan(t *testing.T) {
	tr := buildTree(t, "template<typename T> T f(T a) { return a < a; }\n")
	ks := kinds(tr)
	assert.Contains(t, ks, scope.Template)
	// The body's `a < a` comparison must not itself open a Template scope.
	count := 0
	for _, k := range ks {
		if k == scope.Template {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestScopeSkipsNamespaceQualifierAndAttribute(t *testing.T) {
	tr := buildTree(t, "[[vertex]] void f() { ns::g(); }\n")
	ks := kinds(tr)
	assert.Contains(t, ks, scope.Attributes)
	assert.Contains(t, ks, scope.FunctionCall)
}

func TestLoopArgsRetagsFollowingBodyAsLoopBody(t *testing.T) {
	tr := buildTree(t, "void f() { for (int i = 0; i < 1; i++) { x += i; } }\n")
	ks := kinds(tr)
	assert.Contains(t, ks, scope.LoopArgs)
	assert.Contains(t, ks, scope.LoopBody)
}

func TestOwnerOfReturnsInnermostScope(t *testing.T) {
	tr := buildTree(t, "int f(int x) { return x; }\n")
	// Token 0 is the return type "int", owned by the outermost FunctionArgs'
	// enclosing scope (Global), not by FunctionArgs itself.
	owner := tr.OwnerOf(0)
	k, _ := tr.At(owner)
	assert.Equal(t, scope.Global, k)
}

func TestUnmatchedBraceEmptiesOutput(t *testing.T) {
	tr := buildTree(t, "void f() {\n")
	assert.Equal(t, 0, tr.Len())
}
