package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blender/bslc/atom"
	"github.com/blender/bslc/lexer"
	"github.com/blender/bslc/pattern"
	"github.com/blender/bslc/scope"
	"github.com/blender/bslc/token"
)

func build(t *testing.T, src string) (string, *token.Stream, scope.Tree) {
	t.Helper()
	src = token.EnsureTrailingNewline(src)
	s := lexer.Tokenize(src)
	s = lexer.MergeLiterals(src, s)
	in := atom.NewInterner()
	require.NoError(t, lexer.IdentifyKeywords(src, s, in))
	tree := scope.NewBuilder(s, nil).WithSource(src).Build()
	require.NotZero(t, tree.Len())
	return src, s, tree
}

func TestPatternMatchesTypeName(t *testing.T) {
	_, s, tree := build(t, "int foo;")
	p := pattern.Compile("AA")

	var got []string
	p.Scan(s, &tree, 0, int32(s.Len()), func(m pattern.Match) bool {
		got = append(got, string(rune(m.Tokens[0].Kind)), string(rune(m.Tokens[1].Kind)))
		return false
	})
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0])
}

func TestPatternScopeEndControl(t *testing.T) {
	_, s, tree := build(t, "struct S { int a; int b; };")
	p := pattern.Compile("sA{..")

	found := false
	p.Scan(s, &tree, 0, int32(s.Len()), func(m pattern.Match) bool {
		found = true
		assert.Greater(t, m.End, m.Start)
		return false
	})
	assert.True(t, found)
}
