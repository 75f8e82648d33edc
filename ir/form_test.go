package ir_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/token"
)

func TestApplyMutationsReparsesStream(t *testing.T) {
	f := ir.New("t.bsl", "int foo() { return 1; }\n", nil)
	before := f.Stream.Len()
	require.NotZero(t, before)

	// Replace "foo" with "bar" — find the second Word token.
	count := 0
	for i, k := range f.Stream.Kinds {
		if k == token.Word {
			count++
			if count == 2 {
				f.ReplaceToken(i, "bar", false)
				break
			}
		}
	}

	changed := f.ApplyMutations()
	assert.True(t, changed)
	assert.Contains(t, f.Source(), "bar")
	assert.NotContains(t, f.Source(), "foo")
	assert.Equal(t, before, f.Stream.Len())
}

func TestEraseScopePreservesLineCount(t *testing.T) {
	src := "struct S {\n  int a;\n  int b;\n};\n"
	f := ir.New("t.bsl", src, nil)

	structScope := -1
	for i := 0; i < f.Tree.Len(); i++ {
		k, _ := f.Tree.At(i)
		if k.String() == "Struct" {
			structScope = i
			break
		}
	}
	require.NotEqual(t, -1, structScope)

	linesBefore := strings.Count(f.Source(), "\n")
	f.EraseScope(structScope)
	f.OnlyApplyMutations()
	assert.Equal(t, linesBefore, strings.Count(f.Source(), "\n"))
}

func TestReplaceTryRejectsOverlap(t *testing.T) {
	f := ir.New("t.bsl", "int x;\n", nil)
	assert.True(t, f.ReplaceTry(0, 2, "long"))
	assert.False(t, f.ReplaceTry(1, 3, "short"))
}

func TestInsertDirectiveAddsLineMarker(t *testing.T) {
	f := ir.New("t.bsl", "int x;\nint y;\n", nil)
	f.InsertDirective(0, "#define FOO 1")
	out := f.Result()
	assert.Contains(t, out, "#define FOO 1")
	assert.Contains(t, out, "#line")
}
