package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/atom"
	"github.com/blender/bslc/token"
)

func TestKindStringRoundTrips(t *testing.T) {
	assert.Equal(t, "Word", token.Word.String())
	assert.Equal(t, "==", token.Equal.String())
	assert.Equal(t, "if", token.KwIf.String())
	assert.Equal(t, "+", token.Kind('+').String())
}

func TestIsKeywordAndIsPunct(t *testing.T) {
	assert.True(t, token.KwFor.IsKeyword())
	assert.False(t, token.Word.IsKeyword())
	assert.True(t, token.Kind('{').IsPunct())
	assert.False(t, token.Word.IsPunct())
}

func TestTokenTextExtractsSpan(t *testing.T) {
	src := "int x;"
	tok := token.Token{Kind: token.Word, Start: 0, End: 3}
	assert.Equal(t, "int", tok.Text(src))
	assert.Equal(t, uint32(3), tok.Len())
}

func TestStreamPushAndAt(t *testing.T) {
	var s token.Stream
	in := atom.NewInterner()
	a, _ := in.Intern("vertex_id")
	s.Push(token.Token{Kind: token.Word, Start: 0, End: 9}, a)
	s.Push(token.Token{Kind: token.EOF, Start: 9, End: 9}, atom.Invalid)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.EndOfFile())
	got := s.At(0)
	assert.Equal(t, token.Word, got.Kind)
	assert.Equal(t, a, s.Atoms[0])
}

func TestEnsureTrailingNewline(t *testing.T) {
	assert.Equal(t, "int x;\n", token.EnsureTrailingNewline("int x;"))
	assert.Equal(t, "int x;\n", token.EnsureTrailingNewline("int x;\n"))
	assert.Equal(t, "", token.EnsureTrailingNewline(""))
}
