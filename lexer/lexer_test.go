package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blender/bslc/atom"
	"github.com/blender/bslc/lexer"
	"github.com/blender/bslc/token"
)

func TestTokenizeInvariants(t *testing.T) {
	cases := []string{
		"",
		"\n",
		"int x = 1;\n",
		"a+=b-c;\n",
		"x == y != z >= w <= v -> f++ g--;\n",
	}
	for _, src := range cases {
		src = token.EnsureTrailingNewline(src)
		s := lexer.Tokenize(src)
		require.Equal(t, token.EOF, s.Kinds[s.Len()-1])
		require.Equal(t, uint32(len(src)), s.Starts[s.Len()-1])

		var prevEnd uint32
		for i := 0; i < s.Len(); i++ {
			assert.GreaterOrEqual(t, s.Starts[i], prevEnd)
			assert.GreaterOrEqual(t, s.Ends[i], s.Starts[i])
			prevEnd = s.Ends[i]
		}
	}
}

func TestMultiCharPunctuation(t *testing.T) {
	src := token.EnsureTrailingNewline("a == b != c >= d <= e -> f++ g--;")
	s := lexer.Tokenize(src)

	var kinds []token.Kind
	for i := 0; i < s.Len(); i++ {
		if s.Kinds[i] != token.Space {
			kinds = append(kinds, s.Kinds[i])
		}
	}
	want := []token.Kind{
		token.Word, token.Equal, token.Word, token.NotEqual, token.Word, token.GEqual,
		token.Word, token.LEqual, token.Word, token.Deref, token.Word, token.Increment,
		token.Word, token.Decrement, token.Kind(';'), token.NewLine, token.EOF,
	}
	require.Equal(t, want, kinds)
}

func TestPlusMinusDoNotFalselyMerge(t *testing.T) {
	src := token.EnsureTrailingNewline("a +- b")
	s := lexer.Tokenize(src)
	var kinds []token.Kind
	for i := 0; i < s.Len(); i++ {
		kinds = append(kinds, s.Kinds[i])
	}
	// '+' and '-' are each individually in ClassMultiTok but "+-" is not a
	// recognized merged token, so they must remain two separate tokens.
	assert.Contains(t, kinds, token.Kind('+'))
	assert.Contains(t, kinds, token.Kind('-'))
}

func TestMergeStringLiteral(t *testing.T) {
	src := token.EnsureTrailingNewline(`x = "hello \"world\"";`)
	s := lexer.Tokenize(src)
	s = lexer.MergeLiterals(src, s)

	found := false
	for i := 0; i < s.Len(); i++ {
		if s.Kinds[i] == token.String {
			found = true
			assert.Equal(t, `"hello \"world\""`, s.At(i).Text(src))
		}
	}
	assert.True(t, found, "expected a merged String token")
}

func TestMergeNumberLiteral(t *testing.T) {
	for _, num := range []string{"0x1Au", "1.5f", "1e-10", "42"} {
		src := token.EnsureTrailingNewline("x = " + num + ";")
		s := lexer.Tokenize(src)
		s = lexer.MergeLiterals(src, s)

		var got string
		for i := 0; i < s.Len(); i++ {
			if s.Kinds[i] == token.Number {
				got = s.At(i).Text(src)
			}
		}
		assert.Equal(t, num, got)
	}
}

func TestMergeWhitespacePreservesOriginalEnds(t *testing.T) {
	src := token.EnsureTrailingNewline("a   b\n")
	s := lexer.Tokenize(src)
	s = lexer.MergeWhitespace(s)

	// "a" token should now absorb the trailing spaces up to "b".
	require.Equal(t, token.Word, s.Kinds[0])
	assert.Less(t, s.OriginalEnds[0], s.Ends[0])
}

func TestIdentifyKeywords(t *testing.T) {
	src := token.EnsureTrailingNewline("struct Foo { if (x) return; };")
	s := lexer.Tokenize(src)
	s = lexer.MergeLiterals(src, s)
	in := atom.NewInterner()
	require.NoError(t, lexer.IdentifyKeywords(src, s, in))

	var kinds []token.Kind
	for i := 0; i < s.Len(); i++ {
		if s.Kinds[i] != token.Space && s.Kinds[i] != token.NewLine {
			kinds = append(kinds, s.Kinds[i])
		}
	}
	assert.Contains(t, kinds, token.KwStruct)
	assert.Contains(t, kinds, token.KwIf)
	assert.Contains(t, kinds, token.KwReturn)
	// "Foo" is not a keyword and must stay a Word.
	assert.Contains(t, kinds, token.Word)
}
