package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blender/bslc/expr"
)

func eval(t *testing.T, s string, resolve expr.Resolver) int64 {
	t.Helper()
	v, err := expr.Eval(s, resolve)
	require.NoError(t, err)
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	assert.EqualValues(t, 14, eval(t, "2 + 3 * 4", nil))
	assert.EqualValues(t, 20, eval(t, "(2 + 3) * 4", nil))
}

func TestComparisonAndLogic(t *testing.T) {
	assert.EqualValues(t, 1, eval(t, "1 < 2 && 3 > 2", nil))
	assert.EqualValues(t, 0, eval(t, "1 == 2 || 0", nil))
}

func TestTernaryRightAssociative(t *testing.T) {
	assert.EqualValues(t, 1, eval(t, "1 ? 1 : 0 ? 2 : 3", nil))
	assert.EqualValues(t, 3, eval(t, "0 ? 1 : 0 ? 2 : 3", nil))
}

func TestUndefinedIdentifierIsZero(t *testing.T) {
	assert.EqualValues(t, 0, eval(t, "UNDEFINED_SYMBOL", nil))
	assert.EqualValues(t, 1, eval(t, "!UNDEFINED_SYMBOL", nil))
}

func TestBangParity(t *testing.T) {
	assert.EqualValues(t, 0, eval(t, "!5", nil))
	assert.EqualValues(t, 1, eval(t, "!!5", nil))
	assert.EqualValues(t, 0, eval(t, "!!!5", nil))
}

func TestResolverLookup(t *testing.T) {
	resolve := func(name string) (int64, bool) {
		if name == "FOO" {
			return 7, true
		}
		return 0, false
	}
	assert.EqualValues(t, 14, eval(t, "FOO * 2", resolve))
}

func TestDivisionByZeroErrors(t *testing.T) {
	_, err := expr.Eval("1 / 0", nil)
	require.Error(t, err)
	_, err = expr.Eval("1 % 0", nil)
	require.Error(t, err)
}

func TestBitwiseOperators(t *testing.T) {
	assert.EqualValues(t, 6, eval(t, "2 | 4", nil))
	assert.EqualValues(t, 0, eval(t, "2 & 4", nil))
	assert.EqualValues(t, 6, eval(t, "2 ^ 4", nil))
}
