package atom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/atom"
)

func TestShortAtomsRoundTripWithoutInterner(t *testing.T) {
	in := atom.NewInterner()

	a, ok := in.Intern("x")
	assert.True(t, ok)
	assert.True(t, a.IsShort())
	assert.Equal(t, "x", in.Value(a))

	b, ok := in.Intern("ab")
	assert.True(t, ok)
	assert.True(t, b.IsShort())
	assert.Equal(t, "ab", in.Value(b))
}

func TestLongAtomsDedupAndRoundTrip(t *testing.T) {
	in := atom.NewInterner()

	a1, ok := in.Intern("vertex_id")
	assert.True(t, ok)
	a2, ok := in.Intern("vertex_id")
	assert.True(t, ok)
	assert.Equal(t, a1, a2)
	assert.False(t, a1.IsShort())
	assert.Equal(t, "vertex_id", in.Value(a1))

	b, ok := in.Intern("instance_id")
	assert.True(t, ok)
	assert.NotEqual(t, a1, b)
}

func TestInternEmptyStringIsInvalid(t *testing.T) {
	in := atom.NewInterner()
	a, ok := in.Intern("")
	assert.False(t, ok)
	assert.Equal(t, atom.Invalid, a)
}
