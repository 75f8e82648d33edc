package bslc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blender/bslc/bslc"
)

func TestTranspileRejectsUnknownMode(t *testing.T) {
	_, err := bslc.Transpile("int x;\n", bslc.Options{File: "t.bsl"}, nil)
	require.Error(t, err)
}

func TestTranspileCPPOnlyRunsConditionals(t *testing.T) {
	res, err := bslc.Transpile("#ifdef FOO\nint a;\n#else\nint b;\n#endif\n", bslc.Options{File: "t.bsl", Mode: bslc.CPP}, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Source, "int b;")
	assert.NotContains(t, res.Source, "int a;")
}

func TestTranspileReducedSkipsStructuralLowering(t *testing.T) {
	res, err := bslc.Transpile("class Foo {};\n", bslc.Options{File: "t.bsl", Mode: bslc.MSL}, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Source, "class Foo")
}

func TestTranspileFullRunsStructuralLowering(t *testing.T) {
	res, err := bslc.Transpile("class Foo {\n  int m;\n};\n", bslc.Options{File: "t.bsl", Mode: bslc.BSL}, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Source, "struct Foo")
	assert.NotEmpty(t, res.Timings)
}
