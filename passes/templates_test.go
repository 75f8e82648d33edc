package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
	"github.com/blender/bslc/passes"
)

func TestLowerTemplatesSkipsManglingWhenDeducible(t *testing.T) {
	src := "template<typename T> T read(T a) { return a; }\ntemplate float read<float>(float);\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerTemplates(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "float read(float a) { return a; }")
	assert.NotContains(t, out, "readTfloat")
}

func TestLowerTemplatesMarksStructInstantiationsWithMangledNames(t *testing.T) {
	src := "template<typename T> struct Box { T value; };\ntemplate struct Box<int>;\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerTemplates(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "struct BoxTint {")
	assert.Contains(t, out, "int value;")
	assert.NotContains(t, out, "template struct Box<int>;")
}

func TestLowerTemplatesMarksValueParamTemplatesAsNonDeducible(t *testing.T) {
	src := "template<typename T, int N> T scale(T a) { return a; }\ntemplate float scale<float, 2>(float);\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerTemplates(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "scaleTfloatT2")
}

func TestLowerTemplatesManglesRemainingCallSites(t *testing.T) {
	src := "template<typename T, int N> T scale(T a) { return a; }\ntemplate float scale<float, 2>(float);\nfloat y = scale<float, 2>(1.0);\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerTemplates(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "scaleTfloatT2(1.0)")
}
