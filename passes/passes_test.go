package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
	"github.com/blender/bslc/passes"
)

func TestLowerAttributeSequencesMergesToFixpoint(t *testing.T) {
	f := ir.New("t.bsl", "[[a]] [[b]] [[c]]\nint x;\n", nil)
	passes.LowerAttributeSequences(f, metadata.NewSource(), nil)
	assert.Contains(t, f.Source(), "[[a, b, c]]")
}

func TestLowerTrailingCommaInList(t *testing.T) {
	f := ir.New("t.bsl", "int arr[] = {1, 2, 3,};\n", nil)
	passes.LowerTrailingCommaInList(f, metadata.NewSource(), nil)
	assert.NotContains(t, f.Source(), ",}")
}

func TestLowerClassesSkipsEnumClass(t *testing.T) {
	f := ir.New("t.bsl", "enum class Foo : int { A };\nclass Bar {};\n", nil)
	passes.LowerClasses(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "enum class Foo")
	assert.Contains(t, out, "struct Bar")
}

func TestLowerSwizzleMethodsPreservesLength(t *testing.T) {
	src := "float3 v = a.xyz();\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerSwizzleMethods(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, ".xyz")
	assert.NotContains(t, out, "()")
}

func TestLowerEnumsAutonumbersAndEmitsDefine(t *testing.T) {
	f := ir.New("t.bsl", "enum class Color : uint { RED = 0, GREEN, BLUE };\n", nil)
	passes.LowerEnums(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "#define Color uint")
	assert.Contains(t, out, "Color::GREEN = 1u")
	assert.Contains(t, out, "Color::BLUE = 2u")
}

func TestLowerMethodCallsRewritesToFreeFunction(t *testing.T) {
	f := ir.New("t.bsl", "x = a.fn(b);\n", nil)
	passes.LowerMethodCalls(f, metadata.NewSource(), nil)
	assert.Contains(t, f.Source(), "_fn(a, b)")
}

func TestLowerEmptyStructGetsPad(t *testing.T) {
	f := ir.New("t.bsl", "struct Empty {\n};\n", nil)
	passes.LowerEmptyStruct(f, metadata.NewSource(), nil)
	assert.Contains(t, f.Source(), "int _pad;")
}

func TestPipelineRunRecordsTimings(t *testing.T) {
	f := ir.New("t.bsl", "int x;\n", nil)
	p := passes.New()
	p.Run(f, metadata.NewSource(), nil)
	timings := p.Timings()
	assert.Contains(t, timings, "cleanup_and_parse")
	assert.Contains(t, timings, "final_cleanup")
}
