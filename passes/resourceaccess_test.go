package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
	"github.com/blender/bslc/passes"
)

func TestLowerResourceAccessGuardsVoidReturnHasNoElseBranch(t *testing.T) {
	src := "void f() {\n  float v = interface_get(draw_resource_id_varying, 0);\n}\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerResourceAccessGuards(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "#if defined(CREATE_INFO_draw_resource_id_varying)")
	assert.Contains(t, out, "#endif")
	assert.NotContains(t, out, "#else")
}

func TestLowerResourceAccessGuardsNonVoidReturnAddsDefaultBranch(t *testing.T) {
	src := "uint my_func() {\n  return interface_get(draw_resource_id_varying, 0);\n}\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerResourceAccessGuards(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "#if defined(CREATE_INFO_draw_resource_id_varying)")
	assert.Contains(t, out, "#else\n  return uint(0);\n")
	assert.Contains(t, out, "#endif")
}

func TestLowerResourceAccessGuardsSkipsFunctionsWithoutInterfaceGet(t *testing.T) {
	src := "uint other() {\n  return 1u;\n}\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerResourceAccessGuards(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Equal(t, src, out)
}
