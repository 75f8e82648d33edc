package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
	"github.com/blender/bslc/passes"
)

func TestLowerResourceTablesEmitsAccessorsAndConstructor(t *testing.T) {
	src := "[[resource_table]]\nstruct Res {\n  [[sampler]] sampler2D tex;\n};\n"
	md := metadata.NewSource()
	f := ir.New("t.bsl", src, nil)
	passes.LowerResourceTables(f, md, nil)
	out := f.Source()
	assert.Contains(t, out, "#define access_Res_tex(r) ((r).tex)")
	assert.Contains(t, out, "static Res Res_new_() { Res r; return r; }")
	assert.Contains(t, out, "#define CREATE_INFO_RES_Res() /* placeholder */")
	assert.Len(t, md.ResourceTables, 1)
	assert.Equal(t, metadata.ResourceSampler, md.ResourceTables[0].Kind)
}

func TestLowerResourceTablesRoutesInterfaceMembersSeparately(t *testing.T) {
	src := "[[resource_table]]\nstruct Res {\n  [[flat]] int id;\n};\n"
	md := metadata.NewSource()
	f := ir.New("t.bsl", src, nil)
	passes.LowerResourceTables(f, md, nil)
	assert.Len(t, md.StageInterfaces, 1)
	assert.Equal(t, metadata.InterfaceFlat, md.StageInterfaces[0].Kind)
	assert.Empty(t, md.ResourceTables)
}
