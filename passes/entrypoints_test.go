package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
	"github.com/blender/bslc/passes"
)

func TestLowerEntryPointsGuardsBodyAndRecordsBuiltin(t *testing.T) {
	src := "[[vertex]]\nvoid main([[position]] float4 p) {\n  x = 1;\n}\n"
	md := metadata.NewSource()
	f := ir.New("t.bsl", src, nil)
	passes.LowerEntryPoints(f, md, nil)
	out := f.Source()
	assert.Contains(t, out, "#if defined(ENTRY_POINT_main)")
	assert.Contains(t, out, "#endif")
	assert.Contains(t, md.Builtins, "gl_Position")
	assert.Len(t, md.CreateInfosDeclarations, 1)
}

func TestLowerEntryPointsFlagsMismatchedBuiltinType(t *testing.T) {
	src := "[[fragment]]\nvoid main([[position]] float2 p) {\n  x = 1;\n}\n"
	var messages []string
	f := ir.New("t.bsl", src, nil)
	passes.LowerEntryPoints(f, metadata.NewSource(), func(d diagnostic.Diagnostic) {
		messages = append(messages, d.Message)
	})
	assert.NotEmpty(t, messages)
}
