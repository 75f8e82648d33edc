package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
	"github.com/blender/bslc/passes"
)

func TestLowerHostSharedReportsComputedPaddingByteCount(t *testing.T) {
	src := "[[host_shared]]\nstruct Frame {\n  float time;\n  packed_float3 sun_dir;\n};\n"
	var messages []string
	f := ir.New("t.bsl", src, nil)
	passes.LowerHostShared(f, metadata.NewSource(), func(d diagnostic.Diagnostic) {
		messages = append(messages, d.Message)
	})
	assert.Contains(t, messages, "host_shared struct Frame member sun_dir is misaligned; 12 bytes of padding required")
}

func TestLowerHostSharedAddsAliasDefine(t *testing.T) {
	src := "[[host_shared]]\nstruct Frame {\n  float time;\n};\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerHostShared(f, metadata.NewSource(), nil)
	assert.Contains(t, f.Source(), "#define Frame_host_shared_ Frame")
}

func TestLowerHostSharedRejectsForbiddenVectorWidth(t *testing.T) {
	src := "[[host_shared]]\nstruct Frame {\n  float3 sun_dir;\n};\n"
	var messages []string
	f := ir.New("t.bsl", src, nil)
	passes.LowerHostShared(f, metadata.NewSource(), func(d diagnostic.Diagnostic) {
		messages = append(messages, d.Message)
	})
	assert.Contains(t, messages, "host_shared struct Frame cannot use float3; use the packed_*3 or bool32_t form")
}
