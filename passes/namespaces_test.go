package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
	"github.com/blender/bslc/passes"
)

func TestLowerNamespacesSplitsCompoundNameAndCollapsesScopeOperator(t *testing.T) {
	src := "namespace a::b {\n  int x;\n}\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerNamespaces(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "namespace a {namespace b {")
	assert.NotContains(t, out, "::")
}

func TestLowerUsingRejectsUsingNamespaceAndRewritesAlias(t *testing.T) {
	src := "using namespace foo;\nusing vec = float3;\nvec v;\n"
	var messages []string
	f := ir.New("t.bsl", src, nil)
	passes.LowerUsing(f, metadata.NewSource(), func(d diagnostic.Diagnostic) {
		messages = append(messages, d.Message)
	})
	out := f.Source()
	assert.NotContains(t, out, "using namespace")
	assert.Contains(t, out, "float3 v;")
	assert.NotEmpty(t, messages)
}
