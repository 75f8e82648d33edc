package passes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
	"github.com/blender/bslc/passes"
)

func TestLowerReferenceArgumentsScopesToDeclaredParameters(t *testing.T) {
	src := "void f(float &x, const float &y) {\n  const float &a = b;\n}\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerReferenceArguments(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "void f(inout float x, float y) {")
	// The local declaration inside the body is not a declared parameter and
	// must keep its `&` for LowerReferenceVariables to still see it.
	assert.Contains(t, out, "const float &a = b;")
}

func TestLowerReferenceVariablesLeavesCallSiteNameUntouched(t *testing.T) {
	src := "void f() {\n  const int &a = b;\n  c = a(a);\n}\n"
	f := ir.New("t.bsl", src, nil)
	passes.LowerReferenceVariables(f, metadata.NewSource(), nil)
	out := f.Source()
	assert.Contains(t, out, "c = a(b);")
	assert.NotContains(t, out, "const int &a")
}

func TestLowerReferenceVariablesRejectsNonAccessorCall(t *testing.T) {
	src := "void f() {\n  const int &a = some_other_call();\n  c = a;\n}\n"
	var reports []string
	f := ir.New("t.bsl", src, nil)
	passes.LowerReferenceVariables(f, metadata.NewSource(), func(d diagnostic.Diagnostic) {
		reports = append(reports, d.Message)
	})
	out := f.Source()
	assert.Contains(t, out, "const int &a = some_other_call();")
	assert.NotEmpty(t, reports)
}
