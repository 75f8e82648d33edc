// Package passes implements the lowering pipeline of spec.md §4.9: an
// ordered sequence of rule collections over an ir.Form, each one applied to
// fixpoint before the next runs. Grounded on original_source's
// processor.hh/.cc, which lists the same pass names as public methods on
// SourceProcessor and runs them in the same order from a single driver
// method, and on original_source's time_it.hh for per-pass timing.
package passes

import (
	"time"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

// Pass is one named lowering rule collection.
type Pass struct {
	Name string
	Run  func(f *ir.Form, md *metadata.Source, report diagnostic.Callback)
}

// Pipeline runs a fixed ordered list of passes over one ir.Form, recording
// per-pass wall-clock time the way original_source's time_it wraps each
// SourceProcessor method.
type Pipeline struct {
	passes  []Pass
	timings map[string]time.Duration
}

// New returns a Pipeline with the full spec.md §4.9 pass order.
func New() *Pipeline {
	return &Pipeline{passes: defaultPasses()}
}

// NewWithPasses returns a Pipeline running exactly the given passes, for
// tests that want to exercise one stage in isolation.
func NewWithPasses(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

func defaultPasses() []Pass {
	return []Pass{
		{"cleanup_and_parse", CleanupAndParse},
		{"lower_attribute_sequences", LowerAttributeSequences},
		{"lower_trailing_comma_in_list", LowerTrailingCommaInList},
		{"lower_comma_separated_declarations", LowerCommaSeparatedDeclarations},
		{"lower_classes", LowerClasses},
		{"lower_noop_keywords", LowerNoopKeywords},
		{"lower_swizzle_methods", LowerSwizzleMethods},
		{"lint", Lint},
		{"lower_template_dependent_names", LowerTemplateDependentNames},
		{"lower_templates", LowerTemplates},
		{"lower_using", LowerUsing},
		{"lower_namespaces", LowerNamespaces},
		{"lower_enums", LowerEnums},
		{"lower_unions", LowerUnions},
		{"lower_host_shared", LowerHostShared},
		{"lower_entry_points", LowerEntryPoints},
		{"lower_resource_tables", LowerResourceTables},
		{"lower_resource_access_guards", LowerResourceAccessGuards},
		{"lower_default_constructors", LowerDefaultConstructors},
		{"lower_implicit_member", LowerImplicitMember},
		{"lower_method_definitions", LowerMethodDefinitions},
		{"lower_method_calls", LowerMethodCalls},
		{"lower_empty_struct", LowerEmptyStruct},
		{"lower_pipelines", LowerPipelines},
		{"lower_strings_printf_assert", LowerStringsPrintfAssert},
		{"lower_loop_unroll", LowerLoopUnroll},
		{"lower_static_branch", LowerStaticBranch},
		{"lower_reference_arguments", LowerReferenceArguments},
		{"lower_reference_variables", LowerReferenceVariables},
		{"lower_default_arguments", LowerDefaultArguments},
		{"final_cleanup", FinalCleanup},
	}
}

// Run executes every pass in order against f, recording each one's
// duration. md accumulates the metadata.Source record; report receives
// diagnostics raised by any pass.
func (p *Pipeline) Run(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	p.timings = make(map[string]time.Duration, len(p.passes))
	for _, pass := range p.passes {
		start := time.Now()
		pass.Run(f, md, report)
		p.timings[pass.Name] = time.Since(start)
	}
}

// Timings returns the wall-clock duration of the most recent Run, keyed by
// pass name.
func (p *Pipeline) Timings() map[string]time.Duration {
	return p.timings
}

// replaceSource swaps f's entire source text for newSrc in one mutation and
// reparses, for passes whose transform is easiest to express as a single
// textual rewrite of the whole file — exactly how spec.md §4.9 describes
// lower_templates's per-instance work: "all done by textual substitution
// via a throwaway IntermediateForm per instance."
func replaceSource(f *ir.Form, newSrc string) {
	if newSrc == f.Source() {
		return
	}
	src := f.Source()
	if len(src) == 0 {
		return
	}
	f.Replace(0, len(src)-1, newSrc)
	f.ApplyMutations()
}
