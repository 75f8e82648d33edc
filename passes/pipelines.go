package passes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

var pipelineGraphicRe = regexp.MustCompile(`PipelineGraphic[ \t]*\([ \t]*(\w+)[ \t]*,[ \t]*(\w+)[ \t]*,[ \t]*(\w+)[ \t]*,[ \t]*\{([^}]*)\}[ \t]*\)[ \t]*;`)
var pipelineComputeRe = regexp.MustCompile(`PipelineCompute[ \t]*\([ \t]*(\w+)[ \t]*,[ \t]*(\w+)[ \t]*,[ \t]*\{([^}]*)\}[ \t]*\)[ \t]*;`)
var constantEntryRe = regexp.MustCompile(`\.(\w+)[ \t]*=[ \t]*([^,}]+)`)

// LowerPipelines expands PipelineGraphic/PipelineCompute calls into
// GPU_SHADER_CREATE_INFO records naming the shader functions and one
// COMPILATION_CONSTANT per designated constant (spec.md §4.9).
func LowerPipelines(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()

	src = pipelineGraphicRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := pipelineGraphicRe.FindStringSubmatch(m)
		name, vertexFn, fragmentFn, consts := parts[1], parts[2], parts[3], parts[4]
		var b strings.Builder
		fmt.Fprintf(&b, "GPU_SHADER_CREATE_INFO(%s)\n", name)
		fmt.Fprintf(&b, "GRAPHIC_SOURCE(%s)\n", name)
		fmt.Fprintf(&b, "VERTEX_FUNCTION(%s)\n", vertexFn)
		fmt.Fprintf(&b, "FRAGMENT_FUNCTION(%s)\n", fragmentFn)
		fmt.Fprintf(&b, "ADDITIONAL_INFO(%s_infos_)\n", vertexFn)
		fmt.Fprintf(&b, "ADDITIONAL_INFO(%s_infos_)\n", fragmentFn)
		emitCompilationConstants(&b, consts)
		info := b.String()
		md.CreateInfos = append(md.CreateInfos, info)
		return info
	})

	src = pipelineComputeRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := pipelineComputeRe.FindStringSubmatch(m)
		name, computeFn, consts := parts[1], parts[2], parts[3]
		var b strings.Builder
		fmt.Fprintf(&b, "GPU_SHADER_CREATE_INFO(%s)\n", name)
		fmt.Fprintf(&b, "COMPUTE_SOURCE(%s)\n", name)
		fmt.Fprintf(&b, "ADDITIONAL_INFO(%s_infos_)\n", computeFn)
		emitCompilationConstants(&b, consts)
		info := b.String()
		md.CreateInfos = append(md.CreateInfos, info)
		return info
	})

	replaceSource(f, src)
}

func emitCompilationConstants(b *strings.Builder, consts string) {
	for _, m := range constantEntryRe.FindAllStringSubmatch(consts, -1) {
		name, value := m[1], strings.TrimSpace(m[2])
		fmt.Fprintf(b, "COMPILATION_CONSTANT(%s, %s, %s)\n", inferConstantType(value), name, value)
	}
}

func inferConstantType(value string) string {
	switch {
	case value == "true" || value == "false":
		return "bool"
	case strings.HasSuffix(value, "u"):
		return "uint"
	case strings.Contains(value, "."):
		return "float"
	default:
		return "int"
	}
}
