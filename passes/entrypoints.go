package passes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

// entryBuiltin describes one recognized entry-point parameter attribute:
// its GLSL built-in name and declared type (spec.md §4.9's "Entry points"
// attribute table).
type entryBuiltin struct {
	glName string
	typ    string
}

var entryBuiltins = map[string]entryBuiltin{
	"vertex_id":              {"gl_VertexIndex", "int"},
	"instance_id":            {"gl_InstanceIndex", "int"},
	"base_instance":          {"gl_BaseInstance", "int"},
	"position":               {"gl_Position", "float4"},
	"frag_coord":             {"gl_FragCoord", "float4"},
	"front_facing":           {"gl_FrontFacing", "bool"},
	"layer":                  {"gl_Layer", "int"},
	"viewport_index":         {"gl_ViewportIndex", "int"},
	"point_size":             {"gl_PointSize", "float"},
	"point_coord":            {"gl_PointCoord", "float2"},
	"clip_distance":          {"gl_ClipDistance", "float"},
	"global_invocation_id":   {"gl_GlobalInvocationID", "uint3"},
	"local_invocation_id":    {"gl_LocalInvocationID", "uint3"},
	"local_invocation_index": {"gl_LocalInvocationIndex", "uint"},
	"work_group_id":          {"gl_WorkGroupID", "uint3"},
	"num_work_groups":        {"gl_NumWorkGroups", "uint3"},
	"frag_depth":             {"gl_FragDepth", "float"},
	"frag_stencil_ref":       {"gl_FragStencilRefARB", "int"},
}

var entryPointRe = regexp.MustCompile(`\[\[(vertex|fragment|compute)\]\][ \t]*\n?[ \t]*(\w[\w ]*?)[ \t]+(\w+)[ \t]*\(([^)]*)\)[ \t]*\{`)
var paramAttrRe = regexp.MustCompile(`\[\[(\w+)\]\][ \t]*(?:const[ \t]+)?(\w[\w]*)[ \t]*&?[ \t]*(\w+)`)

// LowerEntryPoints parses each [[vertex]]/[[fragment]]/[[compute]]
// function's per-argument attributes, records the corresponding gl_*
// Builtin in metadata, records a GPU_SHADER_CREATE_INFO declaration, erases
// the signature parameters, and guards the whole function body with
// `#if defined(ENTRY_POINT_<name>)` (spec.md §4.9). References to the erased
// parameters inside the body are not rewritten to the gl_* names.
func LowerEntryPoints(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()

	src = entryPointRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := entryPointRe.FindStringSubmatch(m)
		_, ret, name, paramText := parts[1], strings.TrimSpace(parts[2]), parts[3], parts[4]

		var builtins []string
		for _, p := range paramAttrRe.FindAllStringSubmatch(paramText, -1) {
			attr, declType, pname := p[1], p[2], p[3]
			bi, ok := entryBuiltins[attr]
			if !ok {
				continue
			}
			if declType != bi.typ && report != nil {
				report(diagnostic.Diagnostic{
					Severity: diagnostic.Structural,
					Message:  fmt.Sprintf("entry point %s parameter %s: attribute %s requires type %s", name, pname, attr, bi.typ),
				})
			}
			builtins = append(builtins, bi.glName)
			md.AddBuiltin(bi.glName)
		}

		infoName := name + "_infos_"
		md.CreateInfosDeclarations = append(md.CreateInfosDeclarations,
			fmt.Sprintf("GPU_SHADER_CREATE_INFO(%s) /* builtins: %s */", infoName, strings.Join(builtins, ", ")))

		guard := fmt.Sprintf("#if defined(ENTRY_POINT_%s)\n", name)
		sig := fmt.Sprintf("%s %s()", ret, name)
		return guard + sig + " {"
	})

	src = guardEntryPointBodies(src)
	replaceSource(f, src)
}

// guardEntryPointBodies closes each entry-point guard opened above with a
// matching #endif right after the function body's closing brace.
func guardEntryPointBodies(src string) string {
	marker := "#if defined(ENTRY_POINT_"
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(src[i:], marker)
		if idx < 0 {
			b.WriteString(src[i:])
			break
		}
		idx += i
		openBrace := strings.IndexByte(src[idx:], '{')
		if openBrace < 0 {
			b.WriteString(src[i:])
			break
		}
		openBrace += idx
		depth := 1
		j := openBrace + 1
		for j < len(src) && depth > 0 {
			switch src[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			j++
		}
		b.WriteString(src[i:j])
		b.WriteString("\n#endif\n")
		i = j
	}
	return b.String()
}
