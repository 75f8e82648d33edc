package passes

import (
	"regexp"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

var functionDefRe = regexp.MustCompile(`(\w[\w<>:]*)[ \t]+(\w+)[ \t]*\(([^)]*)\)[ \t]*\{`)
var interfaceGetRe = regexp.MustCompile(`\binterface_get[ \t]*\([ \t]*(\w+)[ \t]*,`)

// trivialReturnTypes mirrors processor.cc's guarded_scope_mutation: the
// builtin scalar/vector/matrix types a bare `T(0)` zero-constructs.
var trivialReturnTypes = map[string]bool{
	"float": true, "float2": true, "float3": true, "float4": true,
	"int": true, "int2": true, "int3": true, "int4": true,
	"uint": true, "uint2": true, "uint3": true, "uint4": true,
	"float2x2": true, "float2x3": true, "float2x4": true,
	"float3x2": true, "float3x3": true, "float3x4": true,
	"float4x2": true, "float4x3": true, "float4x4": true,
}

// LowerResourceAccessGuards wraps a function body referencing
// interface_get(name, ...) in `#if defined(CREATE_INFO_<name>) ... #endif`,
// so the call only compiles into variants whose create-info actually
// declares that resource (spec.md §8's default-branch guard scenario).
// When the enclosing function returns a non-void trivial type, a matching
// `#else return T(0);` branch keeps the function well-formed when the
// create-info is absent. Grounded on original_source's resource_table.cc
// lower_resource_access_functions and its shared guarded_scope_mutation
// helper.
func LowerResourceAccessGuards(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()

	var out strings.Builder
	last := 0
	for _, loc := range functionDefRe.FindAllStringSubmatchIndex(src, -1) {
		if loc[0] < last {
			continue
		}
		retType := src[loc[2]:loc[3]]

		openBrace := loc[1] - 1
		depth := 1
		i := openBrace + 1
		for i < len(src) && depth > 0 {
			switch src[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
			i++
		}
		if depth != 0 {
			continue
		}
		body := src[openBrace+1 : i-1]

		var names []string
		seen := map[string]bool{}
		for _, am := range interfaceGetRe.FindAllStringSubmatch(body, -1) {
			if !seen[am[1]] {
				seen[am[1]] = true
				names = append(names, am[1])
			}
		}
		if len(names) == 0 {
			out.WriteString(src[last:i])
			last = i
			continue
		}

		wrapped := body
		for idx := len(names) - 1; idx >= 0; idx-- {
			elseBranch := ""
			if retType != "void" && trivialReturnTypes[retType] {
				elseBranch = "\n#else\n  return " + retType + "(0);\n"
			}
			wrapped = "\n#if defined(CREATE_INFO_" + names[idx] + ")" + wrapped + elseBranch + "#endif\n"
		}

		out.WriteString(src[last : openBrace+1])
		out.WriteString(wrapped)
		out.WriteString("}")
		last = i
	}
	out.WriteString(src[last:])

	replaceSource(f, out.String())
}
