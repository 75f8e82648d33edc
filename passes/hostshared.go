package passes

import (
	"regexp"
	"strconv"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

type hostSharedType struct {
	size, align int
}

// hostSharedSizeTable is spec.md §4.9's fixed size/alignment table for
// [[host_shared]] struct members.
var hostSharedSizeTable = map[string]hostSharedType{
	"float": {4, 4}, "int": {4, 4}, "uint": {4, 4}, "bool32_t": {4, 4}, "string_t": {4, 4},
	"float2": {8, 8}, "int2": {8, 8}, "uint2": {8, 8},
	"float4": {16, 16}, "int4": {16, 16}, "uint4": {16, 16},
	"packed_float3": {12, 16}, "packed_int3": {12, 16}, "packed_uint3": {12, 16},
	"float2x4": {32, 16}, "float3x4": {48, 16}, "float4x4": {64, 16},
}

var forbiddenHostSharedTypes = map[string]bool{
	"float3": true, "int3": true, "uint3": true, "bool": true,
}

var hostSharedStructRe = regexp.MustCompile(`\[\[[^\]]*host_shared[^\]]*\]\][ \t]*\n?[ \t]*struct[ \t]+(\w+)[ \t]*\{([^}]*)\}[ \t]*;`)
var memberDeclRe = regexp.MustCompile(`(\w[\w]*)[ \t]+(\w+)[ \t]*;`)

// LowerHostShared validates [[host_shared]] struct member sizes and
// 16-byte-stride alignment, rejects non-packed 3-wide vector types and
// plain bool, emits padding diagnostics when misaligned, and appends a
// `#define S_host_shared_ S` alias (spec.md §4.9).
func LowerHostShared(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := hostSharedStructRe.ReplaceAllStringFunc(f.Source(), func(m string) string {
		parts := hostSharedStructRe.FindStringSubmatch(m)
		name, body := parts[1], parts[2]

		offset := 0
		for _, mem := range memberDeclRe.FindAllStringSubmatch(body, -1) {
			typ := mem[1]
			if forbiddenHostSharedTypes[typ] {
				if report != nil {
					report(diagnostic.Diagnostic{
						Severity: diagnostic.Structural,
						Message:  "host_shared struct " + name + " cannot use " + typ + "; use the packed_*3 or bool32_t form",
					})
				}
				continue
			}
			info, ok := hostSharedSizeTable[typ]
			if !ok {
				continue
			}
			if offset%info.align != 0 {
				padding := info.align - offset%info.align
				if report != nil {
					report(diagnostic.Diagnostic{
						Severity: diagnostic.Structural,
						Message:  "host_shared struct " + name + " member " + mem[2] + " is misaligned; " + strconv.Itoa(padding) + " bytes of padding required",
					})
				}
				offset += padding
			}
			offset += info.size
		}

		return m + "\n#define " + name + "_host_shared_ " + name + "\n"
	})
	replaceSource(f, src)
}
