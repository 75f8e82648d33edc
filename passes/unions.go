package passes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

// unionMemberSize is the raw byte size of the scalar/vector types this
// dialect's union_t<T> wrapper may hold, used to size the unwrapped
// storage struct (spec.md §4.9: "allocating raw float/float2/float3/float4
// slots per 16 bytes").
var unionMemberSize = map[string]int{
	"float": 4, "int": 4, "uint": 4, "bool32_t": 4,
	"float2": 8, "int2": 8, "uint2": 8,
	"float3": 12, "int3": 12, "uint3": 12,
	"float4": 16, "int4": 16, "uint4": 16,
}

var anonUnionRe = regexp.MustCompile(`union[ \t]*\{([^}]*)\}[ \t]*;`)
var unionMemberDeclRe = regexp.MustCompile(`union_t<(\w+)>[ \t]+(\w+)[ \t]*;`)

// LowerUnions unwraps an anonymous union's union_t<T>-wrapped members into
// a raw-slot storage struct sized to the widest member, rounded up to a
// 16-byte slot count, plus a getter/setter pair per member, and strips the
// union_t<T> wrapper (spec.md §4.9).
func LowerUnions(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := anonUnionRe.ReplaceAllStringFunc(f.Source(), func(m string) string {
		parts := anonUnionRe.FindStringSubmatch(m)
		body := parts[1]
		members := unionMemberDeclRe.FindAllStringSubmatch(body, -1)
		if len(members) == 0 {
			return m
		}
		widest := 0
		for _, mem := range members {
			if sz := unionMemberSize[mem[1]]; sz > widest {
				widest = sz
			}
		}
		slots := (widest + 15) / 16
		if slots < 1 {
			slots = 1
		}

		var b strings.Builder
		fmt.Fprintf(&b, "float4 _union_storage[%d];\n", slots)
		for _, mem := range members {
			typ, name := mem[1], mem[2]
			fmt.Fprintf(&b, "%s get_%s() { return *((thread %s *)&_union_storage); }\n", typ, name, typ)
			fmt.Fprintf(&b, "void set_%s(%s v) { *((thread %s *)&_union_storage) = v; }\n", name, typ, typ)
		}
		return b.String()
	})
	replaceSource(f, src)
}
