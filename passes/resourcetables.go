package passes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

var resourceAttrToKind = map[string]metadata.ResourceKind{
	"sampler":        metadata.ResourceSampler,
	"image":          metadata.ResourceImage,
	"uniform":        metadata.ResourceUniform,
	"storage":        metadata.ResourceStorage,
	"push_constant":  metadata.ResourcePushConstant,
	"constant":       metadata.ResourceConstant,
}

var interfaceAttrToKind = map[string]metadata.StageInterfaceKind{
	"attribute":       metadata.InterfaceAttribute,
	"flat":            metadata.InterfaceFlat,
	"smooth":          metadata.InterfaceSmooth,
	"no_perspective":  metadata.InterfaceNoPerspective,
	"frag_color":      metadata.InterfaceFragColor,
	"frag_depth":      metadata.InterfaceFragDepth,
	"frag_stencil_ref": metadata.InterfaceFragStencilRef,
}

var resourceTableStructRe = regexp.MustCompile(`\[\[[^\]]*resource_table[^\]]*\]\][ \t]*\n?[ \t]*struct[ \t]+(\w+)[ \t]*\{([^}]*)\}[ \t]*;`)
var resourceMemberRe = regexp.MustCompile(`\[\[(\w+)(?:\(([^)]*)\))?\]\][ \t]*(\w[\w<>]*)[ \t]+(\w+)[ \t]*;`)

// LowerResourceTables partitions a `[[resource_table]] struct X { … };`'s
// members into resource buckets or stage-interface buckets, emits a
// synthetic constructor, per-field access macros, and a
// `CREATE_INFO_RES_*` placeholder block (spec.md §4.9).
func LowerResourceTables(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := resourceTableStructRe.ReplaceAllStringFunc(f.Source(), func(m string) string {
		parts := resourceTableStructRe.FindStringSubmatch(m)
		name, body := parts[1], parts[2]

		var accessMacros strings.Builder
		for _, mem := range resourceMemberRe.FindAllStringSubmatch(body, -1) {
			attr, args, typ, fname := mem[1], mem[2], mem[3], mem[4]
			var argList []string
			if args != "" {
				for _, a := range strings.Split(args, ",") {
					argList = append(argList, strings.TrimSpace(a))
				}
			}
			if kind, ok := resourceAttrToKind[attr]; ok {
				md.ResourceTables = append(md.ResourceTables, metadata.Resource{Kind: kind, Type: typ, Name: fname, Args: argList})
			} else if kind, ok := interfaceAttrToKind[attr]; ok {
				md.StageInterfaces = append(md.StageInterfaces, metadata.StageInterface{Kind: kind, Type: typ, Name: fname, Args: argList})
			} else {
				continue
			}
			fmt.Fprintf(&accessMacros, "#define access_%s_%s(r) ((r).%s)\n", name, fname, fname)
		}

		var b strings.Builder
		b.WriteString(m)
		b.WriteString("\n")
		b.WriteString(accessMacros.String())
		fmt.Fprintf(&b, "static %s %s_new_() { %s r; return r; }\n", name, name, name)
		fmt.Fprintf(&b, "#define CREATE_INFO_RES_%s() /* placeholder */\n", name)
		return b.String()
	})
	replaceSource(f, src)
}
