package passes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

var defaultedParamFuncRe = regexp.MustCompile(`(\w[\w<>]*)[ \t]+(\w+)[ \t]*\(([^)]*=[^)]*)\)[ \t]*\{`)

// LowerDefaultArguments generates an overload cascade for each function
// with any defaulted parameter: one overload per trailing default that
// forwards to the fully-specified call (spec.md §4.9).
func LowerDefaultArguments(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()
	var cascade strings.Builder

	src = defaultedParamFuncRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := defaultedParamFuncRe.FindStringSubmatch(m)
		ret, name, paramText := parts[1], parts[2], parts[3]

		type param struct {
			decl, name, def string
			hasDefault      bool
		}
		var params []param
		for _, p := range strings.Split(paramText, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if idx := strings.Index(p, "="); idx >= 0 {
				decl := strings.TrimSpace(p[:idx])
				def := strings.TrimSpace(p[idx+1:])
				fields := strings.Fields(decl)
				params = append(params, param{decl: decl, name: fields[len(fields)-1], def: def, hasDefault: true})
			} else {
				fields := strings.Fields(p)
				params = append(params, param{decl: p, name: fields[len(fields)-1]})
			}
		}

		firstDefault := -1
		for i, p := range params {
			if p.hasDefault {
				firstDefault = i
				break
			}
		}
		if firstDefault < 0 {
			return m
		}

		for n := firstDefault - 1; n < len(params)-1; n++ {
			var declParts, callParts []string
			for i := 0; i < len(params); i++ {
				if i <= n {
					declParts = append(declParts, params[i].decl)
					callParts = append(callParts, params[i].name)
				} else {
					callParts = append(callParts, params[i].def)
				}
			}
			fmt.Fprintf(&cascade, "%s %s(%s) { return %s(%s); }\n",
				ret, name, strings.Join(declParts, ", "), name, strings.Join(callParts, ", "))
		}

		fullDecl := make([]string, len(params))
		for i, p := range params {
			fullDecl[i] = p.decl
		}
		return fmt.Sprintf("%s %s(%s) {", ret, name, strings.Join(fullDecl, ", "))
	})

	src += "\n" + cascade.String()
	replaceSource(f, src)
}
