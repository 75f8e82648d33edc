package passes

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

var enumDeclRe = regexp.MustCompile(`enum[ \t]+(?:class[ \t]+)?(\w+)(?:[ \t]*:[ \t]*(\w+))?[ \t]*\{([^}]*)\}[ \t]*;`)

// LowerEnums rewrites `enum class E : T { A = 0, B, … };` into a `#define E
// T` alias, one `constant static constexpr T E::A = …;` per value, and a
// stub constructor, per spec.md §4.9. An explicit underlying type is
// required; autonumbering fills in missing initializers.
func LowerEnums(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := enumDeclRe.ReplaceAllStringFunc(f.Source(), func(m string) string {
		parts := enumDeclRe.FindStringSubmatch(m)
		name, underlying, body := parts[1], parts[2], parts[3]
		if underlying == "" {
			if report != nil {
				report(diagnostic.Diagnostic{
					Severity: diagnostic.Structural,
					Message:  "enum class " + name + " requires an explicit underlying type",
				})
			}
			return m
		}
		signed := !strings.HasPrefix(underlying, "u")

		var b strings.Builder
		b.WriteString("#define ")
		b.WriteString(name)
		b.WriteString(" ")
		b.WriteString(underlying)
		b.WriteByte('\n')

		prev := int64(-1)
		for _, entry := range strings.Split(body, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			var valName, valExpr string
			if idx := strings.Index(entry, "="); idx >= 0 {
				valName = strings.TrimSpace(entry[:idx])
				valExpr = strings.TrimSpace(entry[idx+1:])
			} else {
				valName = entry
				if signed {
					valExpr = strconv.FormatInt(prev+1, 10)
				} else {
					valExpr = strconv.FormatInt(prev+1, 10) + "u"
				}
			}
			if n, err := strconv.ParseInt(strings.TrimSuffix(valExpr, "u"), 0, 64); err == nil {
				prev = n
			}
			b.WriteString("constant static constexpr ")
			b.WriteString(underlying)
			b.WriteString(" ")
			b.WriteString(name)
			b.WriteString("::")
			b.WriteString(valName)
			b.WriteString(" = ")
			b.WriteString(valExpr)
			b.WriteString(";\n")
		}
		b.WriteString(name)
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString("_ctor_() { return ")
		b.WriteString(name)
		b.WriteString("(0); }\n")
		return b.String()
	})
	replaceSource(f, src)
}
