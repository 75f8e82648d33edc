package passes

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

// zeroLiteral is the per-type zero value used to synthesize default
// constructors (spec.md §4.9: "using the per-type zero-literal table").
var zeroLiteral = map[string]string{
	"float": "0.0", "int": "0", "uint": "0u", "bool": "false", "bool32_t": "0",
	"float2": "float2(0.0)", "float3": "float3(0.0)", "float4": "float4(0.0)",
	"int2": "int2(0)", "int3": "int3(0)", "int4": "int4(0)",
	"uint2": "uint2(0u)", "uint3": "uint3(0u)", "uint4": "uint4(0u)",
}

var plainStructRe = regexp.MustCompile(`struct[ \t]+(\w+)[ \t]*\{([^{}]*)\}[ \t]*;`)
var fieldDeclRe = regexp.MustCompile(`(?m)^[ \t]*(\w[\w<>]*)[ \t]+(\w+)[ \t]*;[ \t]*$`)

// LowerDefaultConstructors synthesizes `static S S_ctor_() { S r; r.m = 0;
// … return r; }` for every non-host-shared struct (spec.md §4.9). Structs
// already carrying a `_host_shared_` alias (emitted by LowerHostShared) are
// skipped.
func LowerDefaultConstructors(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()
	src = plainStructRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := plainStructRe.FindStringSubmatch(m)
		name, body := parts[1], parts[2]
		if strings.Contains(src, "#define "+name+"_host_shared_") {
			return m
		}
		fields := fieldDeclRe.FindAllStringSubmatch(body, -1)
		if len(fields) == 0 {
			return m
		}
		var b strings.Builder
		b.WriteString(m)
		fmt.Fprintf(&b, "\nstatic %s %s_ctor_() { %s r;", name, name, name)
		for _, fld := range fields {
			typ, fname := fld[1], fld[2]
			zero, ok := zeroLiteral[typ]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, " r.%s = %s;", fname, zero)
		}
		b.WriteString(" return r; }\n")
		return b.String()
	})
	replaceSource(f, src)
}

var methodBodyRe = regexp.MustCompile(`struct[ \t]+(\w+)[ \t]*\{([^{}]*(?:\{[^{}]*\}[^{}]*)*)\}[ \t]*;`)
var methodDeclRe = regexp.MustCompile(`(\w[\w<>]*)[ \t]+(\w+)[ \t]*\(([^)]*)\)[ \t]*(const)?[ \t]*\{([^{}]*)\}`)

// LowerImplicitMember prefixes unqualified references to a struct's own
// fields with `this->` inside method bodies (spec.md §4.9). Field shadowing
// (a local or parameter reusing the field name) suppresses the rewrite for
// that occurrence's enclosing statement, approximated here as: a field name
// that also appears as a parameter name in the same method is left alone.
func LowerImplicitMember(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()
	src = methodBodyRe.ReplaceAllStringFunc(src, func(structMatch string) string {
		parts := methodBodyRe.FindStringSubmatch(structMatch)
		structBody := parts[2]
		fields := map[string]bool{}
		for _, fld := range fieldDeclRe.FindAllStringSubmatch(structBody, -1) {
			fields[fld[2]] = true
		}
		if len(fields) == 0 {
			return structMatch
		}
		return methodDeclRe.ReplaceAllStringFunc(structMatch, func(m string) string {
			mp := methodDeclRe.FindStringSubmatch(m)
			params, body := mp[3], mp[5]
			shadow := map[string]bool{}
			for _, p := range strings.Split(params, ",") {
				fs := strings.Fields(strings.TrimSpace(p))
				if len(fs) > 0 {
					shadow[fs[len(fs)-1]] = true
				}
			}
			newBody := body
			for fname := range fields {
				if shadow[fname] {
					continue
				}
				newBody = qualifyBareIdentifier(newBody, fname, "this->"+fname)
			}
			return strings.Replace(m, body, newBody, 1)
		})
	})
	replaceSource(f, src)
}

// LowerMethodDefinitions marks methods with an explicit `this` parameter
// (by value for const methods, by-inout reference otherwise), renames them
// to `S_methodname`, and moves the definition out of the struct scope
// (spec.md §4.9).
func LowerMethodDefinitions(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()
	var hoisted strings.Builder

	src = methodBodyRe.ReplaceAllStringFunc(src, func(structMatch string) string {
		parts := methodBodyRe.FindStringSubmatch(structMatch)
		structName := parts[1]
		remaining := methodDeclRe.ReplaceAllStringFunc(structMatch, func(m string) string {
			mp := methodDeclRe.FindStringSubmatch(m)
			ret, mname, params, isConst, body := mp[1], mp[2], mp[3], mp[4] == "const", mp[5]
			if mname == structName+"_ctor_" || strings.HasPrefix(mname, structName+"_") {
				return m
			}
			thisParam := "inout " + structName + " this"
			if isConst {
				thisParam = structName + " this"
			}
			sig := thisParam
			if strings.TrimSpace(params) != "" {
				sig += ", " + params
			}
			fmt.Fprintf(&hoisted, "%s %s_%s(%s) {%s}\n", ret, structName, mname, sig, body)
			return ""
		})
		return remaining
	})

	src += "\n" + hoisted.String()
	replaceSource(f, src)
}

var methodCallRe = regexp.MustCompile(`(\w+)\.(\w+)\(([^()]*)\)`)

// LowerMethodCalls rewrites `a.fn(b)` to `_fn(a, b)`. Chains with a deeper
// receiver ([..] subscript or nested call) are resolved by iterating this
// pass to fixpoint, since each pass only needs to see the innermost `.fn()`
// call to rewrite it, same as original_source's description of parsing
// backwards across the receiver chain (spec.md §4.9).
func LowerMethodCalls(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()
	for {
		next := methodCallRe.ReplaceAllString(src, "_$2($1, $3)")
		next = strings.ReplaceAll(next, ", )", ")")
		if next == src {
			break
		}
		src = next
	}
	replaceSource(f, src)
}

var emptyStructRe = regexp.MustCompile(`struct[ \t]+(\w+)[ \t]*\{[ \t\n]*\}[ \t]*;`)

// LowerEmptyStruct synthesizes `int _pad;` for empty structs, since the
// host language requires at least one member (spec.md §4.9).
func LowerEmptyStruct(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := emptyStructRe.ReplaceAllString(f.Source(), "struct $1 { int _pad; };")
	replaceSource(f, src)
}
