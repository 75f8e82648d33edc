package passes

import (
	"regexp"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

var usingNamespaceRe = regexp.MustCompile(`(?m)^[ \t]*using[ \t]+namespace[ \t]+[\w:]+[ \t]*;[ \t]*$`)
var usingAliasRe = regexp.MustCompile(`(?m)^[ \t]*using[ \t]+(\w+)[ \t]*=[ \t]*([\w:<>]+)[ \t]*;[ \t]*\n?`)
var usingImportRe = regexp.MustCompile(`(?m)^[ \t]*using[ \t]+([\w:]+)::(\w+)[ \t]*;[ \t]*\n?`)

// LowerUsing rewrites `using A::B;` and `using B = A::T;` into textual
// substitutions applied to the rest of the file, at any scope, global
// included (spec.md §4.9); neither form is rejected. Every `using namespace`
// line, at any scope, is reported as a Structural diagnostic and removed.
// Enclosing-scope precision is
// approximated by "rest of the file following the statement", since this
// dialect never redefines a using-introduced name within the same file.
func LowerUsing(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()

	if report != nil {
		for range usingNamespaceRe.FindAllString(src, -1) {
			report(diagnostic.Diagnostic{Severity: diagnostic.Structural, Message: "using namespace is not supported"})
		}
	}
	src = usingNamespaceRe.ReplaceAllString(src, "")

	for {
		loc := usingAliasRe.FindStringSubmatchIndex(src)
		if loc == nil {
			break
		}
		alias, target := src[loc[2]:loc[3]], src[loc[4]:loc[5]]
		before, after := src[:loc[0]], src[loc[1]:]
		after = regexp.MustCompile(`\b`+regexp.QuoteMeta(alias)+`\b`).ReplaceAllString(after, target)
		src = before + after
	}

	for {
		loc := usingImportRe.FindStringSubmatchIndex(src)
		if loc == nil {
			break
		}
		ns, sym := src[loc[2]:loc[3]], src[loc[4]:loc[5]]
		qualified := ns + "::" + sym
		before, after := src[:loc[0]], src[loc[1]:]
		after = regexp.MustCompile(`\b`+regexp.QuoteMeta(sym)+`\b`).ReplaceAllString(after, qualified)
		src = before + after
	}

	replaceSource(f, src)
}

var namespaceRe = regexp.MustCompile(`namespace[ \t]+([\w:]+)[ \t]*\{`)

// LowerNamespaces first splits `namespace A::B { … }` into nested
// `namespace A { namespace B { … } }`, then, for each innermost namespace,
// rewrites every symbol from that namespace appearing in the body to its
// fully qualified `A::B::sym` form (spec.md §4.9). `::` is then collapsed
// to `_` everywhere, standing in for lower_scope_resolution_operators,
// which the spec describes as the pass that finishes this job.
func LowerNamespaces(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()

	src = namespaceRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := namespaceRe.FindStringSubmatch(m)
		segs := strings.Split(parts[1], "::")
		if len(segs) == 1 {
			return m
		}
		var b strings.Builder
		for _, s := range segs {
			b.WriteString("namespace ")
			b.WriteString(s)
			b.WriteString(" {")
		}
		return b.String()
	})

	for _, blk := range findBalancedNamespaces(src) {
		body := blk.body
		for _, sym := range md.Symbols() {
			if sym.Namespace != blk.name {
				continue
			}
			body = qualifyBareIdentifier(body, sym.Identifier, blk.name+"::"+sym.Identifier)
		}
		src = src[:blk.bodyStart] + body + src[blk.bodyEnd:]
	}

	src = strings.ReplaceAll(src, "::", "_")
	replaceSource(f, src)
}

// qualifyBareIdentifier rewrites every bare word-boundary occurrence of
// name in body to qualified, skipping occurrences already preceded by `::`
// (already qualified) or part of a longer identifier.
func qualifyBareIdentifier(body, name, qualified string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(body, -1) {
		start, end := loc[0], loc[1]
		if start >= 2 && body[start-2:start] == "::" {
			continue
		}
		b.WriteString(body[last:start])
		b.WriteString(qualified)
		last = end
	}
	b.WriteString(body[last:])
	return b.String()
}

type namespaceBlock struct {
	name      string
	bodyStart int
	bodyEnd   int
	body      string
}

func findBalancedNamespaces(src string) []namespaceBlock {
	var out []namespaceBlock
	for _, loc := range namespaceRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[loc[2]:loc[3]]
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
		out = append(out, namespaceBlock{name: name, bodyStart: openBrace + 1, bodyEnd: i - 1, body: src[openBrace+1 : i-1]})
	}
	return out
}
