package passes

import (
	"regexp"
	"sort"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
	"github.com/blender/bslc/scope"
)

var constRefParamRe = regexp.MustCompile(`\bconst[ \t]+(\w[\w<>]*)[ \t]*&[ \t]*(\w+)`)
var refParamRe = regexp.MustCompile(`\b(\w[\w<>]*)[ \t]*&[ \t]*(\w+)`)

// LowerReferenceArguments rewrites `T &x` parameters to `inout T x` and
// `const T &x` to plain `T x` (spec.md §4.9). The rewrite is restricted to
// FunctionArgs scope spans (a function's declared parameter list): a bare
// `ReplaceAllString` over the whole file would also strip the `&` from an
// unrelated local `T &x = ...;` declaration before LowerReferenceVariables
// gets a chance to see it.
func LowerReferenceArguments(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()

	var spans []scope.Range
	for i := 0; i < f.Tree.Len(); i++ {
		if k, r := f.Tree.At(i); k == scope.FunctionArgs {
			spans = append(spans, r)
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	var b strings.Builder
	prev := 0
	for _, r := range spans {
		start, end, ok := tokenRangeBytes(f, r)
		if !ok || start < prev || end > len(src) {
			continue
		}
		b.WriteString(src[prev:start])
		region := src[start:end]
		region = constRefParamRe.ReplaceAllString(region, "$1 $2")
		region = refParamRe.ReplaceAllString(region, "inout $1 $2")
		b.WriteString(region)
		prev = end
	}
	b.WriteString(src[prev:])
	replaceSource(f, b.String())
}

// tokenRangeBytes converts a scope.Range's half-open token indices into a
// half-open byte range over the form's current source.
func tokenRangeBytes(f *ir.Form, r scope.Range) (start, end int, ok bool) {
	if r.End <= r.Start || int(r.End) > f.Stream.Len() {
		return 0, 0, false
	}
	return int(f.Stream.Starts[r.Start]), int(f.Stream.Ends[r.End-1]), true
}

var refVarDeclRe = regexp.MustCompile(`(?m)^([ \t]*)(?:const[ \t]+)?(\w[\w<>]*)[ \t]*&[ \t]*(\w+)[ \t]*=[ \t]*([^;]+);[ \t]*$`)
var callExprRe = regexp.MustCompile(`\w+[ \t]*\(`)
var incDecRe = regexp.MustCompile(`\+\+|--`)

// LowerReferenceVariables erases a local `T &name = expr;` (optionally
// `const`-qualified) binding and textually replaces every subsequent
// occurrence of name in the rest of the file (not only the enclosing scope)
// with expr, after validating expr contains no calls other than resource
// accessors and no ++/-- (spec.md §4.9). `[i]` subscript indices inside
// expr are not checked. A call site naming the reference (`name(...)`) is a function call,
// not a use of the reference, and is left untouched — only its arguments
// are substituted. Validation failures leave the declaration untouched and
// report a diagnostic rather than risk an unsound substitution.
func LowerReferenceVariables(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()
	for {
		loc := refVarDeclRe.FindStringSubmatchIndex(src)
		if loc == nil {
			break
		}
		name, expr := src[loc[6]:loc[7]], strings.TrimSpace(src[loc[8]:loc[9]])

		if !validReferenceExpr(expr) {
			if report != nil {
				report(diagnostic.Diagnostic{Severity: diagnostic.Structural, Message: "reference variable " + name + " initializer is not substitutable"})
			}
			break
		}

		before, after := src[:loc[0]], src[loc[1]:]
		after = substituteReferenceUses(after, name, parenthesizeIfCompound(expr))
		src = before + after
	}
	replaceSource(f, src)
}

// substituteReferenceUses replaces every bare, unqualified occurrence of
// name in body with replacement, except a call site `name(...)`: the
// identifier there names the function being invoked, not the reference
// variable, so it is left as-is while its own arguments still get
// substituted (spec.md §8 scenario: `a(a)` -> `a(b)`, not `(b)(b)`).
func substituteReferenceUses(body, name, replacement string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(body, -1) {
		start, end := loc[0], loc[1]
		if start >= 2 && body[start-2:start] == "::" {
			continue
		}
		if strings.HasPrefix(strings.TrimLeft(body[end:], " \t"), "(") {
			continue
		}
		b.WriteString(body[last:start])
		b.WriteString(replacement)
		last = end
	}
	b.WriteString(body[last:])
	return b.String()
}

var simpleAtomRe = regexp.MustCompile(`^[+-]?\w+$`)

// parenthesizeIfCompound wraps expr in parens only when substituting it
// verbatim could change precedence (it contains an operator beyond a
// leading sign); a bare identifier or literal substitutes unwrapped,
// matching spec.md §8's `c = a(a);` -> `c = a(b);`, not `a((b));`.
func parenthesizeIfCompound(expr string) string {
	if simpleAtomRe.MatchString(expr) {
		return expr
	}
	return "(" + expr + ")"
}

func validReferenceExpr(expr string) bool {
	if incDecRe.MatchString(expr) {
		return false
	}
	for _, call := range callExprRe.FindAllString(expr, -1) {
		fn := strings.TrimRight(strings.TrimSpace(call), "(")
		if !strings.HasPrefix(fn, "access_") && !strings.HasSuffix(fn, "_new_") {
			return false
		}
	}
	return true
}
