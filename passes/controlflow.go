package passes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

var unrollForRe = regexp.MustCompile(`\[\[unroll(?:_n\(([0-9]+)\))?\]\][ \t]*\n?[ \t]*for[ \t]*\([ \t]*int[ \t]+(\w+)[ \t]*=[ \t]*(-?[0-9]+)[ \t]*;[ \t]*\w+[ \t]*(<=|<|>=|>)[ \t]*(-?[0-9]+)[ \t]*;[ \t]*(\w+)(\+\+|--)[ \t]*\)[ \t]*\{([^{}]*)\}`)

// LowerLoopUnroll expands an `[[unroll]]`/`[[unroll_n(k)]]`-annotated for
// loop with integer-literal bounds by duplicating its body, substituting
// the index where safe, and rejects break/continue in the unrolled body
// (spec.md §4.9). Every matching loop is expanded in one call. A loop whose
// body contains braces (for instance one that encloses another loop) is not
// matched and stays as written.
func LowerLoopUnroll(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()
	for {
		loc := unrollForRe.FindStringSubmatchIndex(src)
		if loc == nil {
			break
		}
		m := src[loc[0]:loc[1]]
		parts := unrollForRe.FindStringSubmatch(m)
		unrollN, idx, initS, op, endS, incDec, body := parts[1], parts[2], parts[3], parts[4], parts[5], parts[7], parts[8]

		init, _ := strconv.Atoi(initS)
		end, _ := strconv.Atoi(endS)

		if containsBreakOrContinue(body) {
			if report != nil {
				report(diagnostic.Diagnostic{Severity: diagnostic.Structural, Message: "break/continue not permitted in an unrolled loop body"})
			}
			src = src[:loc[0]] + src[loc[1]:]
			continue
		}

		var count int
		if unrollN != "" {
			count, _ = strconv.Atoi(unrollN)
		} else {
			count = abs(end - init)
			if op == "<=" || op == ">=" {
				count++
			}
		}

		var b strings.Builder
		i := init
		step := 1
		if incDec == "--" {
			step = -1
		}
		for n := 0; n < count; n++ {
			iterBody := strings.ReplaceAll(body, "\x00IDX\x00", strconv.Itoa(i))
			iterBody = qualifyBareIdentifier(iterBody, idx, strconv.Itoa(i))
			b.WriteString(iterBody)
			b.WriteByte('\n')
			i += step
		}
		src = src[:loc[0]] + "{" + b.String() + "}" + src[loc[1]:]
	}
	replaceSource(f, src)
}

func containsBreakOrContinue(body string) bool {
	depth := 0
	re := regexp.MustCompile(`\bswitch\b[^{]*\{|\{|\}|\bbreak\b|\bcontinue\b`)
	for _, m := range re.FindAllString(body, -1) {
		switch {
		case strings.HasPrefix(m, "switch"):
			depth++
		case m == "{":
			// handled via switch-open already counted above when applicable
		case m == "}":
			if depth > 0 {
				depth--
			}
		case m == "continue":
			return true
		case m == "break":
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

var staticBranchIfRe = regexp.MustCompile(`if[ \t]*\([ \t]*(\w+)\.(\w+)[ \t]*\)[ \t]*\[\[static_branch\]\][ \t]*\{`)

// LowerStaticBranch rewrites `if (srt.<cst>) [[static_branch]] { … }` into
// `#if SRT_CONSTANT_<cst> … #endif` (spec.md §4.9). Each
// `[[static_branch]]`-tagged `if` becomes its own independent `#if … #endif`
// block; no `#elif` is emitted, and an `else` in front of a chained tagged
// `if` is left in place.
func LowerStaticBranch(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()
	src = staticBranchIfRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := staticBranchIfRe.FindStringSubmatch(m)
		_, cst := parts[1], parts[2]
		return fmt.Sprintf("#if SRT_CONSTANT_%s\n{", strings.ToUpper(cst))
	})
	// Close each opened #if at its matching closing brace.
	src = closeStaticBranchBlocks(src)
	replaceSource(f, src)
}

func closeStaticBranchBlocks(src string) string {
	marker := "#if SRT_CONSTANT_"
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(src[i:], marker)
		if idx < 0 {
			b.WriteString(src[i:])
			break
		}
		idx += i
		nl := strings.IndexByte(src[idx:], '\n')
		if nl < 0 {
			b.WriteString(src[i:])
			break
		}
		headerEnd := idx + nl + 1
		openBrace := strings.IndexByte(src[headerEnd:], '{')
		if openBrace < 0 {
			b.WriteString(src[i:headerEnd])
			i = headerEnd
			continue
		}
		openBrace += headerEnd
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
		b.WriteString(src[i:headerEnd])
		b.WriteString(src[openBrace+1 : j-1])
		b.WriteString("\n#endif\n")
		i = j
	}
	return b.String()
}
