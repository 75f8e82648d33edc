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

var adjacentStringRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"[ \t\n]*"((?:[^"\\]|\\.)*)"`)
var stringLiteralRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
var printfCallRe = regexp.MustCompile(`printf[ \t]*\(([^;]*)\)[ \t]*;`)
var assertCallRe = regexp.MustCompile(`assert[ \t]*\(([^;]*)\)[ \t]*;`)

// LowerStringsPrintfAssert merges adjacent string literals to fixpoint,
// replaces each surviving literal with a hashed string_t(...) (recording
// the original text in metadata), rewrites printf(...) into a
// print_data/print_start chain, and rewrites assert(cond) into a
// conditional printf of the condition text, file, line, and thread index
// (spec.md §4.9).
func LowerStringsPrintfAssert(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()

	for {
		next := adjacentStringRe.ReplaceAllString(src, `"$1$2"`)
		if next == src {
			break
		}
		src = next
	}

	src = assertCallRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := assertCallRe.FindStringSubmatch(m)
		cond := strings.TrimSpace(parts[1])
		return fmt.Sprintf(`if (!(%s)) { printf("assertion failed: %s", "%s", __LINE__, thread_index); }`,
			cond, escapeForPrintf(cond), f.File)
	})

	src = printfCallRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := printfCallRe.FindStringSubmatch(m)
		args := splitTopLevelArgs(parts[1])
		if len(args) == 0 {
			return m
		}
		// args[0] is the format string literal; it is dropped here, before
		// the string-literal rewrite below, so it is neither threaded
		// through print_data nor recorded in the printf format table.
		count := len(args) - 1
		expr := fmt.Sprintf("print_start(%d)", count)
		for _, a := range args[1:] {
			expr = fmt.Sprintf("print_data(%s, %s)", expr, strings.TrimSpace(a))
		}
		return expr + ";"
	})

	src = stringLiteralRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := stringLiteralRe.FindStringSubmatch(m)
		text := parts[1]
		hash := md.AddPrintfFormat(text)
		return "string_t(" + strconv.FormatUint(uint64(hash), 10) + ")"
	})

	replaceSource(f, src)
}

func escapeForPrintf(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func splitTopLevelArgs(text string) []string {
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, text[start:i])
				start = i + 1
			}
		}
	}
	args = append(args, text[start:])
	return args
}
