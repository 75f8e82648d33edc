package passes

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

var redundantLineRe = regexp.MustCompile(`(?m)^#line[ \t]+\d+[ \t]*\n(?:#line[ \t]+\d+[ \t]*\n)+`)
var blankRunRe = regexp.MustCompile(`\n{4,}`)
var trailingWhitespaceRe = regexp.MustCompile(`[ \t]+\n`)

// FinalCleanup removes redundant consecutive `#line N` directives, collapses
// runs of three or more blank lines into a single `#line` directive that
// restores the following line number, and strips trailing whitespace
// (spec.md §4.9).
func FinalCleanup(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	src := f.Source()

	src = redundantLineRe.ReplaceAllStringFunc(src, func(m string) string {
		lines := strings.Split(strings.TrimRight(m, "\n"), "\n")
		return lines[len(lines)-1] + "\n"
	})

	offset := 0
	src = blankRunRe.ReplaceAllStringFunc(src, func(m string) string {
		idx := strings.Index(src[offset:], m)
		absIdx := offset
		if idx >= 0 {
			absIdx = offset + idx
		}
		line := strings.Count(src[:absIdx], "\n") + strings.Count(m, "\n") + 1
		offset = absIdx + len(m)
		return "\n#line " + strconv.Itoa(line) + "\n"
	})

	src = trailingWhitespaceRe.ReplaceAllString(src, "\n")

	replaceSource(f, src)
}
