package passes

import (
	"regexp"
	"strings"

	"github.com/blender/bslc/cpp"
	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

var (
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	pragmaRe       = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*pragma[ \t]+runtime_generated[ \t]*\n`)
	includeRe      = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*include[ \t]+["<]([^">]+)[">][ \t]*\n`)
	sharedVarRe    = regexp.MustCompile(`(?m)^([ \t]*)shared[ \t]+(\w[\w:<>, ]*?)[ \t]+(\w+)[ \t]*;[ \t]*$`)
)

// includeIDEAllowList lists includes that only exist for editor tooling and
// carry no real dependency, per spec.md §4.9's "dropping a known IDE-only
// allow-list".
var includeIDEAllowList = map[string]bool{
	"intellisense_stub.hh": true,
	"editor_only.hh":       true,
}

// CleanupAndParse runs the conditional-compilation pass, strips comments
// (blanking their contents, preserving newlines so line numbers survive),
// records #include dependencies (except the IDE-only allow-list), removes
// `#pragma runtime_generated` lines without recording them, and hoists `shared T name;`
// declarations into the metadata side table. Grounded on spec.md §4.9's
// "Cleanup & parse" bullet and original_source's processor.cc cleanup
// phase, which runs comment-stripping and directive bookkeeping in one
// pass before anything structural.
func CleanupAndParse(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	cpp.New(f, report).Run()

	src := f.Source()
	src = blankMatches(blockCommentRe, src)
	src = blankMatches(lineCommentRe, src)

	for _, m := range includeRe.FindAllStringSubmatch(src, -1) {
		path := m[1]
		if !includeIDEAllowList[path] {
			md.AddDependency(path)
		}
	}
	src = includeRe.ReplaceAllString(src, "\n")
	src = pragmaRe.ReplaceAllString(src, "\n")

	src = sharedVarRe.ReplaceAllStringFunc(src, func(m string) string {
		parts := sharedVarRe.FindStringSubmatch(m)
		indent, typ, name := parts[1], strings.TrimSpace(parts[2]), parts[3]
		md.SharedVariables = append(md.SharedVariables, metadata.SharedVariable{Type: typ, Name: name})
		return indent
	})

	replaceSource(f, src)
}

// blankMatches replaces every match of re with spaces, preserving any
// newlines inside the match so downstream line numbers stay correct —
// spec.md §4.9: "strip comments (replacing contents with spaces, \n
// preserved)".
func blankMatches(re *regexp.Regexp, src string) string {
	return re.ReplaceAllStringFunc(src, func(m string) string {
		var b strings.Builder
		for _, r := range m {
			if r == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		return b.String()
	})
}
