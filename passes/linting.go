package passes

import (
	"regexp"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
)

var unbraced = regexp.MustCompile(`\b(if|else|for|while)\b[^{;]*\)[ \t]*\n[ \t]*[^{\s]`)

var reservedGLSLTypenames = map[string]bool{
	"vec2": true, "vec3": true, "vec4": true,
	"ivec2": true, "ivec3": true, "ivec4": true,
	"uvec2": true, "uvec3": true, "uvec4": true,
	"mat2": true, "mat3": true, "mat4": true,
}

var identRe = regexp.MustCompile(`\b[A-Za-z_]\w*\b`)

var globalConstRe = regexp.MustCompile(`(?m)^const[ \t]+\w[\w<>:]*[ \t]+\w+[ \t]*=`)

var structCtorRe = regexp.MustCompile(`struct[ \t]+(\w+)[^{};]*\{[^{}]*\b(\w+)[ \t]*\([^)]*\)[ \t]*\{`)

var forwardStructRe = regexp.MustCompile(`(?m)^[ \t]*struct[ \t]+\w+[ \t]*;`)

// Lint implements spec.md §4.9's "Linting" bullet: every check here reports
// a diagnostic but never mutates the source, matching original_source's
// lint passes running as pure validators between the structural-lowering
// and templates phases.
func Lint(f *ir.Form, md *metadata.Source, report diagnostic.Callback) {
	if report == nil {
		return
	}
	src := f.Source()

	for range unbraced.FindAllStringIndex(src, -1) {
		report(diagnostic.Diagnostic{
			Severity: diagnostic.Structural,
			Message:  "if/else/for/while body must be braced",
		})
	}

	for _, m := range identRe.FindAllString(src, -1) {
		if reservedGLSLTypenames[m] {
			report(diagnostic.Diagnostic{
				Severity: diagnostic.Structural,
				Message:  "reserved GLSL typename used as identifier: " + m,
			})
		}
	}

	for range globalConstRe.FindAllString(src, -1) {
		report(diagnostic.Diagnostic{
			Severity: diagnostic.Structural,
			Message:  "global-scope const is per-thread in MSL; use a compile-time constant instead",
		})
	}

	for _, m := range structCtorRe.FindAllStringSubmatch(src, -1) {
		if m[1] == m[2] {
			report(diagnostic.Diagnostic{
				Severity: diagnostic.Structural,
				Message:  "constructor definitions are not permitted inside struct " + m[1],
			})
		}
	}

	for range forwardStructRe.FindAllString(src, -1) {
		report(diagnostic.Diagnostic{
			Severity: diagnostic.Structural,
			Message:  "forward struct declarations are not supported",
		})
	}
}
