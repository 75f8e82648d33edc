// Package bslc ties the lexer, scope builder, preprocessor, metadata
// collector, and lowering pipeline together into the single Transpile
// entry point spec.md §6 describes. Grounded on
// original_source/.../shader_tool.cc's top-level driver, which dispatches
// on the same four-way language hint realized here as Mode.
package bslc

// Mode selects which pass subset Transpile runs, mirroring
// shader_tool.cc's CPP/BSL/MSL/GLSL dispatch (SPEC_FULL.md §4.11).
type Mode int

const (
	// Unknown is a hard error at the Transpile boundary (spec.md §6).
	Unknown Mode = iota
	// CPP runs only the conditional-compilation/macro-bookkeeping pass,
	// for plain C-preprocessor-style includes with no BSL syntax.
	CPP
	// BSL runs the full lowering pipeline.
	BSL
	// MSL runs a reduced subset: comment stripping and cleanup only, no
	// BSL-specific structural/templates/namespaces/... lowering.
	MSL
	// GLSL runs the same reduced subset as MSL.
	GLSL
)

func (m Mode) String() string {
	switch m {
	case CPP:
		return "CPP"
	case BSL:
		return "BSL"
	case MSL:
		return "MSL"
	case GLSL:
		return "GLSL"
	default:
		return "Unknown"
	}
}

// Options configures one Transpile call.
type Options struct {
	// File is the source path, carried through purely for diagnostic
	// positions.
	File string
	// Mode selects the pass subset; Unknown is rejected by Transpile.
	Mode Mode
}
