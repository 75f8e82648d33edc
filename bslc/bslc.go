package bslc

import (
	"fmt"
	"time"

	"github.com/blender/bslc/cpp"
	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/metadata"
	"github.com/blender/bslc/passes"
)

// Result is everything one Transpile call produces: the lowered source
// text, its accumulated metadata, and per-pass timing for diagnostics.
type Result struct {
	Source   string
	Metadata *metadata.Source
	Timings  map[string]time.Duration
}

// Transpile runs the pass subset Options.Mode selects against source and
// returns the lowered text plus its metadata. report receives every
// diagnostic raised along the way; it may be nil.
func Transpile(source string, opts Options, report diagnostic.Callback) (Result, error) {
	switch opts.Mode {
	case Unknown:
		return Result{}, fmt.Errorf("bslc: Mode must be CPP, BSL, MSL, or GLSL, not Unknown")
	case CPP:
		return transpileCPPOnly(source, opts, report)
	case MSL, GLSL:
		return transpileReduced(source, opts, report)
	case BSL:
		return transpileFull(source, opts, report)
	default:
		return Result{}, fmt.Errorf("bslc: unrecognized Mode %d", int(opts.Mode))
	}
}

func transpileCPPOnly(source string, opts Options, report diagnostic.Callback) (Result, error) {
	f := ir.New(opts.File, source, report)
	p := cpp.New(f, report)
	start := time.Now()
	p.Run()
	return Result{
		Source:   f.Source(),
		Metadata: metadata.NewSource(),
		Timings:  map[string]time.Duration{"cpreprocessor": time.Since(start)},
	}, nil
}

// transpileReduced runs comment stripping and directive/dependency
// bookkeeping only — no BSL-specific structural lowering — matching
// shader_tool.cc's MSL/GLSL dispatch (SPEC_FULL.md §4.11).
func transpileReduced(source string, opts Options, report diagnostic.Callback) (Result, error) {
	f := ir.New(opts.File, source, report)
	md := metadata.NewSource()
	pipeline := passes.NewWithPasses(passes.Pass{Name: "cleanup_and_parse", Run: passes.CleanupAndParse})
	pipeline.Run(f, md, report)
	return Result{Source: f.Source(), Metadata: md, Timings: pipeline.Timings()}, nil
}

func transpileFull(source string, opts Options, report diagnostic.Callback) (Result, error) {
	f := ir.New(opts.File, source, report)
	md := metadata.NewSource()
	pipeline := passes.New()
	pipeline.Run(f, md, report)
	return Result{Source: f.Source(), Metadata: md, Timings: pipeline.Timings()}, nil
}
