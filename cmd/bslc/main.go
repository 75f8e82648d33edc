// Command bslc is the thin external-collaborator CLI:
// `bslc [-mode cpp|bsl|msl|glsl] [-out dir] [-I dir]... <input>...`, writing
// each input's outputs into the -out directory, exiting 0 on success and
// nonzero on any reported diagnostic. Grounded on SPEC_FULL.md §3.2 (flag-based argument parsing,
// doublestar include-dir walking, errgroup-parallelized multi-file
// compilation) and the teacher's own flag-based cmd tooling style.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/blender/bslc/bslc"
	"github.com/blender/bslc/diagnostic"
)

type includeDirs []string

func (d *includeDirs) String() string { return strings.Join(*d, ",") }
func (d *includeDirs) Set(v string) error {
	*d = append(*d, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs_ := flag.NewFlagSet("bslc", flag.ContinueOnError)
	mode := fs_.String("mode", "bsl", "language mode: cpp, bsl, msl, or glsl")
	outDir := fs_.String("out", ".", "output directory for lowered source, metadata, and create-info files")
	var includes includeDirs
	fs_.Var(&includes, "I", "include directory to search for #include dependencies (repeatable)")

	if err := fs_.Parse(args); err != nil {
		return 2
	}
	inputs := fs_.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: bslc [-mode cpp|bsl|msl|glsl] [-out dir] [-I dir]... <input>...")
		return 2
	}

	if _, err := expandIncludeGlobs(includes); err != nil {
		fmt.Fprintln(os.Stderr, "bslc:", err)
		return 2
	}

	m, err := parseMode(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bslc:", err)
		return 2
	}

	var g errgroup.Group
	var hadError int32

	for _, input := range inputs {
		input := input
		g.Go(func() error {
			ok := compileOne(input, *outDir, m)
			if !ok {
				atomic.StoreInt32(&hadError, 1)
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines above never return a non-nil error

	if hadError != 0 {
		return 1
	}
	return 0
}

func parseMode(s string) (bslc.Mode, error) {
	switch strings.ToLower(s) {
	case "cpp":
		return bslc.CPP, nil
	case "bsl":
		return bslc.BSL, nil
	case "msl":
		return bslc.MSL, nil
	case "glsl":
		return bslc.GLSL, nil
	default:
		return bslc.Unknown, fmt.Errorf("unrecognized mode %q", s)
	}
}

// expandIncludeGlobs walks each include directory, collecting candidate
// dependency files via doublestar pattern matching, for the include
// allow-list spec.md §4.9 describes. The result is currently only used to
// validate that every -I directory exists and is readable; the compiled
// pipeline itself records #include dependencies from source text.
func expandIncludeGlobs(dirs includeDirs) ([]string, error) {
	var found []string
	for _, dir := range dirs {
		err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ok, matchErr := doublestar.Match("**/*.{hh,bsl}", path)
			if matchErr != nil {
				return matchErr
			}
			if ok {
				found = append(found, filepath.Join(dir, path))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning include dir %s: %w", dir, err)
		}
	}
	return found, nil
}

// compileOne runs Transpile against one input file and writes the lowered
// source, metadata, and create-info outputs. Returns false if any
// diagnostic was reported, causing the process to exit nonzero per
// spec.md §6.
func compileOne(input, outDir string, mode bslc.Mode) bool {
	src, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bslc:", err)
		return false
	}

	var errCount int32
	report := func(d diagnostic.Diagnostic) {
		atomic.AddInt32(&errCount, 1)
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s: %s\n", input, d.Pos.Line, d.Pos.Column, d.Severity, d.Message)
	}

	res, err := bslc.Transpile(string(src), bslc.Options{File: input, Mode: mode}, report)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bslc:", err)
		return false
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	outPath := filepath.Join(outDir, base+".out")
	metaPath := filepath.Join(outDir, base+".meta")
	infosPath := filepath.Join(outDir, base+".infos")

	lowered := fmt.Sprintf("#line 1 %q\n%s", input, res.Source)
	if err := os.WriteFile(outPath, []byte(lowered), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "bslc:", err)
		return false
	}
	if err := os.WriteFile(metaPath, []byte(res.Metadata.Serialize()), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "bslc:", err)
		return false
	}
	if err := os.WriteFile(infosPath, []byte(strings.Join(res.Metadata.CreateInfos, "\n")), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "bslc:", err)
		return false
	}

	return atomic.LoadInt32(&errCount) == 0
}
