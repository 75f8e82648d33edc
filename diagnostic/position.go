package diagnostic

import (
	"sort"
	"strconv"
	"strings"
)

// Resolver maps byte offsets into a source string to (line, column)
// positions, honoring #line directives the way original_source's
// `parser::line_number`/`char_number` do (spec.md §6 "Line-directive
// format": "The preprocessor must update the running (line, file) when
// emitting diagnostics"), grounded on the teacher's ast.FileInfo
// line-offset table.
type Resolver struct {
	file  string
	data  string
	lines []int // byte offset of the start of each physical line

	// directives are #line markers, sorted by byte offset, each giving the
	// logical line number and (optional) filename to report starting at
	// that offset.
	directives []lineDirective
}

type lineDirective struct {
	offset int
	line   int
	file   string
}

// NewResolver scans data once, recording the start of every physical line
// and every #line directive.
func NewResolver(file, data string) *Resolver {
	r := &Resolver{file: file, data: data, lines: []int{0}}
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' && i+1 < len(data) {
			r.lines = append(r.lines, i+1)
		}
	}
	r.scanDirectives()
	return r
}

func (r *Resolver) scanDirectives() {
	for _, startOfLine := range r.lines {
		rest := r.data[startOfLine:]
		trimmed := strings.TrimLeft(rest, " \t")
		if !strings.HasPrefix(trimmed, "#line") && !strings.HasPrefix(trimmed, "# ") {
			continue
		}
		after := strings.TrimPrefix(trimmed, "#line")
		after = strings.TrimPrefix(after, "#")
		after = strings.TrimLeft(after, " \t")
		end := strings.IndexAny(after, " \t\n")
		numStr := after
		if end >= 0 {
			numStr = after[:end]
		}
		num, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}
		file := r.file
		if end >= 0 {
			rem := strings.TrimLeft(after[end:], " \t")
			if strings.HasPrefix(rem, `"`) {
				if close := strings.IndexByte(rem[1:], '"'); close >= 0 {
					file = rem[1 : 1+close]
				}
			}
		}
		r.directives = append(r.directives, lineDirective{
			offset: startOfLine,
			line:   num,
			file:   file,
		})
	}
}

// Position resolves a byte offset to a line/column, applying the nearest
// preceding #line directive exactly as original_source's line_number does:
// count physical newlines since that directive and add them to its
// asserted line number, minus one.
func (r *Resolver) Position(offset int) Position {
	physLine := r.physicalLine(offset)
	col := offset - r.lines[physLine] + 1

	file := r.file
	line := physLine + 1
	if d, found := r.lastDirectiveBefore(offset); found {
		file = d.file
		linesSince := physLine - r.physicalLine(d.offset)
		line = d.line - 1 + linesSince
	}

	return Position{File: file, Line: line, Column: col}
}

// SourceLine returns the physical source text of the line containing
// offset, without its trailing newline.
func (r *Resolver) SourceLine(offset int) string {
	physLine := r.physicalLine(offset)
	start := r.lines[physLine]
	end := len(r.data)
	if physLine+1 < len(r.lines) {
		end = r.lines[physLine+1] - 1
	}
	if end > len(r.data) {
		end = len(r.data)
	}
	if end < start {
		end = start
	}
	return strings.TrimSuffix(r.data[start:end], "\n")
}

func (r *Resolver) physicalLine(offset int) int {
	i := sort.SearchInts(r.lines, offset+1) - 1
	if i < 0 {
		return 0
	}
	if i >= len(r.lines) {
		return len(r.lines) - 1
	}
	return i
}

func (r *Resolver) lastDirectiveBefore(offset int) (lineDirective, bool) {
	var best lineDirective
	found := false
	for _, d := range r.directives {
		if d.offset <= offset {
			best = d
			found = true
		}
	}
	return best, found
}
