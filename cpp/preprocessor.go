// Package cpp implements the conditional-compilation and macro-bookkeeping
// layer of spec.md §4.7: it tracks #define/#undef, evaluates #if family
// conditions via the expr package, and erases the #define/#undef/#if-family
// directive lines plus the body of every untaken branch from the
// intermediate form (other directives such as #include, #pragma and #line
// are left in the source),
// while leaving macro bodies themselves to be recorded as metadata rather
// than expanded through the rest of the source. Grounded on
// original_source's processor.cc directive dispatch (the "--- Parsing ---"
// section: parse_defines, and the conditional handling inlined into the
// cleanup phase).
package cpp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blender/bslc/diagnostic"
	"github.com/blender/bslc/expr"
	"github.com/blender/bslc/ir"
	"github.com/blender/bslc/scope"
)

// Preprocessor runs one pass over an ir.Form's Preprocessor-kind scopes.
type Preprocessor struct {
	form   *ir.Form
	macros map[string]Macro
	report diagnostic.Callback
}

// New creates a Preprocessor bound to form. report receives diagnostics for
// malformed directives and evaluation errors; it may be nil.
func New(form *ir.Form, report diagnostic.Callback) *Preprocessor {
	return &Preprocessor{form: form, macros: map[string]Macro{}, report: report}
}

// Macros returns the macro table as it stands after Run, for metadata's
// "record all #define bodies for later re-emission to downstream
// create-infos" (spec.md §4.9 "Cleanup & parse").
func (p *Preprocessor) Macros() map[string]Macro { return p.macros }

type directive struct {
	scopeIdx int
	kind     string // define, undef, if, ifdef, ifndef, elif, else, endif, or "" for ignored
	rest     string // directive text after the keyword
	start    int     // token index of '#'
	end      int     // token index of the closing NewLine (inclusive, per scope.Range)
}

type condFrame struct {
	parentActive bool
	taken        bool
	anyTaken     bool
	segmentStart int // token index where the current segment's body begins
}

var directiveKeywords = map[string]bool{
	"define": true, "undef": true,
	"if": true, "ifdef": true, "ifndef": true,
	"elif": true, "else": true, "endif": true,
}

// Run scans every Preprocessor scope in token order, updates the macro
// table, evaluates conditions, queues erasures for directive lines and
// untaken branch bodies, and applies them. It returns whether anything
// changed, mirroring ir.Form.ApplyMutations.
func (p *Preprocessor) Run() bool {
	directives := p.collectDirectives()
	var stack []condFrame

	activeNow := func() bool {
		if len(stack) == 0 {
			return true
		}
		top := stack[len(stack)-1]
		return top.parentActive && top.taken
	}

	for _, d := range directives {
		switch d.kind {
		case "if", "ifdef", "ifndef":
			parentActive := activeNow()
			cond := false
			if parentActive {
				cond = p.evalCondition(d)
			}
			stack = append(stack, condFrame{
				parentActive: parentActive,
				taken:        parentActive && cond,
				anyTaken:     parentActive && cond,
				segmentStart: d.end + 1,
			})
			p.eraseDirective(d)

		case "elif":
			if len(stack) == 0 {
				p.errf(d, "#elif without matching #if")
				continue
			}
			f := &stack[len(stack)-1]
			p.closeSegment(*f, d)
			cond := false
			if f.parentActive && !f.anyTaken {
				cond = p.evalCondition(d)
			}
			f.taken = f.parentActive && !f.anyTaken && cond
			if f.taken {
				f.anyTaken = true
			}
			f.segmentStart = d.end + 1
			p.eraseDirective(d)

		case "else":
			if len(stack) == 0 {
				p.errf(d, "#else without matching #if")
				continue
			}
			f := &stack[len(stack)-1]
			p.closeSegment(*f, d)
			f.taken = f.parentActive && !f.anyTaken
			if f.taken {
				f.anyTaken = true
			}
			f.segmentStart = d.end + 1
			p.eraseDirective(d)

		case "endif":
			if len(stack) == 0 {
				p.errf(d, "#endif without matching #if")
				continue
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.closeSegment(f, d)
			p.eraseDirective(d)

		case "define":
			if activeNow() {
				if m, ok := parseDefine(d.rest); ok {
					if strings.Contains(m.Body, "#") && !strings.Contains(m.Body, "##") {
						p.errf(d, "stringification (#) is not supported in macro %q", m.Name)
					}
					p.macros[m.Name] = m
				} else {
					p.errf(d, "malformed #define")
				}
				p.eraseDirective(d)
			}

		case "undef":
			if activeNow() {
				name := strings.TrimSpace(d.rest)
				delete(p.macros, name)
				p.eraseDirective(d)
			}
		}
	}

	if len(stack) > 0 && p.report != nil {
		p.report(diagnostic.Diagnostic{Severity: diagnostic.Structural, Message: "unterminated #if"})
	}

	return p.form.ApplyMutations()
}

// closeSegment erases the body of the branch that just ended, if it was
// not taken — spec.md §4.7: "on false, erase everything up to the matching
// #elif/#else/#endif ... and jump evaluation there."
func (p *Preprocessor) closeSegment(f condFrame, boundary directive) {
	if f.taken {
		return
	}
	if boundary.scopeIdx < 0 {
		return
	}
	_, r := p.form.Tree.At(boundary.scopeIdx)
	endTok := int(r.Start) - 1
	if f.segmentStart > endTok {
		return
	}
	p.form.EraseTokenRange(f.segmentStart, endTok)
}

func (p *Preprocessor) eraseDirective(d directive) {
	p.form.EraseTokenRange(d.start, d.end)
}

func (p *Preprocessor) errf(d directive, format string, args ...any) {
	if p.report == nil {
		return
	}
	p.report(diagnostic.Diagnostic{
		Severity: diagnostic.Evaluation,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (p *Preprocessor) evalCondition(d directive) bool {
	text := d.rest
	switch d.kind {
	case "ifdef":
		text = "defined(" + strings.TrimSpace(d.rest) + ")"
	case "ifndef":
		text = "!defined(" + strings.TrimSpace(d.rest) + ")"
	}
	expanded := p.expandForCondition(text)
	v, err := expr.Eval(expanded, func(name string) (int64, bool) { return 0, false })
	if err != nil {
		p.errf(d, "%s", err.Error())
		return false
	}
	return v != 0
}

// collectDirectives walks the scope tree for Preprocessor-kind scopes, in
// token order, and classifies each by its leading keyword.
func (p *Preprocessor) collectDirectives() []directive {
	var out []directive
	for i := 0; i < p.form.Tree.Len(); i++ {
		k, r := p.form.Tree.At(i)
		if k != scope.Preprocessor {
			continue
		}
		out = append(out, p.parseDirective(i, r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func (p *Preprocessor) parseDirective(scopeIdx int, r scope.Range) directive {
	startTok := int(r.Start)
	endTok := int(r.End) - 1
	startByte := int(p.form.Stream.Starts[startTok])
	endByte := int(p.form.Stream.Ends[endTok])
	if endByte > len(p.form.Source()) {
		endByte = len(p.form.Source())
	}
	text := p.form.Source()[startByte:endByte]
	body := strings.TrimPrefix(strings.TrimSpace(text), "#")
	body = strings.TrimLeft(body, " \t")

	i := 0
	for i < len(body) && isIdentCont(body[i]) {
		i++
	}
	keyword := body[:i]
	rest := strings.TrimLeft(body[i:], " \t")

	kind := ""
	if directiveKeywords[keyword] {
		kind = keyword
	}
	return directive{scopeIdx: scopeIdx, kind: kind, rest: rest, start: startTok, end: endTok}
}
