package cpp

import (
	"strconv"
	"strings"
)

// expandForCondition performs the substitution spec.md §4.7 describes for
// #if/#elif conditions: "first substitute every identifier occurrence with
// its macro's current expansion (recursively, blue-painted...), then
// convert defined(X) and defined X to 1 or 0". `defined`'s operand must not
// itself be macro-expanded (the normal C preprocessor rule, and the only
// way the two steps compose correctly) — protectDefined swaps every
// defined(...)/defined ... occurrence for an opaque placeholder before the
// substitution pass and restores it as "0"/"1" afterward, so the letter of
// the spec's two-step order is preserved without corrupting defined's
// operand.
func (p *Preprocessor) expandForCondition(text string) string {
	protected, placeholders := p.protectDefined(text)
	expanded := p.substitute(protected, map[string]bool{})
	return p.restoreDefined(expanded, placeholders)
}

func (p *Preprocessor) protectDefined(text string) (string, []bool) {
	var b strings.Builder
	var placeholders []bool
	i := 0
	for i < len(text) {
		if matchWord(text, i, "defined") {
			j := i + len("defined")
			for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
				j++
			}
			var name string
			if j < len(text) && text[j] == '(' {
				k := j + 1
				for k < len(text) && text[k] != ')' {
					k++
				}
				name = strings.TrimSpace(text[j+1 : k])
				if k < len(text) {
					k++
				}
				j = k
			} else {
				k := j
				for k < len(text) && isIdentCont(text[k]) {
					k++
				}
				name = text[j:k]
				j = k
			}
			_, defined := p.macros[name]
			idx := len(placeholders)
			placeholders = append(placeholders, defined)
			b.WriteString("__CPP_DEFINED_")
			b.WriteString(strconv.Itoa(idx))
			b.WriteString("__")
			i = j
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String(), placeholders
}

func (p *Preprocessor) restoreDefined(text string, placeholders []bool) string {
	for idx, defined := range placeholders {
		token := "__CPP_DEFINED_" + strconv.Itoa(idx) + "__"
		val := "0"
		if defined {
			val = "1"
		}
		text = strings.ReplaceAll(text, token, val)
	}
	return text
}

func matchWord(text string, i int, word string) bool {
	if i+len(word) > len(text) || text[i:i+len(word)] != word {
		return false
	}
	if i > 0 && isIdentCont(text[i-1]) {
		return false
	}
	end := i + len(word)
	if end < len(text) && isIdentCont(text[end]) {
		return false
	}
	return true
}

// substitute expands every macro-invocation identifier in text once,
// blue-painting names already being expanded on the active set to stop
// recursive re-entry (spec.md §4.7: "the set of macros currently being
// expanded blocks re-entry, per the usual rule").
func (p *Preprocessor) substitute(text string, active map[string]bool) string {
	var b strings.Builder
	i := 0
	for i < len(text) {
		c := text[i]
		if !isIdentStart(c) {
			b.WriteByte(c)
			i++
			continue
		}
		j := i + 1
		for j < len(text) && isIdentCont(text[j]) {
			j++
		}
		name := text[i:j]
		m, ok := p.macros[name]
		if !ok || active[name] {
			b.WriteString(name)
			i = j
			continue
		}

		if !m.FunctionLike {
			nested := cloneActive(active)
			nested[name] = true
			b.WriteString(p.substitute(m.Body, nested))
			i = j
			continue
		}

		// Function-like macro: only expands when immediately invoked.
		k := j
		for k < len(text) && (text[k] == ' ' || text[k] == '\t') {
			k++
		}
		if k >= len(text) || text[k] != '(' {
			b.WriteString(name)
			i = j
			continue
		}
		args, end, ok := splitArgs(text, k)
		if !ok {
			b.WriteString(name)
			i = j
			continue
		}
		body := p.expandFunctionLike(m, args, active)
		nested := cloneActive(active)
		nested[name] = true
		b.WriteString(p.substitute(body, nested))
		i = end
	}
	return b.String()
}

func cloneActive(active map[string]bool) map[string]bool {
	n := make(map[string]bool, len(active)+1)
	for k, v := range active {
		n[k] = v
	}
	return n
}

// splitArgs parses a parenthesized, comma-separated argument list starting
// at text[open] == '(', respecting nested parentheses (spec.md §4.7:
// "argument parsing respects nested parentheses"). Returns the raw
// (unexpanded) argument texts, the index just past the closing ')', and
// whether parsing succeeded.
func splitArgs(text string, open int) ([]string, int, bool) {
	depth := 0
	var args []string
	start := open + 1
	i := open
	for i < len(text) {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				args = append(args, strings.TrimSpace(text[start:i]))
				return trimEmptyArgList(args), i + 1, true
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
		i++
	}
	return nil, 0, false
}

// trimEmptyArgList collapses the single-empty-string result splitArgs
// produces for "()" into a zero-length slice, per spec.md §4.7: "Empty
// argument lists are permitted only when the macro has zero parameters."
func trimEmptyArgList(args []string) []string {
	if len(args) == 1 && args[0] == "" {
		return nil
	}
	return args
}

// expandFunctionLike substitutes args into m.Body by parameter name, then
// resolves `##` concatenation. Arguments are macro-expanded before
// substitution unless adjacent to `##` (spec.md §4.7: "Arguments not
// adjacent to ## are parse-and-expanded before substitution").
func (p *Preprocessor) expandFunctionLike(m Macro, args []string, active map[string]bool) string {
	bound := make(map[string]string, len(m.Params))
	for i, param := range m.Params {
		if m.Variadic && param == "__VA_ARGS__" {
			bound[param] = strings.Join(args[min(i, len(args)):], ", ")
			continue
		}
		if i < len(args) {
			bound[param] = args[i]
		} else {
			bound[param] = ""
		}
	}

	body := m.Body
	if strings.Contains(body, "#") && !strings.Contains(body, "##") {
		// "# stringification is not supported (error)" — left unexpanded
		// verbatim rather than silently mis-concatenating; the diagnostic
		// is raised by the caller that owns a report callback (Run).
		return body
	}

	tokens := splitBodyOnParamsAndConcat(body, m.Params)
	var out strings.Builder
	for idx, tok := range tokens {
		switch tok.kind {
		case bodyTextConcat:
			// "##" itself: drop adjacent whitespace, already handled by
			// splitBodyOnParamsAndConcat not emitting separating space.
			continue
		case bodyParam:
			raw := bound[tok.text]
			adjacentToConcat := (idx > 0 && tokens[idx-1].kind == bodyTextConcat) ||
				(idx+1 < len(tokens) && tokens[idx+1].kind == bodyTextConcat)
			if adjacentToConcat {
				out.WriteString(raw)
			} else {
				out.WriteString(p.substitute(raw, active))
			}
		default:
			out.WriteString(tok.text)
		}
	}
	return out.String()
}

type bodyTokKind int

const (
	bodyText bodyTokKind = iota
	bodyParam
	bodyTextConcat
)

type bodyTok struct {
	kind bodyTokKind
	text string
}

// splitBodyOnParamsAndConcat tokenizes a macro body into plain-text runs,
// parameter references, and `##` markers, trimming the whitespace `##`
// conventionally absorbs on both sides (spec.md §4.7: "spaces adjacent to
// ## are dropped").
func splitBodyOnParamsAndConcat(body string, params []string) []bodyTok {
	paramSet := make(map[string]bool, len(params))
	for _, p := range params {
		paramSet[p] = true
	}

	var toks []bodyTok
	var textBuf strings.Builder
	flush := func() {
		if textBuf.Len() > 0 {
			toks = append(toks, bodyTok{kind: bodyText, text: textBuf.String()})
			textBuf.Reset()
		}
	}

	i := 0
	for i < len(body) {
		if body[i] == '#' && i+1 < len(body) && body[i+1] == '#' {
			// Drop trailing whitespace already buffered in textBuf.
			trimmed := strings.TrimRight(textBuf.String(), " \t")
			textBuf.Reset()
			textBuf.WriteString(trimmed)
			flush()
			toks = append(toks, bodyTok{kind: bodyTextConcat})
			i += 2
			for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
				i++
			}
			continue
		}
		if isIdentStart(body[i]) {
			j := i + 1
			for j < len(body) && isIdentCont(body[j]) {
				j++
			}
			word := body[i:j]
			if paramSet[word] {
				flush()
				toks = append(toks, bodyTok{kind: bodyParam, text: word})
			} else {
				textBuf.WriteString(word)
			}
			i = j
			continue
		}
		textBuf.WriteByte(body[i])
		i++
	}
	flush()
	return toks
}
