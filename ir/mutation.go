package ir

import (
	"sort"
	"strconv"
	"strings"
)

// Mutation is one pending edit: replace the half-open byte range [Start,End)
// of the source with Replacement. Grounded on original_source's
// MutableString::Mutation (intermediate.hh): "Range of the original string
// to replace" plus "the replacement string", ordered by Start so that
// applying them in one left-to-right pass produces the correct result.
type Mutation struct {
	Start, End  int // half-open byte range in the *current* source
	Replacement string
}

func (m Mutation) overlaps(o Mutation) bool {
	return m.Start < o.End && o.Start < m.End
}

// mutable is the append-only edit list plus the string it edits. It is
// embedded in Form so every mutation helper (Erase, InsertBefore, ...)
// mirrors original_source's MutableString one-for-one.
type mutable struct {
	src       string
	mutations []Mutation
}

func newMutable(src string) mutable {
	return mutable{src: src}
}

// Source returns the current text, ignoring any pending (unapplied)
// mutations.
func (m *mutable) Source() string { return m.src }

// ReplaceTry records a replacement of [from,to] (inclusive) unless it
// overlaps a mutation already queued, per original_source's replace_try:
// "Return true on success."
func (m *mutable) ReplaceTry(from, to int, replacement string) bool {
	mut := Mutation{Start: from, End: to + 1, Replacement: replacement}
	for _, existing := range m.mutations {
		if existing.overlaps(mut) {
			return false
		}
	}
	m.mutations = append(m.mutations, mut)
	return true
}

// Replace is ReplaceTry without the failure path; callers that know the
// range is free (the common case, since most passes visit disjoint token
// ranges) use this.
func (m *mutable) Replace(from, to int, replacement string) {
	m.mutations = append(m.mutations, Mutation{Start: from, End: to + 1, Replacement: replacement})
}

// Erase blanks [from,to] (inclusive) with whitespace that preserves both the
// line count and the trailing indentation, so downstream line numbers and
// column alignment stay stable. Ported from original_source's erase(): "
// Replace the content from `from` to `to` (inclusive) by whitespaces without
// changing line count and keep the remaining indentation spaces."
func (m *mutable) Erase(from, to int) {
	if from > to {
		return
	}
	content := m.src[from : to+1]
	lines := strings.Count(content, "\n")
	var spaces int
	if idx := strings.LastIndexByte(content, '\n'); idx >= 0 {
		spaces = len(content) - (idx + 1)
	} else {
		spaces = len(content)
	}
	m.Replace(from, to, strings.Repeat("\n", lines)+strings.Repeat(" ", spaces))
}

// InsertBefore queues content to be spliced in immediately before byte
// offset at. When prepend is true the edit is placed first in the queue, so
// that of two overlapping zero-width inserts at the same offset, the
// prepended one ends up first in the output — mirrors original_source's
// insert_before(..., prepend).
func (m *mutable) InsertBefore(at int, content string, prepend bool) {
	mut := Mutation{Start: at, End: at, Replacement: content}
	if prepend {
		m.mutations = append([]Mutation{mut}, m.mutations...)
		return
	}
	m.mutations = append(m.mutations, mut)
}

// InsertAfter queues content to be spliced in immediately after byte offset
// at (i.e. before at+1).
func (m *mutable) InsertAfter(at int, content string) {
	m.mutations = append(m.mutations, Mutation{Start: at + 1, End: at + 1, Replacement: content})
}

// InsertLineNumber queues a `#line N` directive after byte offset at, to
// keep the logical line count correct across an inserted/removed span.
func (m *mutable) InsertLineNumber(at int, line int) {
	m.InsertAfter(at, "#line "+strconv.Itoa(line)+"\n")
}

// pendingCount reports the number of queued, unapplied mutations.
func (m *mutable) pendingCount() int { return len(m.mutations) }

// apply splices every queued mutation into src in one left-to-right pass and
// clears the queue, per original_source's apply_mutations: "1. Stable-sort
// by start ... 2. Walk the source left to right, copying unmodified spans
// and splicing replacements. 3. Clear the edit list." Returns the new
// string and whether anything changed.
func (m *mutable) apply() (string, bool) {
	if len(m.mutations) == 0 {
		return m.src, false
	}
	ordered := make([]Mutation, len(m.mutations))
	copy(ordered, m.mutations)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	var b strings.Builder
	b.Grow(len(m.src))
	cursor := 0
	for _, mut := range ordered {
		if mut.Start < cursor {
			// Overlap that ReplaceTry should have caught; skip defensively
			// rather than corrupt the splice.
			continue
		}
		b.WriteString(m.src[cursor:mut.Start])
		b.WriteString(mut.Replacement)
		cursor = mut.End
	}
	if cursor < len(m.src) {
		b.WriteString(m.src[cursor:])
	}

	m.src = b.String()
	m.mutations = nil
	return m.src, true
}

// SerializeMutations renders the pending queue as human-readable lines, for
// golden-file tests of individual lowering passes before a reparse.
func (m *mutable) SerializeMutations() string {
	var b strings.Builder
	for _, mut := range m.mutations {
		b.WriteString("Replace ")
		b.WriteString(strconv.Itoa(mut.Start))
		b.WriteString(" - ")
		b.WriteString(strconv.Itoa(mut.End - mut.Start))
		b.WriteString(" \"")
		if mut.End <= len(m.src) && mut.Start <= mut.End {
			b.WriteString(m.src[mut.Start:mut.End])
		}
		b.WriteString("\" by \"")
		b.WriteString(mut.Replacement)
		b.WriteString("\"\n")
	}
	return b.String()
}
