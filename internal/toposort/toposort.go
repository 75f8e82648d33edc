// Package toposort provides a generic topological sort, used to order the
// GPU_SHADER_CREATE_INFO records metadata.Source accumulates so that an
// ADDITIONAL_INFO reference is always declared before the info that names
// it (metadata.Source.Serialize).
package toposort

import (
	"fmt"
	"iter"
	"strings"
)

// Sort sorts a DAG topologically, yielding dependencies before the nodes
// that depend on them.
//
// roots are the nodes whose dependencies are being queried. key returns a
// comparable key for each node. dag returns the children (dependencies) of
// a node.
func Sort[Node any, Key comparable](
	roots []Node,
	key func(Node) Key,
	dag func(Node) iter.Seq[Node],
) iter.Seq[Node] {
	s := Sorter[Node, Key]{Key: key}
	return s.Sort(roots, dag)
}

// Sorter is reusable scratch space for [Sort], amortizing its bookkeeping
// allocations across repeated calls.
type Sorter[Node any, Key comparable] struct {
	Key func(Node) Key

	state     map[Key]bool
	stack     []Node
	iterating bool
}

// Sort is like [Sort], but reuses s's allocated state.
func (s *Sorter[Node, Key]) Sort(
	roots []Node,
	dag func(Node) iter.Seq[Node],
) iter.Seq[Node] {
	if s.state == nil {
		s.state = make(map[Key]bool)
	} else {
		clear(s.state)
	}
	s.stack = s.stack[:0]

	return func(yield func(Node) bool) {
		if s.iterating {
			panic("toposort: Sort() called reentrantly")
		}
		s.iterating = true
		defer func() { s.iterating = false }()

		for _, root := range roots {
			s.push(root)
			// DFS tail-call-optimized into a loop: each node is visited
			// twice, once to push its children and once to pop it and
			// yield it.
			for len(s.stack) > 0 {
				node := s.stack[len(s.stack)-1]
				k := s.Key(node)
				yielded, visited := s.state[k]

				if !visited {
					s.state[k] = false
					for child := range dag(node) {
						s.push(child)
					}
					continue
				}

				s.stack = s.stack[:len(s.stack)-1]
				if !yielded {
					if !yield(node) {
						return
					}
					s.state[k] = true
				}
			}
		}
	}
}

func (s *Sorter[Node, Key]) push(v Node) {
	k := s.Key(v)
	switch yielded, visited := s.state[k]; {
	case !visited:
		s.stack = append(s.stack, v)
	case !yielded && visited:
		prev := -1
		for i := len(s.stack) - 1; i >= 0; i-- {
			if s.Key(s.stack[i]) == k {
				prev = i
				break
			}
		}
		var names []string
		for _, n := range s.stack[prev:] {
			names = append(names, fmt.Sprint(s.Key(n)))
		}
		panic(fmt.Sprintf("toposort: cycle detected: %s -> %v", strings.Join(names, "->"), k))
	case yielded:
		return
	}
}
