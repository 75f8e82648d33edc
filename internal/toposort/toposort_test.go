package toposort_test

import (
	"iter"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blender/bslc/internal/toposort"
)

type dag map[int][]int

func (d dag) children(n int) iter.Seq[int] {
	return slices.Values(d[n])
}

func TestSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		dag   dag
		roots []int
		want  []int
	}{
		{name: "empty"},
		{
			name:  "list",
			dag:   dag{1: {2}, 2: {3}, 3: {4}, 4: {}},
			roots: []int{1},
			want:  []int{4, 3, 2, 1},
		},
		{
			name:  "diamond",
			dag:   dag{1: {2, 3}, 2: {4}, 3: {4}, 4: {}},
			roots: []int{1},
			want:  []int{4, 3, 2, 1},
		},
		{
			name:  "diamond",
			dag:   dag{1: {2, 3}, 2: {4}, 3: {4}, 4: {}},
			roots: []int{2},
			want:  []int{4, 2},
		},
		{
			name:  "y",
			dag:   dag{1: {2}, 2: {4}, 3: {4}, 4: {}},
			roots: []int{1, 3},
			want:  []int{4, 2, 1, 3},
		},
	}

	var mu sync.Mutex
	s := toposort.Sorter[int, int]{Key: func(n int) int { return n }}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mu.Lock()
			defer mu.Unlock()

			assert.Equal(t, tt.want, slices.Collect(s.Sort(tt.roots, tt.dag.children)))
		})
	}
}

func TestCycle(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		for range toposort.Sort(
			[]int{0},
			func(n int) int { return n },
			func(_ int) iter.Seq[int] { return slices.Values([]int{0}) },
		) {
		}
	})
}
