package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is returned by TopoSort when the graph is not acyclic.
var ErrCycle = errors.New("cycle detected")

// TopoSort returns node indices so that every node comes after its
// dependencies.
//
// Nodes are by index in [0, n). depsFn(i) yields indices that must come
// before i; duplicates and self references are ignored.
//
// The result is deterministic: when multiple nodes are available, we pick the
// smallest index. If a cycle exists, an error wrapping ErrCycle is returned.
func TopoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := 0; i < n; i++ {
		seen := make(map[int]bool)

		for _, d := range depsFn(i) {
			if d < 0 || d >= n {
				return nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			if d == i || seen[d] {
				continue
			}

			seen[d] = true
			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	// Deterministic traversal.
	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)
		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				// Insert while keeping ready sorted.
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	if len(order) != n {
		var stuck []int

		for i := 0; i < n; i++ {
			if indeg[i] > 0 {
				stuck = append(stuck, i)
			}
		}

		return nil, fmt.Errorf("%w: nodes %v", ErrCycle, stuck)
	}

	return order, nil
}
