package graph

import "sort"

// SCC returns the strongly connected components of a graph with n nodes.
//
// Nodes are indices in [0, n); succ(i) yields the successors of i. Edges
// outside the range are ignored. Components are emitted in reverse
// topological order: a component comes after every component reachable
// from it. Members of a component are sorted ascending.
func SCC(n int, succ func(i int) []int) [][]int {
	if n <= 0 {
		return nil
	}

	// index and low are 1-based so that zero means "not visited".
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)

	type frame struct {
		node  int
		edges []int
		next  int
	}

	var (
		stack []int
		out   [][]int
		work  []frame
	)

	counter := 0
	visit := func(v int) {
		counter++
		index[v], low[v] = counter, counter
		stack = append(stack, v)
		onStack[v] = true
		work = append(work, frame{node: v, edges: succ(v)})
	}

	for root := 0; root < n; root++ {
		if index[root] != 0 {
			continue
		}

		visit(root)

		for len(work) > 0 {
			top := &work[len(work)-1]
			if top.next < len(top.edges) {
				w := top.edges[top.next]
				top.next++

				switch {
				case w < 0 || w >= n:
				case index[w] == 0:
					visit(w)
				case onStack[w]:
					low[top.node] = min(low[top.node], index[w])
				}

				continue
			}

			v := top.node
			work = work[:len(work)-1]

			if len(work) > 0 {
				parent := work[len(work)-1].node
				low[parent] = min(low[parent], low[v])
			}

			if low[v] != index[v] {
				continue
			}

			var component []int

			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false

				component = append(component, w)
				if w == v {
					break
				}
			}

			sort.Ints(component)
			out = append(out, component)
		}
	}

	return out
}

// Reachable reports whether to can be reached from from by following at
// least one edge. A node reaches itself only through a cycle.
func Reachable(n int, succ func(i int) []int, from, to int) bool {
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}

	seen := make([]bool, n)
	stack := append([]int(nil), succ(from)...)

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if v < 0 || v >= n || seen[v] {
			continue
		}

		if v == to {
			return true
		}

		seen[v] = true
		stack = append(stack, succ(v)...)
	}

	return false
}
