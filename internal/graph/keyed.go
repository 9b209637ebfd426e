package graph

// Graph is a directed graph over comparable keys. Nodes keep insertion
// order, which makes every derived ordering deterministic.
type Graph[K comparable] struct {
	keys  []K
	index map[K]int
	edges [][]int
}

// New returns an empty graph.
func New[K comparable]() *Graph[K] {
	return &Graph[K]{index: make(map[K]int)}
}

// AddNode adds k if missing and returns its index.
func (g *Graph[K]) AddNode(k K) int {
	if i, ok := g.index[k]; ok {
		return i
	}

	i := len(g.keys)
	g.keys = append(g.keys, k)
	g.index[k] = i
	g.edges = append(g.edges, nil)

	return i
}

// AddEdge adds an edge from -> to, adding missing nodes.
func (g *Graph[K]) AddEdge(from, to K) {
	f := g.AddNode(from)
	t := g.AddNode(to)
	g.edges[f] = append(g.edges[f], t)
}

// Len returns the number of nodes.
func (g *Graph[K]) Len() int {
	return len(g.keys)
}

// Keys returns the nodes in insertion order.
func (g *Graph[K]) Keys() []K {
	return append([]K(nil), g.keys...)
}

// Has reports whether k is a node.
func (g *Graph[K]) Has(k K) bool {
	_, ok := g.index[k]
	return ok
}

func (g *Graph[K]) succ(i int) []int {
	return g.edges[i]
}

// Components returns the strongly connected components, dependencies first.
func (g *Graph[K]) Components() [][]K {
	comps := SCC(len(g.keys), g.succ)
	out := make([][]K, len(comps))

	for i, comp := range comps {
		keys := make([]K, len(comp))
		for j, v := range comp {
			keys[j] = g.keys[v]
		}

		out[i] = keys
	}

	return out
}

// Reachable reports whether to is reachable from from through at least one edge.
func (g *Graph[K]) Reachable(from, to K) bool {
	f, ok := g.index[from]
	if !ok {
		return false
	}

	t, ok := g.index[to]
	if !ok {
		return false
	}

	return Reachable(len(g.keys), g.succ, f, t)
}

// Sort returns the nodes with every edge target before its source, so
// that dependencies come first. Ties keep insertion order.
func (g *Graph[K]) Sort() ([]K, error) {
	order, err := TopoSort(len(g.keys), g.succ)
	if err != nil {
		return nil, err
	}

	out := make([]K, len(order))
	for i, v := range order {
		out[i] = g.keys[v]
	}

	return out, nil
}
