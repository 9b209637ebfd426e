// Package graph provides the directed graph primitives used by the pipeline
// and the resolver: strongly connected components, reachability and a
// deterministic topological sort.
//
// Every traversal uses an explicit work stack, so deep or adversarial graphs
// never grow the goroutine stack.
package graph
