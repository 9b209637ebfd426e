package handlers

import (
	"schema-compiler/internal/config"
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

// FilterClasses keeps the Types that are generated: the generatable roots
// and everything they depend on.
type FilterClasses struct {
	c *container.Container
}

// NewFilterClasses returns the runner.
func NewFilterClasses(c *container.Container) *FilterClasses {
	return &FilterClasses{c: c}
}

// Run implements container.Runner.
func (r *FilterClasses) Run() error {
	if r.c.Config().Output.Filter == config.FilterAll {
		return nil
	}

	types := r.c.Iterate()
	keep := make(map[*ir.Type]bool)

	var queue []*ir.Type

	for _, t := range types {
		if t.ShouldGenerate() {
			keep[t] = true
			queue = append(queue, t)
		}
	}

	if len(queue) == 0 {
		r.c.Warn(diagnostic.CodeNoGeneratableTypes, "", "",
			"no generatable types, keeping all %d types", len(types))

		return nil
	}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		for _, q := range t.Dependencies(false) {
			for _, dep := range r.c.Bucket(q) {
				if !keep[dep] {
					keep[dep] = true
					queue = append(queue, dep)
				}
			}
		}
	}

	var dropped []*ir.Type

	for _, t := range types {
		if !keep[t] {
			dropped = append(dropped, t)
		}
	}

	r.c.Remove(dropped...)

	return nil
}
