package handlers

import (
	"schema-compiler/internal/container"
	"schema-compiler/internal/graph"
	"schema-compiler/internal/ir"
)

// DetectCircularReferences flags every FieldType whose target can reach
// back to the declaring Type. Running it again yields the same flags.
type DetectCircularReferences struct {
	refs *graph.Graph[ir.Handle]
}

// NewDetectCircularReferences returns the handler.
func NewDetectCircularReferences() *DetectCircularReferences {
	return &DetectCircularReferences{}
}

// Prepare builds the reference graph over every root and inner Type. A
// root also owns the references of its inner Types.
func (h *DetectCircularReferences) Prepare(c *container.Container) error {
	refs := graph.New[ir.Handle]()

	for _, root := range c.Iterate() {
		root.Walk(func(cur *ir.Type) {
			refs.AddNode(cur.ID)

			for _, ft := range cur.FieldTypes() {
				if ft.Native || ft.Reference.IsZero() {
					continue
				}

				refs.AddEdge(cur.ID, ft.Reference)

				if cur != root {
					refs.AddEdge(root.ID, ft.Reference)
				}
			}
		})
	}

	h.refs = refs

	return nil
}

// Process implements container.Handler.
func (h *DetectCircularReferences) Process(t *ir.Type) error {
	for _, ft := range t.FieldTypes() {
		if ft.Native || ft.Forward {
			continue
		}

		ft.Circular = h.circular(ft.Reference, t.ID)
	}

	return nil
}

func (h *DetectCircularReferences) circular(target, declaring ir.Handle) bool {
	if target.IsZero() || h.refs == nil {
		return false
	}

	if target == declaring {
		return true
	}

	return h.refs.Reachable(target, declaring)
}
