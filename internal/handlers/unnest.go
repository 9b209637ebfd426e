package handlers

import (
	"schema-compiler/internal/container"
	"schema-compiler/internal/ir"
)

// UnnestInnerClasses promotes inner enumerations, and every inner Type when
// configured to, to root Types named after their parent.
type UnnestInnerClasses struct {
	c *container.Container
}

// NewUnnestInnerClasses returns the handler.
func NewUnnestInnerClasses(c *container.Container) *UnnestInnerClasses {
	return &UnnestInnerClasses{c: c}
}

// Process implements container.Handler.
func (h *UnnestInnerClasses) Process(t *ir.Type) error {
	all := h.c.Config().Output.UnnestClasses

	// Inner Types reach this pass before their parent, so nested inners
	// of a promoted Type have already been handled.
	var kept []*ir.Type

	for _, inner := range t.Inner {
		if all || inner.IsEnumeration() {
			h.promote(t, inner)
			continue
		}

		kept = append(kept, inner)
	}

	t.Inner = kept

	return nil
}

func (h *UnnestInnerClasses) promote(parent, inner *ir.Type) {
	q := inner.QName.WithLocal(parent.Name() + "_" + inner.Name())

	parent.Walk(func(cur *ir.Type) {
		for _, ft := range cur.FieldTypes() {
			if ft.Forward && (ft.Reference == inner.ID || (ft.Reference.IsZero() && ft.QName == inner.QName)) {
				ft.QName = q
				ft.Forward = false
				ft.Reference = inner.ID
			}
		}
	})

	inner.QName = q
	inner.LocalType = true

	if inner.Location == "" {
		inner.Location = parent.Location
	}

	h.c.Add(inner)
}
