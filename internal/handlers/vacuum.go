package handlers

import "schema-compiler/internal/ir"

// VacuumInnerClasses removes duplicate and empty inner Types and renames
// inner Types that share their parent's name.
type VacuumInnerClasses struct{}

// NewVacuumInnerClasses returns the handler.
func NewVacuumInnerClasses() *VacuumInnerClasses {
	return &VacuumInnerClasses{}
}

// Process implements container.Handler.
func (h *VacuumInnerClasses) Process(t *ir.Type) error {
	seen := make(map[ir.QName]*ir.Type, len(t.Inner))

	var kept []*ir.Type

	for _, inner := range t.Inner {
		if first, ok := seen[inner.QName]; ok {
			rebindForward(t, inner.ID, first.QName, first.ID)
			continue
		}

		if len(inner.Fields) == 0 && len(inner.Extensions) == 0 {
			resetForward(t, inner.ID)
			continue
		}

		if inner.QName == t.QName {
			q := inner.QName.WithLocal(inner.Name() + "_Inner")
			rebindForward(t, inner.ID, q, inner.ID)
			inner.QName = q
		}

		seen[inner.QName] = inner
		kept = append(kept, inner)
	}

	t.Inner = kept

	return nil
}

// rebindForward points forward types bound to from at the inner Type to.
func rebindForward(t *ir.Type, from ir.Handle, q ir.QName, to ir.Handle) {
	for _, ft := range t.FieldTypes() {
		if ft.Forward && ft.Reference == from {
			ft.QName = q
			ft.Reference = to
		}
	}
}

// resetForward turns forward types bound to a removed empty inner Type into xs:anyType.
func resetForward(t *ir.Type, from ir.Handle) {
	for _, ft := range t.FieldTypes() {
		if ft.Forward && ft.Reference == from {
			*ft = ir.FieldType{QName: ir.XSAnyType, Native: true}
		}
	}
}
