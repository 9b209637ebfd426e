package handlers

import "schema-compiler/internal/ir"

// MergeAttributes merges fields declared more than once. Repeated element
// fields widen into one field whose bounds cover both; repeated attributes
// and members keep their first declaration.
type MergeAttributes struct{}

// NewMergeAttributes returns the handler.
func NewMergeAttributes() *MergeAttributes {
	return &MergeAttributes{}
}

// Process implements container.Handler.
func (h *MergeAttributes) Process(t *ir.Type) error {
	type mergeKey struct {
		field  string
		choice int
	}

	var result []*ir.Field

	seen := make(map[mergeKey]*ir.Field)

	for _, f := range t.Fields {
		k := mergeKey{field: fieldKey(f), choice: f.Restrictions.Choice}

		existing, ok := seen[k]
		if !ok {
			seen[k] = f
			result = append(result, f)

			continue
		}

		if f.IsAttribute() || f.IsEnumeration() || f.IsText() {
			continue
		}

		existing.Restrictions.SetMin(min(existing.Restrictions.Min(), f.Restrictions.Min()))
		existing.Restrictions.SetMax(ir.AddOccurs(existing.Restrictions.Max(), f.Restrictions.Max()))
		existing.Fixed = false

		if existing.Restrictions.Sequence == 0 {
			existing.Restrictions.Sequence = f.Restrictions.Sequence
		}

		for _, ft := range f.Types {
			if !hasType(existing, ft.QName) {
				existing.Types = append(existing.Types, ft)
			}
		}
	}

	t.Fields = result

	return nil
}
