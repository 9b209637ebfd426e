package handlers

import "schema-compiler/internal/ir"

// CalculateAttributePaths derives the sequence, choice and group markers of
// every field from its content model path and folds the occurrence bounds
// of the enclosing particles into the field's own bounds.
type CalculateAttributePaths struct{}

// NewCalculateAttributePaths returns the handler.
func NewCalculateAttributePaths() *CalculateAttributePaths {
	return &CalculateAttributePaths{}
}

// Process implements container.Handler.
func (h *CalculateAttributePaths) Process(t *ir.Type) error {
	for _, f := range t.Fields {
		if len(f.Restrictions.Path) > 0 {
			processPath(f)
		}
	}

	return nil
}

func processPath(f *ir.Field) {
	r := &f.Restrictions
	minOccurs, maxOccurs := r.Min(), r.Max()
	outerMin, outerMax := 1, 1
	inChoice := false

	// Entries run from the outermost particle inwards; the innermost marker wins.
	for _, entry := range r.Path {
		switch entry.Kind {
		case ir.PathSequence:
			r.Sequence = entry.ID
		case ir.PathChoice:
			r.Choice = entry.ID
			inChoice = true
		case ir.PathGroup:
			r.Group = entry.ID
		case ir.PathElement:
			// The element's own bounds.
			minOccurs, maxOccurs = entry.Min, entry.Max
			continue
		}

		outerMin = ir.MulOccurs(outerMin, entry.Min)
		outerMax = ir.MulOccurs(outerMax, entry.Max)
	}

	minOccurs = ir.MulOccurs(minOccurs, outerMin)
	maxOccurs = ir.MulOccurs(maxOccurs, outerMax)

	// Alternatives are optional on their own.
	if inChoice {
		minOccurs = 0
	}

	r.SetMin(minOccurs)
	r.SetMax(maxOccurs)
}

// choiceMin returns the minimum occurrence of the choice particle id along
// path, folded with its enclosing particles. ok is false when the path does
// not contain the choice.
func choiceMin(path []ir.PathEntry, id int) (minOccurs int, ok bool) {
	minOccurs = 1

	for _, entry := range path {
		if entry.Kind == ir.PathElement {
			continue
		}

		minOccurs = ir.MulOccurs(minOccurs, entry.Min)

		if entry.Kind == ir.PathChoice && entry.ID == id {
			return minOccurs, true
		}
	}

	return 0, false
}
