package handlers

import "schema-compiler/internal/ir"

// ResetAttributeSequences clears the sequence marker of fields whose
// sequence does not repeat: only repeating sequences need their members
// kept together.
type ResetAttributeSequences struct{}

// NewResetAttributeSequences returns the handler.
func NewResetAttributeSequences() *ResetAttributeSequences {
	return &ResetAttributeSequences{}
}

// Process implements container.Handler.
func (h *ResetAttributeSequences) Process(t *ir.Type) error {
	groups := make(map[int][]*ir.Field)

	for _, f := range t.Fields {
		if f.Restrictions.Sequence != 0 {
			groups[f.Restrictions.Sequence] = append(groups[f.Restrictions.Sequence], f)
		}
	}

	for _, fields := range groups {
		if repeating(fields) {
			continue
		}

		for _, f := range fields {
			f.Restrictions.Sequence = 0
		}
	}

	return nil
}

func repeating(fields []*ir.Field) bool {
	if len(fields) < 2 {
		return false
	}

	for _, f := range fields {
		if !f.IsList() {
			return false
		}
	}

	return true
}

// ResetAttributeSequenceNumbers renumbers field indices and sequence
// markers of each Type from the top.
type ResetAttributeSequenceNumbers struct{}

// NewResetAttributeSequenceNumbers returns the handler.
func NewResetAttributeSequenceNumbers() *ResetAttributeSequenceNumbers {
	return &ResetAttributeSequenceNumbers{}
}

// Process implements container.Handler.
func (h *ResetAttributeSequenceNumbers) Process(t *ir.Type) error {
	sequences := make(map[int]int)

	for i, f := range t.Fields {
		f.Index = i

		if seq := f.Restrictions.Sequence; seq != 0 {
			if _, ok := sequences[seq]; !ok {
				sequences[seq] = len(sequences) + 1
			}

			f.Restrictions.Sequence = sequences[seq]
		}

		for j, choice := range f.Choices {
			choice.Index = j
		}
	}

	return nil
}
