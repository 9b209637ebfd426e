package handlers

import "schema-compiler/internal/ir"

// wildcardNamespace matches elements from any namespace.
const wildcardNamespace = "##any"

// ProcessMixedContentClass gives mixed content Types a repeating wildcard
// that collects text and unknown elements.
type ProcessMixedContentClass struct{}

// NewProcessMixedContentClass returns the handler.
func NewProcessMixedContentClass() *ProcessMixedContentClass {
	return &ProcessMixedContentClass{}
}

// Process implements container.Handler.
func (h *ProcessMixedContentClass) Process(t *ir.Type) error {
	if !t.Mixed {
		return nil
	}

	for _, f := range t.Fields {
		if f.Tag == ir.TagAny {
			f.Mixed = true
			f.Restrictions.SetMin(0)
			f.Restrictions.SetMax(ir.Unbounded)

			return nil
		}
	}

	content := &ir.Field{
		Tag:          ir.TagAny,
		Name:         "content",
		Index:        len(t.Fields),
		Namespace:    wildcardNamespace,
		Types:        []*ir.FieldType{ir.NewNative(ir.XSAnyType)},
		Restrictions: ir.Occurs(0, ir.Unbounded),
		Mixed:        true,
	}
	t.Fields = append(t.Fields, content)

	return nil
}
