package handlers

import (
	"schema-compiler/internal/common"
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

// ProcessAttributeTypes binds every field type: natives get their list
// flags, forward types are bound to inner Types, dependencies are bound to
// root Types. Types that only wrap a simple value are copied through.
type ProcessAttributeTypes struct {
	c *container.Container
}

// NewProcessAttributeTypes returns the handler.
func NewProcessAttributeTypes(c *container.Container) *ProcessAttributeTypes {
	return &ProcessAttributeTypes{c: c}
}

// Process implements container.Handler.
func (h *ProcessAttributeTypes) Process(t *ir.Type) error {
	ignorePatterns := h.c.Config().Output.IgnorePatterns

	for _, f := range t.Fields {
		if ignorePatterns {
			f.Restrictions.Pattern = nil
		}

		if err := h.processTypes(t, f); err != nil {
			return err
		}
	}

	return nil
}

func (h *ProcessAttributeTypes) processTypes(t *ir.Type, f *ir.Field) error {
	// The slice is rewritten while copying through simple types.
	for _, ft := range append([]*ir.FieldType(nil), f.Types...) {
		var err error

		switch {
		case ft.Native || ir.IsNative(ft.QName):
			ft.Native = true
			if ir.IsTokenList(ft.QName) {
				f.Restrictions.Tokens = true
			}
		case ft.Forward:
			err = h.processInner(t, f, ft)
		default:
			err = h.processDependency(t, f, ft)
		}

		if err != nil {
			return err
		}
	}

	f.Types = filterTypes(f.Types)

	return nil
}

func (h *ProcessAttributeTypes) processInner(t *ir.Type, f *ir.Field, ft *ir.FieldType) error {
	if ft.Circular {
		ft.Reference = t.ID
		return nil
	}

	inner, err := h.c.FindInner(t, ft.QName)
	if err != nil {
		return err
	}

	if inner.IsSimpleType() && !inner.Fields[0].IsList() {
		if err := h.copyThrough(inner, t, f, ft); err != nil {
			return err
		}

		removeInner(t, inner)

		return nil
	}

	ft.Reference = inner.ID

	return nil
}

func (h *ProcessAttributeTypes) processDependency(t *ir.Type, f *ir.Field, ft *ir.FieldType) error {
	source, err := findByPriority(h.c, ft.QName, f.Tag)
	if err != nil {
		return err
	}

	switch {
	case source == nil:
		h.c.Warn(diagnostic.CodeResetAbsentType, t.QName.String(), f.Name,
			"reset absent type %s to %s%s", ft.QName, ir.XSString, didYouMean(h.c, ft.QName))

		*ft = ir.FieldType{QName: ir.XSString, Native: true}
	case source.IsSimpleType() && source != t && !source.Fields[0].IsList():
		return h.copyThrough(source, t, f, ft)
	default:
		ft.Reference = source.ID
	}

	return nil
}

// copyThrough replaces ft by the types of the single text field of source,
// merging that field's restrictions under the field's own.
func (h *ProcessAttributeTypes) copyThrough(source, t *ir.Type, f *ir.Field, ft *ir.FieldType) error {
	text := source.Fields[0]

	idx := -1

	for i, cur := range f.Types {
		if cur == ft {
			idx = i
			break
		}
	}

	if idx < 0 {
		return nil
	}

	clones := cloneTypes(text.Types)

	types := make([]*ir.FieldType, 0, len(f.Types)+len(clones))
	types = append(types, f.Types[:idx]...)
	types = append(types, clones...)
	f.Types = append(types, f.Types[idx+1:]...)

	holder := &ir.Field{Types: clones}
	if err := copyInnerTypes(h.c, source, t, holder); err != nil {
		return err
	}

	for _, clone := range clones {
		if ir.IsTokenList(clone.QName) {
			f.Restrictions.Tokens = true
		}
	}

	restrictions := text.Restrictions.Clone()
	restrictions.Merge(f.Restrictions)
	f.Restrictions.Merge(restrictions)

	if f.Help == "" {
		f.Help = text.Help
	}

	if f.Default == "" && text.Default != "" {
		f.Default = text.Default
		f.Fixed = text.Fixed
	}

	return nil
}

// filterTypes drops duplicate types and xs:anyType next to other types.
func filterTypes(types []*ir.FieldType) []*ir.FieldType {
	seen := make(map[ir.QName]bool, len(types))

	var out []*ir.FieldType

	for _, ft := range types {
		if seen[ft.QName] {
			continue
		}

		seen[ft.QName] = true
		out = append(out, ft)
	}

	if len(out) > 1 {
		kept := out[:0]

		for _, ft := range out {
			if !(ft.Native && ft.QName == ir.XSAnyType) {
				kept = append(kept, ft)
			}
		}

		out = kept
	}

	return out
}

func removeInner(t, inner *ir.Type) {
	for i, cur := range t.Inner {
		if cur == inner {
			t.Inner = common.RemoveAt(t.Inner, i)
			return
		}
	}
}
