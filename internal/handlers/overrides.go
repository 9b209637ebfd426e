package handlers

import (
	"slices"

	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/naming"
)

// ValidateAttributesOverrides checks fields against the fields a Type
// inherits. Identical and prohibited overrides are dropped, conflicting
// declarations are renamed.
type ValidateAttributesOverrides struct {
	c *container.Container
}

// NewValidateAttributesOverrides returns the handler.
func NewValidateAttributesOverrides(c *container.Container) *ValidateAttributesOverrides {
	return &ValidateAttributesOverrides{c: c}
}

// Process implements container.Handler.
func (h *ValidateAttributesOverrides) Process(t *ir.Type) error {
	inherited := h.baseFields(t)
	if len(inherited) == 0 {
		return h.dropProhibited(t)
	}

	reserved := make(map[string]bool, len(inherited)+len(t.Fields))
	for k := range inherited {
		reserved[k] = true
	}

	for _, f := range t.Fields {
		reserved[naming.Key(f.Name)] = true
	}

	var kept []*ir.Field

	for _, f := range t.Fields {
		base, ok := inherited[naming.Key(f.Name)]

		switch {
		case !ok:
			if f.IsProhibited() {
				h.prohibited(t, f)
				continue
			}
		case overrides(f, base):
			if f.IsProhibited() || identical(f, base) {
				continue
			}
		default:
			if f.IsAttribute() == base.IsAttribute() {
				h.c.Warn(diagnostic.CodeNamespaceOverride, t.QName.String(), f.Name,
					"field overrides inherited %s from namespace %q with namespace %q",
					base.Name, base.Namespace, f.Namespace)
			}

			old := f.Name
			rename(f, naming.Unique(f.Name+"_"+f.Tag.Suffix(), reserved), nil)
			h.c.Info(diagnostic.CodeRenamedField, t.QName.String(), old, "renamed field to %s", f.Name)
		}

		kept = append(kept, f)
	}

	t.Fields = kept

	return nil
}

func (h *ValidateAttributesOverrides) dropProhibited(t *ir.Type) error {
	kept := t.Fields[:0]

	for _, f := range t.Fields {
		if f.IsProhibited() {
			h.prohibited(t, f)
			continue
		}

		kept = append(kept, f)
	}

	clear(t.Fields[len(kept):])
	t.Fields = kept

	return nil
}

func (h *ValidateAttributesOverrides) prohibited(t *ir.Type, f *ir.Field) {
	h.c.Info(diagnostic.CodeProhibitedOverride, t.QName.String(), f.Name,
		"dropped prohibited field without inherited declaration")
}

// baseFields returns the fields t inherits through its kept bases, keyed by
// normalised name; nearer bases win.
func (h *ValidateAttributesOverrides) baseFields(t *ir.Type) map[string]*ir.Field {
	out := make(map[string]*ir.Field)
	seen := map[ir.Handle]bool{t.ID: true}

	queue := append([]*ir.Extension(nil), t.Extensions...)

	for len(queue) > 0 {
		ext := queue[0]
		queue = queue[1:]

		ref := ext.Type.Reference
		if ext.Type.Native || ref.IsZero() || seen[ref] {
			continue
		}

		seen[ref] = true

		base := h.c.FindByID(ref)
		if base == nil {
			continue
		}

		for _, f := range base.Fields {
			k := naming.Key(f.Name)
			if _, ok := out[k]; !ok {
				out[k] = f
			}
		}

		queue = append(queue, base.Extensions...)
	}

	return out
}

func overrides(f, base *ir.Field) bool {
	return f.IsAttribute() == base.IsAttribute() && f.Namespace == base.Namespace
}

func identical(a, b *ir.Field) bool {
	return a.Tag == b.Tag &&
		a.Restrictions.Min() == b.Restrictions.Min() &&
		a.Restrictions.Max() == b.Restrictions.Max() &&
		a.Default == b.Default &&
		a.Fixed == b.Fixed &&
		a.Mixed == b.Mixed &&
		slices.Equal(typeNames(a), typeNames(b))
}

func typeNames(f *ir.Field) []ir.QName {
	out := make([]ir.QName, len(f.Types))
	for i, ft := range f.Types {
		out[i] = ft.QName
	}

	return out
}
