package handlers

import (
	"schema-compiler/internal/container"
	"schema-compiler/internal/ir"
)

// SanitizeEnumerationClass cleans up Types mixing enumeration members with
// other fields and turns unions of enumerations into one enumeration.
type SanitizeEnumerationClass struct {
	c *container.Container
}

// NewSanitizeEnumerationClass returns the handler.
func NewSanitizeEnumerationClass(c *container.Container) *SanitizeEnumerationClass {
	return &SanitizeEnumerationClass{c: c}
}

// Process implements container.Handler.
func (h *SanitizeEnumerationClass) Process(t *ir.Type) error {
	h.filter(t)

	return h.flattenUnion(t)
}

// filter keeps only the members of a simple enumeration, and drops the
// members of a complex Type whose content is restricted to them.
func (h *SanitizeEnumerationClass) filter(t *ir.Type) {
	if !t.HasEnumerations() || t.IsEnumeration() {
		return
	}

	keepMembers := !t.IsComplex()
	kept := t.Fields[:0]

	for _, f := range t.Fields {
		if f.IsEnumeration() == keepMembers {
			kept = append(kept, f)
		}
	}

	clear(t.Fields[len(kept):])
	t.Fields = kept
}

// flattenUnion replaces a single union field whose member types are all
// enumerations by the members of those enumerations.
func (h *SanitizeEnumerationClass) flattenUnion(t *ir.Type) error {
	if len(t.Fields) != 1 || t.Fields[0].Tag != ir.TagUnion || len(t.Extensions) > 0 {
		return nil
	}

	union := t.Fields[0]

	var sources []*ir.Type

	for _, ft := range union.Types {
		if ft.Native {
			return nil
		}

		var (
			source *ir.Type
			err    error
		)

		if ft.Forward {
			source, err = h.c.FindInner(t, ft.QName)
		} else {
			source, err = h.c.Find(ft.QName, func(s *ir.Type) bool { return !s.IsComplex() })
		}

		if err != nil {
			return err
		}

		if source == nil || !source.IsEnumeration() {
			return nil
		}

		sources = append(sources, source)
	}

	if len(sources) == 0 {
		return nil
	}

	t.Fields = nil

	names := make(map[string]bool)

	for _, source := range sources {
		for _, member := range source.Fields {
			if names[member.Name] {
				continue
			}

			names[member.Name] = true
			t.Fields = append(t.Fields, member.Clone())
		}
	}

	// Forward references are gone with the union field.
	var inner []*ir.Type

	for _, cur := range t.Inner {
		if !containsType(sources, cur) {
			inner = append(inner, cur)
		}
	}

	t.Inner = inner

	return nil
}

func containsType(types []*ir.Type, t *ir.Type) bool {
	for _, cur := range types {
		if cur == t {
			return true
		}
	}

	return false
}
