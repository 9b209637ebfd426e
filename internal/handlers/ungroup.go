package handlers

import (
	"schema-compiler/internal/common"
	"schema-compiler/internal/container"
	"schema-compiler/internal/ir"
)

// groupPathBase keeps synthesized group path ids clear of the ids front-ends assign.
const groupPathBase = 1 << 20

// FlattenAttributeGroups replaces group and attribute group references by
// copies of the referenced group's fields.
type FlattenAttributeGroups struct {
	c      *container.Container
	nextID int
}

// NewFlattenAttributeGroups returns the handler.
func NewFlattenAttributeGroups(c *container.Container) *FlattenAttributeGroups {
	return &FlattenAttributeGroups{c: c, nextID: groupPathBase}
}

// Process implements container.Handler.
func (h *FlattenAttributeGroups) Process(t *ir.Type) error {
	// lineage records the groups a copied field was expanded from.
	lineage := make(map[*ir.Field]map[ir.QName]bool)

	for {
		idx := -1

		for i, f := range t.Fields {
			if f.IsGroup() {
				idx = i
				break
			}
		}

		if idx < 0 {
			return nil
		}

		if err := h.flatten(t, idx, lineage); err != nil {
			return err
		}
	}
}

func (h *FlattenAttributeGroups) flatten(t *ir.Type, idx int, lineage map[*ir.Field]map[ir.QName]bool) error {
	ref := t.Fields[idx]
	if len(ref.Types) == 0 {
		t.Fields = common.RemoveAt(t.Fields, idx)
		return nil
	}

	q := ref.Types[0].QName

	source, err := h.c.Find(q, func(s *ir.Type) bool { return s.Tag == ref.Tag })
	if err != nil {
		return err
	}

	if source == nil {
		return missingReference(h.c, q, t, ref.Tag.String())
	}

	// A group that includes itself, directly or through an expansion.
	if source == t || lineage[ref][q] {
		t.Fields = common.RemoveAt(t.Fields, idx)
		return nil
	}

	seen := map[ir.QName]bool{q: true}
	for k := range lineage[ref] {
		seen[k] = true
	}

	prefix := append([]ir.PathEntry(nil), ref.Restrictions.Path...)
	if ref.Tag == ir.TagGroup {
		h.nextID++
		prefix = append(prefix, ir.PathEntry{
			Kind: ir.PathGroup,
			ID:   h.nextID,
			Min:  ref.Restrictions.Min(),
			Max:  ref.Restrictions.Max(),
		})
	}

	var copies []*ir.Field

	for _, f := range source.Fields {
		if f.IsAttribute() && hasAttribute(t, f) {
			continue
		}

		clone := cloneField(f, ref.Restrictions)
		clone.Restrictions.Path = append(append([]ir.PathEntry(nil), prefix...), f.Restrictions.Path...)

		if err := copyInnerTypes(h.c, source, t, clone); err != nil {
			return err
		}

		lineage[clone] = seen
		copies = append(copies, clone)
	}

	t.Fields = common.InsertAt(common.RemoveAt(t.Fields, idx), idx, copies...)

	return nil
}

func hasAttribute(t *ir.Type, f *ir.Field) bool {
	for _, existing := range t.Fields {
		if existing.IsAttribute() && existing.Name == f.Name && existing.Namespace == f.Namespace {
			return true
		}
	}

	return false
}

// RemoveGroups drops group and attribute group Types once every reference
// to them has been flattened.
type RemoveGroups struct {
	c *container.Container
}

// NewRemoveGroups returns the runner.
func NewRemoveGroups(c *container.Container) *RemoveGroups {
	return &RemoveGroups{c: c}
}

// Run implements container.Runner.
func (r *RemoveGroups) Run() error {
	var groups []*ir.Type

	for _, t := range r.c.Iterate() {
		if t.IsGroup() {
			groups = append(groups, t)
		}
	}

	r.c.Remove(groups...)

	return nil
}
