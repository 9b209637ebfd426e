package handlers

import (
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

// AddAttributeSubstitutions adds, next to every element field, choice
// siblings for the members of the substitution group headed by the
// field's type.
type AddAttributeSubstitutions struct {
	c *container.Container
	// substitutions maps a head qname to reference fields of its members.
	substitutions map[ir.QName][]*ir.Field
}

// NewAddAttributeSubstitutions returns the handler.
func NewAddAttributeSubstitutions(c *container.Container) *AddAttributeSubstitutions {
	return &AddAttributeSubstitutions{c: c}
}

// Prepare implements container.Preparer.
func (h *AddAttributeSubstitutions) Prepare(c *container.Container) error {
	h.substitutions = make(map[ir.QName][]*ir.Field)

	for _, t := range c.Iterate() {
		for _, head := range t.Substitutions {
			if c.Lookup(head) == nil {
				c.Warn(diagnostic.CodeMissingSubstitution, t.QName.String(), "",
					"substitution group head %s not found%s", head, didYouMean(c, head))

				continue
			}

			h.substitutions[head] = append(h.substitutions[head], &ir.Field{
				Tag:       ir.TagElement,
				Name:      t.Name(),
				LocalName: t.Name(),
				Namespace: t.Namespace(),
				Types:     []*ir.FieldType{ir.NewDependency(t.QName)},
			})
		}
	}

	return nil
}

// Process implements container.Handler.
func (h *AddAttributeSubstitutions) Process(t *ir.Type) error {
	// lineage holds the heads a substitute was derived from.
	lineage := make(map[*ir.Field]map[ir.QName]bool)

	// Substitutes are appended right after their field and visited in
	// turn, so members that head groups themselves expand too.
	for i := 0; i < len(t.Fields); i++ {
		f := t.Fields[i]
		if !f.IsElement() {
			continue
		}

		insert := i + 1

		for _, ft := range f.Types {
			if ft.Substituted || !ft.IsDependency() {
				continue
			}

			ft.Substituted = true

			members := h.substitutions[ft.QName]
			if len(members) == 0 {
				continue
			}

			if f.Restrictions.Choice == 0 {
				f.Restrictions.Choice = choiceID(t, false)
			}

			f.SubstitutionGroup = ft.QName.Local

			for _, member := range members {
				q := member.Types[0].QName
				if lineage[f][q] || q == ft.QName {
					h.c.Warn(diagnostic.CodeSubstitutionCycle, t.QName.String(), f.Name,
						"substitution group cycle through %s", q)

					continue
				}

				clone := member.Clone()
				clone.Index = f.Index
				clone.SubstitutionGroup = ft.QName.Local
				clone.Restrictions.Choice = f.Restrictions.Choice
				clone.Restrictions.Path = append([]ir.PathEntry(nil), f.Restrictions.Path...)
				clone.Restrictions.SetMin(0)
				clone.Restrictions.SetMax(f.Restrictions.Max())

				seen := map[ir.QName]bool{ft.QName: true}
				for k := range lineage[f] {
					seen[k] = true
				}

				lineage[clone] = seen

				t.Fields = append(t.Fields[:insert], append([]*ir.Field{clone}, t.Fields[insert:]...)...)
				insert++
			}
		}
	}

	return nil
}
