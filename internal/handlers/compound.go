package handlers

import (
	"strings"

	"schema-compiler/internal/container"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/naming"
)

// CreateCompoundFields merges the fields of one choice into a single
// polymorphic field when enabled.
type CreateCompoundFields struct {
	c *container.Container
}

// NewCreateCompoundFields returns the handler.
func NewCreateCompoundFields(c *container.Container) *CreateCompoundFields {
	return &CreateCompoundFields{c: c}
}

// Process implements container.Handler.
func (h *CreateCompoundFields) Process(t *ir.Type) error {
	if !h.c.Config().CompoundFields.Enabled {
		return nil
	}

	var (
		order  []int
		groups = make(map[int][]*ir.Field)
	)

	for _, f := range t.Fields {
		choice := f.Restrictions.Choice
		if choice == 0 || f.IsAttribute() || f.IsChoice() {
			continue
		}

		if _, ok := groups[choice]; !ok {
			order = append(order, choice)
		}

		groups[choice] = append(groups[choice], f)
	}

	for _, choice := range order {
		if members := groups[choice]; len(members) > 1 {
			h.group(t, choice, members)
		}
	}

	return nil
}

func (h *CreateCompoundFields) group(t *ir.Type, choice int, members []*ir.Field) {
	var (
		names     []string
		choices   []*ir.Field
		minOccurs int
		maxOccurs int
	)

	for _, f := range members {
		names = append(names, memberName(f))
		minOccurs = ir.AddOccurs(minOccurs, f.Restrictions.Min())
		maxOccurs = max(maxOccurs, f.Restrictions.Max())
		choices = append(choices, buildChoice(f))
	}

	if choice > 0 {
		if m, ok := choiceMin(members[0].Restrictions.Path, choice); ok {
			minOccurs = m
		}
	}

	compound := &ir.Field{
		Tag:          ir.TagChoice,
		Name:         h.chooseName(t, members, names),
		Index:        members[0].Index,
		Types:        []*ir.FieldType{ir.NewNative(ir.XSAnyType)},
		Choices:      choices,
		Restrictions: ir.Occurs(minOccurs, maxOccurs),
	}
	compound.Restrictions.Sequence = members[0].Restrictions.Sequence

	fields := make([]*ir.Field, 0, len(t.Fields)-len(members)+1)

	for _, f := range t.Fields {
		switch {
		case f == members[0]:
			fields = append(fields, compound)
		case containsField(members, f):
		default:
			fields = append(fields, f)
		}
	}

	t.Fields = fields
}

func memberName(f *ir.Field) string {
	if f.LocalName != "" {
		return f.LocalName
	}

	return f.Name
}

// buildChoice turns a member field into a choice entry; structural markers
// belong to the compound field now.
func buildChoice(f *ir.Field) *ir.Field {
	choice := f.Clone()
	choice.Name = memberName(f)
	choice.Restrictions.Choice = 0
	choice.Restrictions.Sequence = 0
	choice.Restrictions.Group = 0
	choice.Restrictions.Path = nil

	return choice
}

func (h *CreateCompoundFields) chooseName(t *ir.Type, members []*ir.Field, names []string) string {
	cfg := h.c.Config().CompoundFields

	reserved := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if !containsField(members, f) {
			reserved[naming.Key(f.Name)] = true
		}
	}

	for _, f := range h.inheritedFields(t) {
		reserved[naming.Key(f.Name)] = true
	}

	var name string

	switch group := sharedSubstitutionGroup(members); {
	case cfg.ForceDefaultName || len(names) > cfg.MaxNameParts:
		name = cfg.DefaultName
	case cfg.UseSubstitutionGroups && group != "":
		name = group
	default:
		name = strings.Join(names, "_Or_")
	}

	return naming.Unique(name, reserved)
}

func (h *CreateCompoundFields) inheritedFields(t *ir.Type) []*ir.Field {
	var out []*ir.Field

	for _, ext := range t.Extensions {
		if ext.Type.Reference.IsZero() {
			continue
		}

		if base := h.c.FindByID(ext.Type.Reference); base != nil {
			out = append(out, base.Fields...)
		}
	}

	return out
}

func sharedSubstitutionGroup(members []*ir.Field) string {
	group := members[0].SubstitutionGroup

	for _, f := range members[1:] {
		if f.SubstitutionGroup != group {
			return ""
		}
	}

	return group
}

func containsField(fields []*ir.Field, f *ir.Field) bool {
	for _, cur := range fields {
		if cur == f {
			return true
		}
	}

	return false
}
