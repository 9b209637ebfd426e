package handlers

import (
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/naming"
)

// RenameDuplicateAttributes makes the field names of every Type unique
// after case folding and punctuation removal.
type RenameDuplicateAttributes struct {
	c *container.Container
}

// NewRenameDuplicateAttributes returns the handler.
func NewRenameDuplicateAttributes(c *container.Container) *RenameDuplicateAttributes {
	return &RenameDuplicateAttributes{c: c}
}

// Process implements container.Handler.
func (h *RenameDuplicateAttributes) Process(t *ir.Type) error {
	renameFields(t.Fields, func(f *ir.Field, old string) {
		h.c.Info(diagnostic.CodeRenamedField, t.QName.String(), old, "renamed field to %s", f.Name)
	})

	for _, f := range t.Fields {
		if len(f.Choices) > 1 {
			renameFields(f.Choices, nil)
		}
	}

	return nil
}

// renameFields resolves name conflicts among fields. Two colliding fields
// get a targeted rename; larger groups get numeric suffixes.
func renameFields(fields []*ir.Field, renamed func(f *ir.Field, old string)) {
	reserved := make(map[string]bool, len(fields))
	for _, f := range fields {
		reserved[naming.Key(f.Name)] = true
	}

	var keys []string

	groups := make(map[string][]*ir.Field)

	for _, f := range fields {
		k := naming.Key(f.Name)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}

		groups[k] = append(groups[k], f)
	}

	for _, k := range keys {
		group := groups[k]
		if len(group) < 2 {
			continue
		}

		if len(group) == 2 && renamePair(group[0], group[1], reserved, renamed) {
			continue
		}

		for _, f := range group[1:] {
			rename(f, naming.NextFree(f.Name, reserved), renamed)
		}
	}
}

// renamePair renames one of two colliding fields by tag or by namespace.
// It reports false when neither applies.
func renamePair(a, b *ir.Field, reserved map[string]bool, renamed func(*ir.Field, string)) bool {
	switch {
	case a.Tag != b.Tag:
		target := b
		if a.IsAttribute() && !b.IsAttribute() {
			target = a
		}

		name := target.Name + "_" + target.Tag.Suffix()
		if reserved[naming.Key(name)] {
			return false
		}

		reserved[naming.Key(name)] = true
		rename(target, name, renamed)

		return true
	case a.Namespace != b.Namespace && a.Namespace != "" && b.Namespace != "":
		segments := naming.NamespaceSegments(b.Namespace)
		if len(segments) == 0 {
			return false
		}

		name := segments[len(segments)-1] + "_" + b.Name

		if reserved[naming.Key(name)] {
			return false
		}

		reserved[naming.Key(name)] = true
		rename(b, name, renamed)

		return true
	default:
		return false
	}
}

func rename(f *ir.Field, name string, renamed func(*ir.Field, string)) {
	old := f.Name
	if f.LocalName == "" {
		f.LocalName = old
	}

	f.Name = name

	if renamed != nil {
		renamed(f, old)
	}
}
