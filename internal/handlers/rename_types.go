package handlers

import (
	"schema-compiler/internal/common"
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/naming"
)

// RenameDuplicateClasses makes root Type names unique within the output
// module each Type is designated to: by local name for the single and
// cluster strategies, per namespace or file module otherwise. Namespaces
// that map to the same module share one scope. Every FieldType bound to a
// renamed Type follows the new name.
type RenameDuplicateClasses struct {
	c *container.Container
}

// NewRenameDuplicateClasses returns the runner.
func NewRenameDuplicateClasses(c *container.Container) *RenameDuplicateClasses {
	return &RenameDuplicateClasses{c: c}
}

// Run implements container.Runner.
func (r *RenameDuplicateClasses) Run() error {
	types := r.c.Iterate()
	scopes := moduleScopes(types, r.c.Config().Output)
	key := func(t *ir.Type) string {
		return scopes[t] + "\x00" + naming.Key(t.Name())
	}

	reserved := make(map[string]map[string]bool)

	for _, t := range types {
		if reserved[scopes[t]] == nil {
			reserved[scopes[t]] = make(map[string]bool)
		}

		reserved[scopes[t]][naming.Key(t.Name())] = true
	}

	keys, groups := common.GroupBy(types, key)
	for _, k := range keys {
		if group := groups[k]; len(group) > 1 {
			r.renameGroup(group, reserved[scopes[group[0]]])
		}
	}

	return nil
}

func (r *RenameDuplicateClasses) renameGroup(group []*ir.Type, reserved map[string]bool) {
	if len(group) == 2 && group[0].Tag != group[1].Tag {
		target := group[1]
		if target.IsElement() {
			target = group[0]
		}

		name := target.Name() + target.Tag.Suffix()
		if !reserved[naming.Key(name)] {
			reserved[naming.Key(name)] = true
			r.rename(target, name)

			return
		}
	}

	keep := group[0]

	for _, t := range group {
		if t.IsElement() {
			keep = t
			break
		}
	}

	for _, t := range group {
		if t != keep {
			r.rename(t, naming.NextFree(t.Name(), reserved))
		}
	}
}

func (r *RenameDuplicateClasses) rename(t *ir.Type, name string) {
	old := t.QName
	t.QName = old.WithLocal(name)

	r.c.Reset(t, old)
	retarget(r.c, t.ID, t.QName)

	r.c.Info(diagnostic.CodeRenamedType, old.String(), "",
		"renamed type %s to %s", old, t.QName)
}
