package handlers

import (
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/naming"
)

// priorities lists the conditions used to pick one Type among same-named
// ones: the same tag, a complex type for an element, a non-complex Type,
// anything.
func priorities(tag ir.Tag) []container.Predicate {
	return []container.Predicate{
		func(t *ir.Type) bool { return t.Tag == tag },
		func(t *ir.Type) bool { return tag == ir.TagElement && t.Tag == ir.TagComplexType },
		func(t *ir.Type) bool { return !t.IsComplex() },
		func(*ir.Type) bool { return true },
	}
}

// findByPriority finds the Type named q by priority, processing it first.
func findByPriority(c *container.Container, q ir.QName, tag ir.Tag) (*ir.Type, error) {
	for _, cond := range priorities(tag) {
		found, err := c.Find(q, cond)
		if err != nil || found != nil {
			return found, err
		}
	}

	return nil, nil
}

// lookupByPriority is findByPriority without processing.
func lookupByPriority(c *container.Container, q ir.QName, tag ir.Tag) *ir.Type {
	for _, cond := range priorities(tag) {
		if found := c.Lookup(q, cond); found != nil {
			return found
		}
	}

	return nil
}

// cloneField clones f and merges the facets of restrictions into the copy.
func cloneField(f *ir.Field, restrictions ir.Restrictions) *ir.Field {
	clone := f.Clone()
	clone.Restrictions.Merge(restrictions)

	return clone
}

// copyInnerTypes copies the inner Types of source referenced by forward
// types of f into target and binds those types to the copies. An inner Type
// target already owns under the same name is reused.
func copyInnerTypes(c *container.Container, source, target *ir.Type, f *ir.Field) error {
	for _, ft := range f.AllTypes() {
		if !ft.Forward {
			continue
		}

		if existing := innerByQName(target, ft.QName); existing != nil {
			ft.Reference = existing.ID
			continue
		}

		inner, err := c.FindInner(source, ft.QName)
		if err != nil {
			return err
		}

		clone := inner.Clone()
		target.Inner = append(target.Inner, clone)
		ft.Reference = clone.ID
	}

	return nil
}

// innerByQName returns the direct inner Type of t named q.
func innerByQName(t *ir.Type, q ir.QName) *ir.Type {
	for _, inner := range t.Inner {
		if inner.QName == q {
			return inner
		}
	}

	return nil
}

// copyFields copies the fields of source missing from target, by name, to
// the front of target, merging restrictions into the copies.
func copyFields(c *container.Container, source, target *ir.Type, restrictions ir.Restrictions) error {
	names := make(map[string]bool, len(target.Fields))
	for _, f := range target.Fields {
		names[f.Name] = true
	}

	var copied []*ir.Field

	for _, f := range source.Fields {
		if names[f.Name] {
			continue
		}

		clone := cloneField(f, restrictions)
		if err := copyInnerTypes(c, source, target, clone); err != nil {
			return err
		}

		copied = append(copied, clone)
	}

	target.Fields = append(copied, target.Fields...)

	return nil
}

// choiceID returns an unused choice marker for t: positive markers group
// alternatives, negative markers group repeated elements.
func choiceID(t *ir.Type, negative bool) int {
	id := 0

	for _, f := range t.Fields {
		c := f.Restrictions.Choice
		if negative && c < id {
			id = c
		}

		if !negative && c > id {
			id = c
		}
	}

	if negative {
		return id - 1
	}

	return id + 1
}

// retarget rebinds every FieldType bound to h anywhere in the container to
// the new qualified name.
func retarget(c *container.Container, h ir.Handle, q ir.QName) {
	for _, root := range c.Iterate() {
		root.Walk(func(cur *ir.Type) {
			for _, ft := range cur.FieldTypes() {
				if ft.Reference == h && !ft.Native {
					ft.QName = q
				}
			}

			for _, f := range cur.Fields {
				for _, field := range append([]*ir.Field{f}, f.Choices...) {
					if field.DefaultEnum != nil && field.DefaultEnum.Ref == h {
						field.DefaultEnum.Type = q
					}
				}
			}
		})
	}
}

// missingReference builds the fatal error for a required reference that
// cannot be found.
func missingReference(c *container.Container, q ir.QName, owner *ir.Type, what string) error {
	return diagnostic.NewCompileError(diagnostic.ErrMissingReference,
		what+" referenced by "+owner.QName.String()+didYouMean(c, q), q.String())
}

// didYouMean names the closest root in q's namespace, or returns "".
func didYouMean(c *container.Container, q ir.QName) string {
	var locals []string

	for _, other := range c.QNames() {
		if other.Namespace == q.Namespace {
			locals = append(locals, other.Local)
		}
	}

	if s := naming.Suggest(q.Local, locals); s != "" {
		return "; did you mean " + ir.QName{Namespace: q.Namespace, Local: s}.String() + "?"
	}

	return ""
}
