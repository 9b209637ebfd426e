package handlers

import (
	"schema-compiler/internal/common"
	"schema-compiler/internal/config"
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

// UnwrapWrappedLists retypes element fields whose type only wraps one
// repeating element, e.g. <items><item/>...</items>, to that element and
// records the wrapper name on the field.
type UnwrapWrappedLists struct {
	c *container.Container
}

// NewUnwrapWrappedLists returns the handler.
func NewUnwrapWrappedLists(c *container.Container) *UnwrapWrappedLists {
	return &UnwrapWrappedLists{c: c}
}

// Process implements container.Handler.
func (h *UnwrapWrappedLists) Process(t *ir.Type) error {
	if h.c.Config().Output.WrappedLists != config.WrappedListsUnwrap {
		return nil
	}

	for _, f := range t.Fields {
		if !f.IsElement() || f.IsList() || f.Wrapper != "" || len(f.Types) != 1 {
			continue
		}

		ft := f.Types[0]
		if ft.Native || ft.Reference.IsZero() {
			continue
		}

		var (
			source *ir.Type
			err    error
		)

		if ft.Forward {
			source = innerByQName(t, ft.QName)
		} else {
			ref := ft.Reference
			source, err = h.c.Find(ft.QName, func(s *ir.Type) bool { return s.ID == ref })
		}

		if err != nil {
			return err
		}

		if source == nil || source == t || !isWrapper(source) {
			continue
		}

		if err := h.unwrap(t, f, source); err != nil {
			return err
		}
	}

	return nil
}

// isWrapper reports whether t holds nothing but one repeating element.
func isWrapper(t *ir.Type) bool {
	if !t.IsComplex() || t.Mixed || len(t.Extensions) > 0 || len(t.Fields) != 1 {
		return false
	}

	item := t.Fields[0]

	return item.IsElement() && item.IsList() && item.Restrictions.Choice == 0
}

func (h *UnwrapWrappedLists) unwrap(t *ir.Type, f *ir.Field, wrapper *ir.Type) error {
	item := wrapper.Fields[0]
	clone := item.Clone()

	if err := copyInnerTypes(h.c, wrapper, t, clone); err != nil {
		return err
	}

	wasForward := f.Types[0].Forward
	wrapperID := f.Types[0].Reference

	f.Wrapper = f.Name
	f.Name = clone.Name
	f.LocalName = clone.Name
	f.Namespace = clone.Namespace
	f.Types = clone.Types
	f.Restrictions.MinOccurs = clone.Restrictions.MinOccurs
	f.Restrictions.MaxOccurs = clone.Restrictions.MaxOccurs
	f.Restrictions.Merge(clone.Restrictions)

	if wasForward {
		for i, inner := range t.Inner {
			if inner.ID == wrapperID {
				t.Inner = common.RemoveAt(t.Inner, i)
				break
			}
		}
	}

	h.c.Info(diagnostic.CodeUnwrappedList, t.QName.String(), f.Name,
		"unwrapped list wrapper %s", f.Wrapper)

	return nil
}
