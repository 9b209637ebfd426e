package handlers

import (
	"strconv"

	"schema-compiler/internal/container"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/naming"
)

// valueFieldName names the text field of a synthesised wrapper Type.
const valueFieldName = "value"

// DisambiguateChoices wraps the alternatives of a compound field that
// resolve to the same target, so each one stays distinguishable.
type DisambiguateChoices struct {
	c *container.Container
}

// NewDisambiguateChoices returns the handler.
func NewDisambiguateChoices(c *container.Container) *DisambiguateChoices {
	return &DisambiguateChoices{c: c}
}

// Process implements container.Handler.
func (h *DisambiguateChoices) Process(t *ir.Type) error {
	for _, f := range t.Fields {
		if f.IsChoice() && len(f.Choices) > 1 {
			h.process(t, f)
		}
	}

	return nil
}

func (h *DisambiguateChoices) process(t *ir.Type, f *ir.Field) {
	counts := make(map[string]int, len(f.Choices))
	for _, choice := range f.Choices {
		for _, key := range choiceKeys(choice) {
			counts[key]++
		}
	}

	for _, choice := range f.Choices {
		ambiguous := false

		for _, key := range choiceKeys(choice) {
			if counts[key] > 1 {
				ambiguous = true
				break
			}
		}

		if ambiguous {
			h.wrap(t, choice)
		}
	}
}

// choiceKeys returns one key per candidate type: the value kind for natives,
// the bound Type otherwise.
func choiceKeys(choice *ir.Field) []string {
	keys := make([]string, 0, len(choice.Types))

	for _, ft := range choice.Types {
		switch {
		case ft.Native:
			keys = append(keys, "native:"+ft.Kind().String())
		case !ft.Reference.IsZero():
			keys = append(keys, "ref:"+strconv.FormatInt(int64(ft.Reference), 10))
		default:
			keys = append(keys, "qname:"+ft.QName.String())
		}
	}

	return keys
}

func (h *DisambiguateChoices) wrap(t *ir.Type, choice *ir.Field) {
	ns := choice.Namespace
	if ns == "" {
		ns = t.Namespace()
	}

	wrapper := &ir.Type{
		QName:    ir.NewQName(ns, choice.Name),
		Tag:      ir.TagElement,
		Location: t.Location,
		Status:   ir.StatusCleaned,
		Help:     choice.Help,
		NSMap:    t.NSMap,
	}

	var (
		text []*ir.FieldType
		deps []*ir.FieldType
	)

	for _, ft := range choice.Types {
		if ft.Native {
			text = append(text, ft.Clone())
		} else {
			deps = append(deps, ft.Clone())
		}
	}

	if len(text) > 0 {
		value := &ir.Field{
			Tag:          ir.TagExtension,
			Name:         valueFieldName,
			Types:        text,
			Restrictions: choice.Restrictions.Clone(),
			Default:      choice.Default,
			Fixed:        choice.Fixed,
		}
		value.Restrictions.MinOccurs = nil
		value.Restrictions.MaxOccurs = nil
		wrapper.Fields = append(wrapper.Fields, value)
	}

	for _, ft := range deps {
		wrapper.Extensions = append(wrapper.Extensions, &ir.Extension{Tag: ir.TagExtension, Type: ft})
	}

	choice.Default = ""
	choice.Fixed = false
	choice.DefaultEnum = nil

	if h.c.Config().Output.UnnestClasses {
		wrapper.QName = wrapper.QName.WithLocal(t.Name() + "_" + choice.Name)
		wrapper.QName = h.uniqueRoot(wrapper.QName)
		wrapper.LocalType = true
		h.c.Add(wrapper)

		choice.Types = []*ir.FieldType{{QName: wrapper.QName, Reference: wrapper.ID}}

		return
	}

	wrapper.QName = uniqueInner(t, wrapper.QName)
	ir.AssignHandles(wrapper)
	t.Inner = append(t.Inner, wrapper)

	choice.Types = []*ir.FieldType{ir.NewForward(wrapper.QName, wrapper.ID)}
}

func (h *DisambiguateChoices) uniqueRoot(q ir.QName) ir.QName {
	if h.c.Lookup(q) == nil {
		return q
	}

	reserved := make(map[string]bool)
	for _, other := range h.c.Iterate() {
		if other.Namespace() == q.Namespace {
			reserved[naming.Key(other.Name())] = true
		}
	}

	return q.WithLocal(naming.NextFree(q.Local, reserved))
}

func uniqueInner(t *ir.Type, q ir.QName) ir.QName {
	reserved := make(map[string]bool, len(t.Inner))
	for _, inner := range t.Inner {
		reserved[naming.Key(inner.Name())] = true
	}

	return q.WithLocal(naming.Unique(q.Local, reserved))
}
