package handlers

import (
	"schema-compiler/internal/common"
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

// FlattenClassExtensions decides, for every base of a Type, whether the base
// is dropped, copied into the Type or kept as inheritance.
type FlattenClassExtensions struct {
	c *container.Container
}

// NewFlattenClassExtensions returns the handler.
func NewFlattenClassExtensions(c *container.Container) *FlattenClassExtensions {
	return &FlattenClassExtensions{c: c}
}

// Process implements container.Handler.
func (h *FlattenClassExtensions) Process(t *ir.Type) error {
	done := make(map[*ir.Extension]bool)

	// Flattening may append the bases of the flattened source.
	for {
		var next *ir.Extension

		for _, ext := range t.Extensions {
			if !done[ext] {
				next = ext
				break
			}
		}

		if next == nil {
			return nil
		}

		done[next] = true

		if err := h.processExtension(t, next); err != nil {
			return err
		}
	}
}

func (h *FlattenClassExtensions) processExtension(t *ir.Type, ext *ir.Extension) error {
	if ext.Type.Native || ir.IsNative(ext.Type.QName) {
		processNativeExtension(t, ext)
		return nil
	}

	return h.processDependencyExtension(t, ext)
}

func processNativeExtension(t *ir.Type, ext *ir.Extension) {
	removeExtension(t, ext)

	if t.IsEnumeration() {
		replaceMemberTypes(t, ext.Type)
		return
	}

	addValueField(t, ext, ext.Type.Clone())
}

func (h *FlattenClassExtensions) processDependencyExtension(t *ir.Type, ext *ir.Extension) error {
	q := ext.Type.QName

	if h.leadsBackTo(q, t) {
		removeExtension(t, ext)
		h.c.Warn(diagnostic.CodeRemovedCircularBase, t.QName.String(), "",
			"removed circular base %s", q)

		return nil
	}

	source, err := findByPriority(h.c, q, ir.TagComplexType)
	if err != nil {
		return err
	}

	switch {
	case source == nil:
		removeExtension(t, ext)
		h.c.Warn(diagnostic.CodeMissingExtension, t.QName.String(), "",
			"missing extension type %s%s", q, didYouMean(h.c, q))
	case source.IsEnumeration():
		processEnumExtension(source, t, ext)
	case !source.IsComplex():
		if t.IsEnumeration() {
			removeExtension(t, ext)
			replaceMemberTypes(t, ext.Type)

			return nil
		}

		return h.flatten(source, t, ext)
	case shouldFlatten(source, t):
		return h.flatten(source, t, ext)
	default:
		switch compareFields(source, t) {
		case removeBase:
			removeExtension(t, ext)
		case flattenBase:
			return h.flatten(source, t, ext)
		default:
			ext.Type.Reference = source.ID
		}
	}

	return nil
}

// leadsBackTo reports whether following the bases of q, without processing
// anything, reaches t.
func (h *FlattenClassExtensions) leadsBackTo(q ir.QName, t *ir.Type) bool {
	seen := make(map[ir.QName]bool)
	queue := []ir.QName{q}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if seen[cur] {
			continue
		}

		seen[cur] = true

		candidate := lookupByPriority(h.c, cur, ir.TagComplexType)
		if candidate == nil {
			continue
		}

		if candidate == t {
			return true
		}

		for _, ext := range candidate.Extensions {
			if !ext.Type.Native {
				queue = append(queue, ext.Type.QName)
			}
		}
	}

	return false
}

func (h *FlattenClassExtensions) flatten(source, t *ir.Type, ext *ir.Extension) error {
	removeExtension(t, ext)

	if err := copyFields(h.c, source, t, ext.Restrictions); err != nil {
		return err
	}

	for _, base := range source.Extensions {
		if !hasExtension(t, base.Type.QName) {
			clone := base.Clone()
			clone.Restrictions.Merge(ext.Restrictions)
			t.Extensions = append(t.Extensions, clone)
		}
	}

	t.Mixed = t.Mixed || source.Mixed

	return nil
}

func processEnumExtension(source, t *ir.Type, ext *ir.Extension) {
	removeExtension(t, ext)

	switch {
	case t.IsEnumeration():
		if ext.Tag == ir.TagExtension {
			mergeMembers(source, t)
		}

		for _, f := range t.Fields {
			if len(f.Types) == 0 && len(source.Fields) > 0 {
				f.Types = cloneTypes(source.Fields[0].Types)
			}
		}
	case len(t.Fields) == 0:
		mergeMembers(source, t)
	default:
		ft := ir.NewDependency(source.QName)
		ft.Reference = source.ID
		value := addValueField(t, ext, ft)

		if ext.Tag == ir.TagRestriction && len(source.Fields) == 1 {
			value.Default = source.Fields[0].Default
			value.Fixed = true
		}
	}
}

func mergeMembers(source, t *ir.Type) {
	names := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		names[f.Name] = true
	}

	for _, f := range source.Fields {
		if f.IsEnumeration() && !names[f.Name] {
			t.Fields = append(t.Fields, f.Clone())
		}
	}
}

// addValueField adds ft to the text field of t, creating a "value" field
// when t has none, and returns that field.
func addValueField(t *ir.Type, ext *ir.Extension, ft *ir.FieldType) *ir.Field {
	for _, f := range t.Fields {
		if f.IsText() {
			if !hasType(f, ft.QName) {
				f.Types = append(f.Types, ft)
			}

			f.Restrictions.Merge(ext.Restrictions)

			return f
		}
	}

	tag := ext.Tag
	if tag != ir.TagExtension {
		tag = ir.TagRestriction
	}

	restrictions := ext.Restrictions.Clone()
	restrictions.MinOccurs, restrictions.MaxOccurs = nil, nil

	value := &ir.Field{
		Tag:          tag,
		Name:         valueFieldName,
		Types:        []*ir.FieldType{ft},
		Restrictions: restrictions,
		Default:      t.Default,
		Fixed:        t.Fixed,
	}
	t.Fields = append([]*ir.Field{value}, t.Fields...)

	return value
}

func replaceMemberTypes(t *ir.Type, ft *ir.FieldType) {
	for _, f := range t.Fields {
		f.Types = []*ir.FieldType{ft.Clone()}
	}
}

// shouldFlatten reports whether a complex base must be copied because its
// layout cannot be expressed as inheritance.
func shouldFlatten(source, t *ir.Type) bool {
	return t.IsSimpleType() ||
		t.HasSuffixField() ||
		(source.HasSuffixField() && len(t.Fields) > 0) ||
		outOfOrder(source, t)
}

// outOfOrder reports whether fields t shares with source appear in a
// different order.
func outOfOrder(source, t *ir.Type) bool {
	pos := make(map[string]int, len(source.Fields))
	for i, f := range source.Fields {
		pos[f.Name] = i
	}

	last := -1

	for _, f := range t.Fields {
		i, ok := pos[f.Name]
		if !ok {
			continue
		}

		if i < last {
			return true
		}

		last = i
	}

	return false
}

type baseAction int

const (
	keepBase baseAction = iota
	removeBase
	flattenBase
)

// compareFields keeps the base when t shares no field with it, drops it when
// t restates every field and copies it on a partial overlap.
func compareFields(source, t *ir.Type) baseAction {
	if len(source.Fields) == 0 {
		return keepBase
	}

	names := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		names[f.Name] = true
	}

	missing := 0

	for _, f := range source.Fields {
		if !names[f.Name] {
			missing++
		}
	}

	switch missing {
	case 0:
		return removeBase
	case len(source.Fields):
		return keepBase
	default:
		return flattenBase
	}
}

func removeExtension(t *ir.Type, ext *ir.Extension) {
	for i, cur := range t.Extensions {
		if cur == ext {
			t.Extensions = common.RemoveAt(t.Extensions, i)
			return
		}
	}
}

func hasExtension(t *ir.Type, q ir.QName) bool {
	for _, ext := range t.Extensions {
		if ext.Type.QName == q {
			return true
		}
	}

	return false
}

func hasType(f *ir.Field, q ir.QName) bool {
	for _, ft := range f.Types {
		if ft.QName == q {
			return true
		}
	}

	return false
}

func cloneTypes(types []*ir.FieldType) []*ir.FieldType {
	out := make([]*ir.FieldType, len(types))
	for i, ft := range types {
		out[i] = ft.Clone()
	}

	return out
}
