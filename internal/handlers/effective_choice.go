package handlers

import (
	"sort"

	"schema-compiler/internal/ir"
)

// UpdateAttributesEffectiveChoice turns element fields that repeat
// non-adjacently, e.g. a, b, a, into a repeating choice over the elements
// in between, merging the repeated ones.
type UpdateAttributesEffectiveChoice struct{}

// NewUpdateAttributesEffectiveChoice returns the handler.
func NewUpdateAttributesEffectiveChoice() *UpdateAttributesEffectiveChoice {
	return &UpdateAttributesEffectiveChoice{}
}

// Process implements container.Handler.
func (h *UpdateAttributesEffectiveChoice) Process(t *ir.Type) error {
	if t.IsEnumeration() {
		return nil
	}

	ranges := repeatingRanges(t)
	if len(ranges) == 0 {
		return nil
	}

	for _, r := range mergeRanges(ranges) {
		h.mergeRange(t, r)
	}

	return nil
}

type fieldRange struct {
	from, to int
}

func fieldKey(f *ir.Field) string {
	return f.Tag.String() + "\x00" + f.Namespace + "\x00" + f.Name
}

// repeatingRanges returns, per repeated element, the span from its first to
// its last occurrence when other fields sit in between.
func repeatingRanges(t *ir.Type) []fieldRange {
	var keys []string

	positions := make(map[string][]int)

	for i, f := range t.Fields {
		if !f.IsElement() {
			continue
		}

		k := fieldKey(f)
		if _, ok := positions[k]; !ok {
			keys = append(keys, k)
		}

		positions[k] = append(positions[k], i)
	}

	var out []fieldRange

	for _, k := range keys {
		pos := positions[k]
		first, last := pos[0], pos[len(pos)-1]

		if len(pos) > 1 && last-first+1 > len(pos) {
			out = append(out, fieldRange{from: first, to: last})
		}
	}

	return out
}

// mergeRanges joins overlapping ranges; the result runs last to first so
// that merging one range leaves the indices of earlier ones intact.
func mergeRanges(ranges []fieldRange) []fieldRange {
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].from < ranges[j].from })

	merged := []fieldRange{ranges[0]}

	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.from <= last.to {
			last.to = max(last.to, r.to)
			continue
		}

		merged = append(merged, r)
	}

	for i, j := 0, len(merged)-1; i < j; i, j = i+1, j-1 {
		merged[i], merged[j] = merged[j], merged[i]
	}

	return merged
}

func (h *UpdateAttributesEffectiveChoice) mergeRange(t *ir.Type, r fieldRange) {
	choice := choiceID(t, true)

	var (
		members []*ir.Field
		others  []*ir.Field
		byKey   = make(map[string]*ir.Field)
		total   int
	)

	for _, f := range t.Fields[r.from : r.to+1] {
		if !f.IsElement() {
			others = append(others, f)
			continue
		}

		total = ir.AddOccurs(total, f.Restrictions.Max())

		if existing, ok := byKey[fieldKey(f)]; ok {
			existing.Restrictions.SetMin(ir.AddOccurs(existing.Restrictions.Min(), f.Restrictions.Min()))
			existing.Restrictions.SetMax(ir.AddOccurs(existing.Restrictions.Max(), f.Restrictions.Max()))

			for _, ft := range f.Types {
				if !hasType(existing, ft.QName) {
					existing.Types = append(existing.Types, ft)
				}
			}

			continue
		}

		byKey[fieldKey(f)] = f
		members = append(members, f)
	}

	for _, f := range members {
		f.Restrictions.Choice = choice
		f.Restrictions.Sequence = 0
		f.Restrictions.SetMax(total)
	}

	fields := make([]*ir.Field, 0, len(t.Fields))
	fields = append(fields, t.Fields[:r.from]...)
	fields = append(fields, members...)
	fields = append(fields, others...)
	t.Fields = append(fields, t.Fields[r.to+1:]...)
}
