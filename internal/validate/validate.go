// Package validate prepares a freshly loaded container for the pipeline:
// it drops Types with dangling bases, resolves duplicate definitions and
// folds trivial element aliases into their complex types.
package validate

import (
	"fmt"

	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

// Validator runs once, before any pipeline step.
type Validator struct {
	c *container.Container
}

// New returns a Validator over c.
func New(c *container.Container) *Validator {
	return &Validator{c: c}
}

// Run validates every qname bucket.
func (v *Validator) Run() error {
	for _, q := range v.c.QNames() {
		bucket := v.c.Bucket(q)
		if len(bucket) < 2 {
			continue
		}

		bucket = v.removeInvalid(bucket)
		if len(bucket) < 2 {
			continue
		}

		bucket = v.resolveDuplicates(bucket)
		v.mergeGlobalTypes(bucket)
	}

	return nil
}

// removeInvalid drops Types extending a non-native qname that is not in the
// container.
func (v *Validator) removeInvalid(bucket []*ir.Type) []*ir.Type {
	var kept, dropped []*ir.Type

	for _, t := range bucket {
		if v.hasDanglingBase(t) {
			dropped = append(dropped, t)
			continue
		}

		kept = append(kept, t)
	}

	for _, t := range dropped {
		v.c.Warn(diagnostic.CodeDroppedInvalidType, t.QName.String(), "",
			"dropped duplicate definition from %s with unresolved base", location(t))
	}

	v.c.Remove(dropped...)

	return kept
}

func (v *Validator) hasDanglingBase(t *ir.Type) bool {
	for _, ext := range t.Extensions {
		if ext.Type.Native || ir.IsNative(ext.Type.QName) {
			continue
		}

		if v.c.Lookup(ext.Type.QName) == nil {
			return true
		}
	}

	return false
}

// resolveDuplicates keeps one Type per tag and returns the survivors.
func (v *Validator) resolveDuplicates(bucket []*ir.Type) []*ir.Type {
	var (
		tags   []ir.Tag
		byTag  = make(map[ir.Tag][]*ir.Type)
		losers []*ir.Type
	)

	for _, t := range bucket {
		if _, ok := byTag[t.Tag]; !ok {
			tags = append(tags, t.Tag)
		}

		byTag[t.Tag] = append(byTag[t.Tag], t)
	}

	var kept []*ir.Type

	for _, tag := range tags {
		group := byTag[tag]
		if len(group) == 1 {
			kept = append(kept, group[0])
			continue
		}

		winner := selectWinner(group)
		if winner < 0 {
			winner = len(group) - 1
			v.c.Warn(diagnostic.CodeDuplicateType, group[winner].QName.String(), "",
				"%d %s definitions, keeping the last one from %s", len(group), tag, location(group[winner]))
		}

		w := group[winner]
		for i, t := range group {
			if i == winner {
				continue
			}

			if w.Container == ir.TagRedefine {
				mergeRedefined(w, t)
			}

			losers = append(losers, t)
		}

		kept = append(kept, w)
	}

	v.c.Remove(losers...)

	// Keep container order.
	var ordered []*ir.Type

	for _, t := range bucket {
		for _, k := range kept {
			if k == t {
				ordered = append(ordered, t)
			}
		}
	}

	return ordered
}

// selectWinner returns the index of the first override, else the first
// redefine, else -1.
func selectWinner(group []*ir.Type) int {
	for _, container := range []ir.Tag{ir.TagOverride, ir.TagRedefine} {
		for i, t := range group {
			if t.Container == container {
				return i
			}
		}
	}

	return -1
}

// mergeRedefined splices the original definition into a redefine that
// refers to its own name, as an extension base or as a group reference.
func mergeRedefined(winner, original *ir.Type) {
	var extensions []*ir.Extension

	for _, ext := range winner.Extensions {
		if ext.Type.QName != winner.QName {
			extensions = append(extensions, ext)
			continue
		}

		for _, base := range original.Extensions {
			extensions = append(extensions, base.Clone())
		}

		winner.Fields = append(cloneFields(original.Fields), winner.Fields...)
	}

	winner.Extensions = extensions

	var fields []*ir.Field

	for _, f := range winner.Fields {
		if !f.IsGroup() || !refersTo(f, winner.QName) {
			fields = append(fields, f)
			continue
		}

		fields = append(fields, cloneFields(original.Fields)...)
	}

	winner.Fields = fields
}

func refersTo(f *ir.Field, q ir.QName) bool {
	for _, ft := range f.Types {
		if ft.QName == q {
			return true
		}
	}

	return false
}

func cloneFields(fields []*ir.Field) []*ir.Field {
	out := make([]*ir.Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}

	return out
}

// mergeGlobalTypes folds an element that only aliases the co-named complex
// type into that complex type.
func (v *Validator) mergeGlobalTypes(bucket []*ir.Type) {
	var el, ct *ir.Type

	for _, t := range bucket {
		switch {
		case t.Tag == ir.TagElement && el == nil:
			el = t
		case t.Tag == ir.TagComplexType && ct == nil:
			ct = t
		}
	}

	if el == nil || ct == nil || len(el.Fields) > 0 || len(el.Extensions) != 1 {
		return
	}

	if el.Extensions[0].Type.QName != ct.QName {
		return
	}

	ct.Tag = ir.TagElement
	ct.Nillable = ct.Nillable || el.Nillable
	ct.Abstract = el.Abstract

	if el.Help != "" {
		ct.Help = el.Help
	}

	ct.Substitutions = append(ct.Substitutions, el.Substitutions...)

	v.c.Info(diagnostic.CodeMergedGlobalType, ct.QName.String(), "",
		"merged element into its complex type")
	v.c.Remove(el)
}

func location(t *ir.Type) string {
	if t.Location == "" {
		return "unknown location"
	}

	return fmt.Sprintf("%q", t.Location)
}
