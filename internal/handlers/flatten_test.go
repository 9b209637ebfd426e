package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-compiler/internal/config"
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

func groupRef(tag ir.Tag, local string) *ir.Field {
	return &ir.Field{Tag: tag, Name: local, Types: []*ir.FieldType{dep(local)}}
}

func TestFlattenAttributeGroups(t *testing.T) {
	group := newType("G", ir.TagGroup, element("a", xs("string")), element("b", xs("int")))
	attrs := newType("AG", ir.TagAttributeGroup, attribute("id", xs("ID")), attribute("lang", xs("language")))
	order := newType("Order", ir.TagComplexType,
		element("x", xs("string")),
		groupRef(ir.TagGroup, "G"),
		attribute("lang", xs("language")),
		groupRef(ir.TagAttributeGroup, "AG"),
	)

	c := newContainer(config.DefaultConfig(), group, attrs, order)
	runStep(t, c, NewFlattenAttributeGroups(c))

	assert.Equal(t, []string{"x", "a", "b", "lang", "id"}, fieldNames(order))
	assert.NotSame(t, group.Fields[0], order.Fields[1])

	path := order.Fields[1].Restrictions.Path
	require.Len(t, path, 1)
	assert.Equal(t, ir.PathGroup, path[0].Kind)
	assert.Greater(t, path[0].ID, groupPathBase)
	assert.Equal(t, path, order.Fields[2].Restrictions.Path)
	assert.Empty(t, order.Fields[4].Restrictions.Path)

	require.NoError(t, NewRemoveGroups(c).Run())
	assert.Equal(t, []*ir.Type{order}, c.Iterate())
}

func TestFlattenAttributeGroups_SelfReference(t *testing.T) {
	group := newType("G", ir.TagGroup, element("a", xs("string")), groupRef(ir.TagGroup, "G"))
	order := newType("Order", ir.TagComplexType, groupRef(ir.TagGroup, "G"))

	c := newContainer(config.DefaultConfig(), group, order)
	runStep(t, c, NewFlattenAttributeGroups(c))

	assert.Equal(t, []string{"a"}, fieldNames(group))
	assert.Equal(t, []string{"a"}, fieldNames(order))
}

func TestFlattenAttributeGroups_Missing(t *testing.T) {
	order := newType("Order", ir.TagComplexType, groupRef(ir.TagGroup, "Nope"))
	c := newContainer(config.DefaultConfig(), order)

	err := c.RunStep(context.Background(), &container.Step{
		Name:     "ungroup",
		Busy:     ir.StatusUngrouping,
		Done:     ir.StatusUngrouped,
		Handlers: []container.Handler{NewFlattenAttributeGroups(c)},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostic.ErrMissingReference))
	assert.True(t, errors.Is(err, diagnostic.ErrCompile))
	assert.Contains(t, err.Error(), "{urn:test}Nope")
}

func TestCalculateAttributePaths(t *testing.T) {
	inChoice := element("a", xs("string"))
	inChoice.Restrictions.Path = []ir.PathEntry{
		{Kind: ir.PathSequence, ID: 1, Min: 1, Max: 1},
		{Kind: ir.PathChoice, ID: 2, Min: 1, Max: 3},
		{Kind: ir.PathElement, Min: 1, Max: 2},
	}

	inGroup := element("b", xs("string"))
	inGroup.Restrictions.Path = []ir.PathEntry{
		{Kind: ir.PathSequence, ID: 5, Min: 0, Max: 1},
		{Kind: ir.PathGroup, ID: 7, Min: 1, Max: 2},
	}

	plain := element("c", xs("string"))

	require.NoError(t, NewCalculateAttributePaths().Process(newType("T", ir.TagComplexType, inChoice, inGroup, plain)))

	assert.Equal(t, 1, inChoice.Restrictions.Sequence)
	assert.Equal(t, 2, inChoice.Restrictions.Choice)
	assert.Equal(t, 0, inChoice.Restrictions.Min())
	assert.Equal(t, 6, inChoice.Restrictions.Max())

	assert.Equal(t, 5, inGroup.Restrictions.Sequence)
	assert.Equal(t, 7, inGroup.Restrictions.Group)
	assert.Equal(t, 0, inGroup.Restrictions.Choice)
	assert.Equal(t, 0, inGroup.Restrictions.Min())
	assert.Equal(t, 2, inGroup.Restrictions.Max())

	assert.Nil(t, plain.Restrictions.MinOccurs)
}

func TestChoiceMin(t *testing.T) {
	path := []ir.PathEntry{
		{Kind: ir.PathSequence, ID: 1, Min: 2, Max: 2},
		{Kind: ir.PathChoice, ID: 3, Min: 1, Max: 1},
		{Kind: ir.PathElement, Min: 0, Max: 1},
	}

	got, ok := choiceMin(path, 3)
	assert.True(t, ok)
	assert.Equal(t, 2, got)

	_, ok = choiceMin(path, 4)
	assert.False(t, ok)
}

func TestFlattenClassExtensions_CircularBases(t *testing.T) {
	a := extend(newType("A", ir.TagComplexType, element("a", xs("string"))), ir.TagExtension, dep("B"))
	b := extend(newType("B", ir.TagComplexType, element("b", xs("string"))), ir.TagExtension, dep("A"))

	c := newContainer(config.DefaultConfig(), a, b)
	runStep(t, c, NewFlattenClassExtensions(c))

	assert.Empty(t, a.Extensions)
	require.Len(t, b.Extensions, 1)
	assert.Equal(t, a.ID, b.Extensions[0].Type.Reference)
	assert.Equal(t, []string{"a"}, fieldNames(a))
	assert.Equal(t, []string{"b"}, fieldNames(b))

	warnings := c.Diagnostics().Warnings
	require.Len(t, warnings, 1)
	assert.Equal(t, diagnostic.CodeRemovedCircularBase, warnings[0].Code)
}

func TestFlattenClassExtensions(t *testing.T) {
	tests := []struct {
		name       string
		base       []string
		derived    []string
		wantFields []string
		wantBase   bool
	}{
		{name: "disjoint fields keep inheritance", base: []string{"id"}, derived: []string{"name"}, wantFields: []string{"name"}, wantBase: true},
		{name: "restated fields drop the base", base: []string{"id"}, derived: []string{"id", "name"}, wantFields: []string{"id", "name"}},
		{name: "partial overlap flattens", base: []string{"id", "code"}, derived: []string{"code", "name"}, wantFields: []string{"id", "code", "name"}},
		{name: "reordered fields flatten", base: []string{"a", "b"}, derived: []string{"b", "a"}, wantFields: []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := newType("Base", ir.TagComplexType)
			for _, name := range tt.base {
				base.Fields = append(base.Fields, element(name, xs("string")))
			}

			derived := extend(newType("Derived", ir.TagComplexType), ir.TagExtension, dep("Base"))
			for _, name := range tt.derived {
				derived.Fields = append(derived.Fields, element(name, xs("string")))
			}

			c := newContainer(config.DefaultConfig(), derived, base)
			runStep(t, c, NewFlattenClassExtensions(c))

			assert.Equal(t, tt.wantFields, fieldNames(derived))

			if tt.wantBase {
				require.Len(t, derived.Extensions, 1)
				assert.Equal(t, base.ID, derived.Extensions[0].Type.Reference)
			} else {
				assert.Empty(t, derived.Extensions)
			}
		})
	}
}

func TestFlattenClassExtensions_MissingBase(t *testing.T) {
	base := newType("Base", ir.TagComplexType, element("b", xs("string")))
	derived := extend(newType("Derived", ir.TagComplexType, element("a", xs("string"))), ir.TagExtension, dep("Basse"))

	c := newContainer(config.DefaultConfig(), base, derived)
	runStep(t, c, NewFlattenClassExtensions(c))

	assert.Empty(t, derived.Extensions)
	assert.Equal(t, []string{"a"}, fieldNames(derived))

	warnings := c.Diagnostics().Warnings
	require.Len(t, warnings, 1)
	assert.Equal(t, diagnostic.CodeMissingExtension, warnings[0].Code)
	assert.Contains(t, warnings[0].Message, "did you mean {urn:test}Base?")
}

func TestFlattenClassExtensions_NativeBase(t *testing.T) {
	price := extend(newType("Price", ir.TagComplexType, attribute("currency", xs("string"))), ir.TagExtension, xs("decimal"))

	c := newContainer(config.DefaultConfig(), price)
	runStep(t, c, NewFlattenClassExtensions(c))

	assert.Empty(t, price.Extensions)
	assert.Equal(t, []string{"value", "currency"}, fieldNames(price))
	assert.Equal(t, ir.TagExtension, price.Fields[0].Tag)
	assert.Equal(t, []string{"decimal"}, localNames(price.Fields[0].Types))
}

func TestFlattenClassExtensions_EnumerationBase(t *testing.T) {
	color := newType("Color", ir.TagSimpleType, member("red", "red"), member("green", "green"))
	shade := extend(newType("Shade", ir.TagSimpleType, member("blue", "blue")), ir.TagExtension, dep("Color"))
	paint := extend(newType("Paint", ir.TagComplexType, attribute("finish", xs("string"))), ir.TagExtension, dep("Color"))

	c := newContainer(config.DefaultConfig(), color, shade, paint)
	runStep(t, c, NewFlattenClassExtensions(c))

	assert.Equal(t, []string{"blue", "red", "green"}, fieldNames(shade))
	assert.Empty(t, shade.Extensions)

	assert.Equal(t, []string{"value", "finish"}, fieldNames(paint))
	assert.Equal(t, color.ID, paint.Fields[0].Types[0].Reference)
	assert.Empty(t, paint.Extensions)
}

func TestSanitizeEnumerationClass(t *testing.T) {
	simple := newType("Simple", ir.TagSimpleType, member("a", "a"), attribute("x", xs("string")))
	complexType := newType("Complex", ir.TagComplexType, member("a", "a"), attribute("x", xs("string")))

	e1 := newType("E1", ir.TagSimpleType, member("a", "a"), member("b", "b"))
	e2 := newType("E2", ir.TagSimpleType, member("b", "b"), member("c", "c"))
	union := newType("U", ir.TagSimpleType, &ir.Field{
		Tag:   ir.TagUnion,
		Name:  "value",
		Types: []*ir.FieldType{dep("E1"), dep("E2")},
	})

	c := newContainer(config.DefaultConfig(), simple, complexType, e1, e2, union)
	runStep(t, c, NewSanitizeEnumerationClass(c))

	assert.Equal(t, []string{"a"}, fieldNames(simple))
	assert.Equal(t, []string{"x"}, fieldNames(complexType))
	assert.Equal(t, []string{"a", "b", "c"}, fieldNames(union))
	assert.True(t, union.IsEnumeration())
}

func TestUpdateAttributesEffectiveChoice(t *testing.T) {
	typ := newType("T", ir.TagComplexType,
		element("a", xs("string")),
		element("b", xs("string")),
		element("a", xs("int")),
		attribute("id", xs("string")),
	)

	require.NoError(t, NewUpdateAttributesEffectiveChoice().Process(typ))

	assert.Equal(t, []string{"a", "b", "id"}, fieldNames(typ))

	a, b := typ.Fields[0], typ.Fields[1]
	assert.Equal(t, -1, a.Restrictions.Choice)
	assert.Equal(t, -1, b.Restrictions.Choice)
	assert.Equal(t, 2, a.Restrictions.Min())
	assert.Equal(t, 3, a.Restrictions.Max())
	assert.Equal(t, 1, b.Restrictions.Min())
	assert.Equal(t, 3, b.Restrictions.Max())
	assert.Equal(t, []string{"string", "int"}, localNames(a.Types))
	assert.Equal(t, 0, typ.Fields[2].Restrictions.Choice)
}

func TestUnnestInnerClasses(t *testing.T) {
	tests := []struct {
		name      string
		unnestAll bool
		wantRoots []string
		wantInner []string
	}{
		{name: "enumerations only", wantRoots: []string{"Parent", "Parent_Color"}, wantInner: []string{"Line"}},
		{name: "everything", unnestAll: true, wantRoots: []string{"Parent", "Parent_Color", "Parent_Line"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color := newType("Color", ir.TagSimpleType, member("red", "red"))
			line := newType("Line", ir.TagComplexType, element("sku", xs("string")))
			parent := newType("Parent", ir.TagComplexType,
				element("color", ir.NewForward(qn("Color"), 0)),
				element("line", ir.NewForward(qn("Line"), 0)),
			)
			parent.Inner = []*ir.Type{color, line}

			cfg := config.DefaultConfig()
			cfg.Output.UnnestClasses = tt.unnestAll

			c := newContainer(cfg, parent)
			runStep(t, c, NewUnnestInnerClasses(c))

			var roots []string
			for _, root := range c.Iterate() {
				roots = append(roots, root.Name())
			}

			var inner []string
			for _, cur := range parent.Inner {
				inner = append(inner, cur.Name())
			}

			assert.Equal(t, tt.wantRoots, roots)
			assert.Equal(t, tt.wantInner, inner)

			ft := parent.Fields[0].Types[0]
			assert.False(t, ft.Forward)
			assert.Equal(t, "Parent_Color", ft.QName.Local)
			assert.Equal(t, color.ID, ft.Reference)
			assert.True(t, color.LocalType)
		})
	}
}

func TestAddAttributeSubstitutions(t *testing.T) {
	shape := newType("Shape", ir.TagElement)
	circle := newType("Circle", ir.TagElement)
	circle.Substitutions = []ir.QName{qn("Shape")}
	square := newType("Square", ir.TagElement)
	square.Substitutions = []ir.QName{qn("Shape")}
	orphan := newType("Orphan", ir.TagElement)
	orphan.Substitutions = []ir.QName{qn("Nope")}

	drawing := newType("Drawing", ir.TagComplexType, occurs(element("shape", dep("Shape")), 1, 4))

	c := newContainer(config.DefaultConfig(), shape, circle, square, orphan, drawing)
	runStep(t, c, NewAddAttributeSubstitutions(c))

	require.Equal(t, []string{"shape", "Circle", "Square"}, fieldNames(drawing))

	head := drawing.Fields[0]
	assert.Equal(t, 1, head.Restrictions.Choice)
	assert.Equal(t, "Shape", head.SubstitutionGroup)

	for _, f := range drawing.Fields[1:] {
		assert.Equal(t, 1, f.Restrictions.Choice)
		assert.Equal(t, 0, f.Restrictions.Min())
		assert.Equal(t, 4, f.Restrictions.Max())
		assert.Equal(t, "Shape", f.SubstitutionGroup)
	}

	assert.Equal(t, qn("Circle"), drawing.Fields[1].Types[0].QName)

	warnings := c.Diagnostics().Warnings
	require.Len(t, warnings, 1)
	assert.Equal(t, diagnostic.CodeMissingSubstitution, warnings[0].Code)
}

func TestProcessAttributeTypes(t *testing.T) {
	code := newType("Code", ir.TagSimpleType, &ir.Field{
		Tag:   ir.TagRestriction,
		Name:  "value",
		Types: []*ir.FieldType{xs("string")},
	})
	maxLength := 3
	code.Fields[0].Restrictions.MaxLength = &maxLength

	customer := newType("Customer", ir.TagComplexType, element("name", xs("string")))
	line := newType("Line", ir.TagComplexType, element("sku", xs("string")))

	order := newType("Order", ir.TagComplexType,
		element("customer", dep("Customer")),
		element("code", dep("Code")),
		element("missing", dep("Nope")),
		attribute("refs", xs("IDREFS")),
		element("line", ir.NewForward(qn("Line"), 0)),
	)
	order.Inner = []*ir.Type{line}

	c := newContainer(config.DefaultConfig(), code, customer, order)
	runStep(t, c, NewProcessAttributeTypes(c))

	assert.Equal(t, customer.ID, order.Fields[0].Types[0].Reference)

	codeField := order.Fields[1]
	assert.Equal(t, []string{"string"}, localNames(codeField.Types))
	assert.True(t, codeField.Types[0].Native)
	require.NotNil(t, codeField.Restrictions.MaxLength)
	assert.Equal(t, 3, *codeField.Restrictions.MaxLength)

	missing := order.Fields[2].Types[0]
	assert.True(t, missing.Native)
	assert.Equal(t, ir.XSString, missing.QName)

	assert.True(t, order.Fields[3].Restrictions.Tokens)
	assert.Equal(t, line.ID, order.Fields[4].Types[0].Reference)

	warnings := c.Diagnostics().Warnings
	require.Len(t, warnings, 1)
	assert.Equal(t, diagnostic.CodeResetAbsentType, warnings[0].Code)
	assert.Equal(t, "missing", warnings[0].Field)
}

func TestMergeAttributes(t *testing.T) {
	typ := newType("T", ir.TagComplexType,
		element("a", xs("string")),
		occurs(element("a", xs("int")), 0, 1),
		attribute("id", xs("string")),
		attribute("id", xs("int")),
	)

	require.NoError(t, NewMergeAttributes().Process(typ))

	require.Equal(t, []string{"a", "id"}, fieldNames(typ))
	assert.Equal(t, 0, typ.Fields[0].Restrictions.Min())
	assert.Equal(t, 2, typ.Fields[0].Restrictions.Max())
	assert.Equal(t, []string{"string", "int"}, localNames(typ.Fields[0].Types))
	assert.Equal(t, []string{"string"}, localNames(typ.Fields[1].Types))
}

func TestProcessMixedContentClass(t *testing.T) {
	mixed := newType("Para", ir.TagComplexType, element("b", xs("string")))
	mixed.Mixed = true

	require.NoError(t, NewProcessMixedContentClass().Process(mixed))

	require.Equal(t, []string{"b", "content"}, fieldNames(mixed))

	content := mixed.Fields[1]
	assert.Equal(t, ir.TagAny, content.Tag)
	assert.True(t, content.Mixed)
	assert.True(t, content.IsList())
	assert.True(t, content.IsOptional())
}

func TestUnwrapWrappedLists(t *testing.T) {
	items := newType("Items", ir.TagComplexType, occurs(element("item", xs("string")), 0, ir.Unbounded))
	order := newType("Order", ir.TagComplexType, element("items", dep("Items")))

	cfg := config.DefaultConfig()
	cfg.Output.WrappedLists = config.WrappedListsUnwrap

	c := newContainer(cfg, items, order)
	runStep(t, c, NewProcessAttributeTypes(c), NewUnwrapWrappedLists(c))

	f := order.Fields[0]
	assert.Equal(t, "item", f.Name)
	assert.Equal(t, "items", f.Wrapper)
	assert.True(t, f.IsList())
	assert.Equal(t, []string{"string"}, localNames(f.Types))
}

func TestUnwrapWrappedLists_Keep(t *testing.T) {
	items := newType("Items", ir.TagComplexType, occurs(element("item", xs("string")), 0, ir.Unbounded))
	order := newType("Order", ir.TagComplexType, element("items", dep("Items")))

	c := newContainer(config.DefaultConfig(), items, order)
	runStep(t, c, NewProcessAttributeTypes(c), NewUnwrapWrappedLists(c))

	assert.Equal(t, "items", order.Fields[0].Name)
	assert.Empty(t, order.Fields[0].Wrapper)
}
