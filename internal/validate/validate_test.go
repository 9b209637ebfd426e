package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-compiler/internal/config"
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

const testNS = "urn:test"

func qn(local string) ir.QName {
	return ir.NewQName(testNS, local)
}

func complexType(local, location string, fields ...string) *ir.Type {
	t := &ir.Type{QName: qn(local), Tag: ir.TagComplexType, Location: location}
	for _, name := range fields {
		t.Fields = append(t.Fields, &ir.Field{
			Tag:   ir.TagElement,
			Name:  name,
			Types: []*ir.FieldType{ir.NewNative(ir.XSString)},
		})
	}

	return t
}

func extend(t *ir.Type, base ir.QName) *ir.Type {
	t.Extensions = append(t.Extensions, &ir.Extension{
		Tag:  ir.TagExtension,
		Type: ir.NewDependency(base),
	})

	return t
}

func run(t *testing.T, types ...*ir.Type) *container.Container {
	t.Helper()

	c := container.New(config.DefaultConfig(), nil)
	c.Extend(types...)
	require.NoError(t, New(c).Run())

	return c
}

func TestLastDeclaredWins(t *testing.T) {
	first := complexType("Order", "a.xsd", "id")
	last := complexType("Order", "b.xsd", "code")
	c := run(t, first, last)

	assert.Equal(t, []*ir.Type{last}, c.Bucket(qn("Order")))

	diags := c.Diagnostics()
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, diagnostic.CodeDuplicateType, diags.Warnings[0].Code)
	assert.Contains(t, diags.Warnings[0].Message, `"b.xsd"`)
}

func TestOverrideWins(t *testing.T) {
	override := complexType("Order", "override.xsd", "code")
	override.Container = ir.TagOverride
	c := run(t, override, complexType("Order", "base.xsd", "id"))

	assert.Equal(t, []*ir.Type{override}, c.Bucket(qn("Order")))
	assert.Empty(t, c.Diagnostics().Warnings)
}

func TestRedefineSplicesOriginal(t *testing.T) {
	original := extend(complexType("Order", "base.xsd", "id"), qn("Base"))
	redefine := extend(complexType("Order", "redefine.xsd", "extra"), qn("Order"))
	redefine.Container = ir.TagRedefine
	base := complexType("Base", "base.xsd", "version")

	c := run(t, base, original, redefine)

	assert.Equal(t, []*ir.Type{redefine}, c.Bucket(qn("Order")))
	require.Len(t, redefine.Extensions, 1)
	assert.Equal(t, qn("Base"), redefine.Extensions[0].Type.QName)
	assert.NotSame(t, original.Extensions[0], redefine.Extensions[0])

	var names []string
	for _, f := range redefine.Fields {
		names = append(names, f.Name)
	}

	assert.Equal(t, []string{"id", "extra"}, names)
	assert.NotSame(t, original.Fields[0], redefine.Fields[0])
}

func TestRedefineGroupSelfReference(t *testing.T) {
	original := &ir.Type{QName: qn("Items"), Tag: ir.TagGroup}
	original.Fields = []*ir.Field{{Tag: ir.TagElement, Name: "item"}}

	redefine := &ir.Type{QName: qn("Items"), Tag: ir.TagGroup, Container: ir.TagRedefine}
	redefine.Fields = []*ir.Field{
		{Tag: ir.TagGroup, Name: "Items", Types: []*ir.FieldType{ir.NewDependency(qn("Items"))}},
		{Tag: ir.TagElement, Name: "extra"},
	}

	run(t, original, redefine)

	require.Len(t, redefine.Fields, 2)
	assert.Equal(t, "item", redefine.Fields[0].Name)
	assert.Equal(t, "extra", redefine.Fields[1].Name)
}

func TestRemoveInvalid(t *testing.T) {
	dangling := extend(complexType("Order", "a.xsd"), qn("Missing"))
	valid := complexType("Order", "b.xsd", "id")
	c := run(t, dangling, valid)

	assert.Equal(t, []*ir.Type{valid}, c.Bucket(qn("Order")))
	diags := c.Diagnostics()
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, diagnostic.CodeDroppedInvalidType, diags.Warnings[0].Code)
}

func TestSingleDefinitionUntouched(t *testing.T) {
	dangling := extend(complexType("Order", "a.xsd"), qn("Missing"))
	c := run(t, dangling)

	assert.Equal(t, 1, c.Len())
}

func TestMergeGlobalTypes(t *testing.T) {
	el := extend(&ir.Type{QName: qn("Order"), Tag: ir.TagElement, Help: "An order", Nillable: true}, qn("Order"))
	ct := complexType("Order", "a.xsd", "id")
	c := run(t, el, ct)

	assert.Equal(t, []*ir.Type{ct}, c.Iterate())
	assert.Equal(t, ir.TagElement, ct.Tag)
	assert.Equal(t, "An order", ct.Help)
	assert.True(t, ct.Nillable)
}

func TestMergeGlobalTypesKeepsElementWithFields(t *testing.T) {
	el := extend(complexType("Order", "a.xsd", "extra"), qn("Order"))
	el.Tag = ir.TagElement
	ct := complexType("Order", "a.xsd", "id")
	c := run(t, el, ct)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, ir.TagComplexType, ct.Tag)
}
