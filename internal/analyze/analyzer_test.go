package analyze

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-compiler/internal/config"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/resolve"
)

func element(name string, ft *ir.FieldType) *ir.Field {
	return &ir.Field{Tag: ir.TagElement, Name: name, Types: []*ir.FieldType{ft}}
}

func newType(ns, local string, tag ir.Tag, fields ...*ir.Field) *ir.Type {
	return &ir.Type{QName: ir.NewQName(ns, local), Tag: tag, Fields: fields}
}

func addressBook() []*ir.Type {
	return []*ir.Type{
		newType("urn:a", "Address", ir.TagComplexType, element("street", ir.NewNative(ir.XSString))),
		newType("urn:b", "Address", ir.TagComplexType, element("line", ir.NewNative(ir.XSString))),
		newType("urn:a", "Person", ir.TagElement,
			element("home", ir.NewDependency(ir.NewQName("urn:a", "Address"))),
			element("work", ir.NewDependency(ir.NewQName("urn:b", "Address"))),
		),
	}
}

func TestAnalyzer_SingleModuleRenamesDuplicates(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Structure = config.StructureSingle

	res, err := NewAnalyzer(cfg, nil).Process(context.Background(), addressBook())
	require.NoError(t, err)

	require.Len(t, res.Modules, 1)

	mod := res.Module("generated")
	require.NotNil(t, mod)
	assert.Equal(t, "", mod.Package)
	assert.Equal(t, "generated", mod.Name)
	assert.Equal(t, []string{"Address", "Address_1", "Person"}, mod.TypeNames())
	assert.Empty(t, mod.Imports)

	person := res.Lookup(ir.NewQName("urn:a", "Person"))
	require.NotNil(t, person)

	renamed := res.Lookup(ir.NewQName("urn:b", "Address_1"))
	require.NotNil(t, renamed)

	work := person.FieldByName("work").Types[0]
	assert.Equal(t, renamed.QName, work.QName)
	assert.Equal(t, renamed.ID, work.Reference)

	var codes []string
	for _, info := range res.Diagnostics.Infos {
		codes = append(codes, info.Code)
	}

	assert.Contains(t, codes, diagnostic.CodeRenamedType)
}

func TestAnalyzer_NamespaceModules(t *testing.T) {
	res, err := NewAnalyzer(config.DefaultConfig(), nil).Process(context.Background(), addressBook())
	require.NoError(t, err)

	var paths []string
	for _, m := range res.Modules {
		paths = append(paths, m.Path)
	}

	assert.Equal(t, []string{"generated.a", "generated.b"}, paths)

	a := res.Module("generated.a")
	assert.Equal(t, []string{"Address", "Person"}, a.TypeNames())

	want := []resolve.Import{{
		QName:  ir.NewQName("urn:b", "Address"),
		Source: "generated.b",
		Alias:  "b_Address",
	}}
	if diff := cmp.Diff(want, a.Imports); diff != "" {
		t.Errorf("imports mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, res.Diagnostics.Infos)
}

func TestAnalyzer_NamespacesSharingModule(t *testing.T) {
	types := []*ir.Type{
		newType("http://example.com/orders", "Order", ir.TagElement, element("id", ir.NewNative(ir.XSString))),
		newType("https://www.example.com/orders.xsd", "Order", ir.TagElement, element("code", ir.NewNative(ir.XSString))),
	}

	res, err := NewAnalyzer(config.DefaultConfig(), nil).Process(context.Background(), types)
	require.NoError(t, err)

	require.Len(t, res.Modules, 1)

	mod := res.Module("generated.com.example.orders")
	require.NotNil(t, mod)
	assert.Equal(t, []string{"Order", "Order_1"}, mod.TypeNames())

	assert.NotNil(t, res.Lookup(ir.NewQName("http://example.com/orders", "Order")))
	assert.NotNil(t, res.Lookup(ir.NewQName("https://www.example.com/orders.xsd", "Order_1")))
}

func TestAnalyzer_CircularModules(t *testing.T) {
	types := []*ir.Type{
		newType("urn:a", "A", ir.TagElement, element("b", ir.NewDependency(ir.NewQName("urn:b", "B")))),
		newType("urn:b", "B", ir.TagElement, element("a", ir.NewDependency(ir.NewQName("urn:a", "A")))),
	}

	res, err := NewAnalyzer(config.DefaultConfig(), nil).Process(context.Background(), types)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diagnostic.ErrCircularModules))
	assert.Contains(t, err.Error(), "pipeline stage designate")

	require.NotNil(t, res)
	assert.Empty(t, res.Modules)
	require.True(t, res.Diagnostics.HasErrors())
	require.Len(t, res.Diagnostics.Errors, 1)

	got := res.Diagnostics.Errors[0]
	assert.Equal(t, diagnostic.CodeCircularModules, got.Code)
	assert.Equal(t, "{urn:a}A", got.Type)
	assert.Equal(t, err.Error(), got.Message)
}

func TestAnalyzer_CyclesInsideModule(t *testing.T) {
	types := []*ir.Type{
		newType("urn:a", "A", ir.TagElement, element("b", ir.NewDependency(ir.NewQName("urn:a", "B")))),
		newType("urn:a", "B", ir.TagElement, element("a", ir.NewDependency(ir.NewQName("urn:a", "A")))),
	}

	res, err := NewAnalyzer(config.DefaultConfig(), nil).Process(context.Background(), types)
	require.NoError(t, err)

	require.Len(t, res.Modules, 1)
	assert.Len(t, res.Modules[0].Types, 2)

	for _, typ := range res.Types {
		assert.True(t, typ.Fields[0].Types[0].Circular, typ.QName.String())
	}
}

func TestCheckIntegrity(t *testing.T) {
	bound := func(target *ir.Type) *ir.FieldType {
		ft := ir.NewDependency(target.QName)
		ft.Reference = target.ID

		return ft
	}

	build := func() (a, b *ir.Type) {
		a = newType("urn:x", "A", ir.TagComplexType)
		b = newType("urn:x", "B", ir.TagComplexType)
		ir.AssignHandles(a)
		ir.AssignHandles(b)
		a.Fields = []*ir.Field{element("b", bound(b))}

		return a, b
	}

	t.Run("valid", func(t *testing.T) {
		a, b := build()
		require.NoError(t, checkIntegrity([]*ir.Type{a, b}))
	})

	t.Run("shared field", func(t *testing.T) {
		a, b := build()
		b.Fields = a.Fields

		err := checkIntegrity([]*ir.Type{a, b})
		require.Error(t, err)
		assert.True(t, errors.Is(err, diagnostic.ErrCrossReference))
		assert.Contains(t, err.Error(), "A.b and B.b")

		var ce *diagnostic.CompileError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, []string{"{urn:x}A", "{urn:x}B"}, ce.QNames)
	})

	t.Run("shared inside one root", func(t *testing.T) {
		a, b := build()
		a.Fields = append(a.Fields, a.Fields[0])

		err := checkIntegrity([]*ir.Type{a, b})

		var ce *diagnostic.CompileError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, diagnostic.ErrCrossReference, ce.Rule)
		assert.Equal(t, []string{"{urn:x}A"}, ce.QNames)
	})

	t.Run("shared field type", func(t *testing.T) {
		a, b := build()
		b.Fields = []*ir.Field{{Tag: ir.TagElement, Name: "c", Types: a.Fields[0].Types}}

		err := checkIntegrity([]*ir.Type{a, b})
		assert.True(t, errors.Is(err, diagnostic.ErrCrossReference))
		assert.Contains(t, err.Error(), "`{urn:x}A`, `{urn:x}B`")
	})

	t.Run("unbound reference", func(t *testing.T) {
		a, b := build()
		a.Fields[0].Types[0].Reference = 0

		err := checkIntegrity([]*ir.Type{a, b})
		assert.True(t, errors.Is(err, diagnostic.ErrUnresolvedReference))
	})

	t.Run("stale name", func(t *testing.T) {
		a, b := build()
		b.QName = b.QName.WithLocal("Renamed")

		err := checkIntegrity([]*ir.Type{a, b})
		assert.True(t, errors.Is(err, diagnostic.ErrUnresolvedReference))
	})

	t.Run("colliding names", func(t *testing.T) {
		a, b := build()
		b.QName = ir.NewQName("urn:y", "a")
		a.Fields = nil

		err := checkIntegrity([]*ir.Type{a, b})
		assert.True(t, errors.Is(err, diagnostic.ErrDuplicateType))
	})
}

func TestTypePath(t *testing.T) {
	root := NewTypePath("Order")

	assert.Equal(t, "Order", root.String())
	assert.Equal(t, "Order.Items.item", root.Child("Items").Child("item").String())
	assert.Equal(t, "Order.item|product", root.Child("item").Choice("product").String())
	assert.Equal(t, "Order.extension[2]", root.Extension(2).String())
	assert.Equal(t, "Order", root.String())
}
