package handlers

import (
	"context"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"schema-compiler/internal/config"
	"schema-compiler/internal/container"
	"schema-compiler/internal/ir"
)

const testNS = "urn:test"

func qn(local string) ir.QName {
	return ir.NewQName(testNS, local)
}

func xs(local string) *ir.FieldType {
	return ir.NewNative(ir.NewQName(ir.XSNamespace, local))
}

func dep(local string) *ir.FieldType {
	return ir.NewDependency(qn(local))
}

func newType(local string, tag ir.Tag, fields ...*ir.Field) *ir.Type {
	return &ir.Type{QName: qn(local), Tag: tag, Fields: fields}
}

func element(name string, types ...*ir.FieldType) *ir.Field {
	return &ir.Field{Tag: ir.TagElement, Name: name, Types: types}
}

func attribute(name string, types ...*ir.FieldType) *ir.Field {
	return &ir.Field{Tag: ir.TagAttribute, Name: name, Types: types}
}

func member(name, value string) *ir.Field {
	return &ir.Field{Tag: ir.TagEnumeration, Name: name, Default: value, Types: []*ir.FieldType{xs("string")}}
}

func occurs(f *ir.Field, minOccurs, maxOccurs int) *ir.Field {
	f.Restrictions.SetMin(minOccurs)
	f.Restrictions.SetMax(maxOccurs)

	return f
}

func extend(t *ir.Type, tag ir.Tag, ft *ir.FieldType) *ir.Type {
	t.Extensions = append(t.Extensions, &ir.Extension{Tag: tag, Type: ft})
	return t
}

func newContainer(cfg config.Config, types ...*ir.Type) *container.Container {
	c := container.New(cfg, nil)
	c.Extend(types...)

	return c
}

// runStep runs handlers over every Type of c as one sequential step.
func runStep(t *testing.T, c *container.Container, handlers ...container.Handler) {
	t.Helper()

	err := c.RunStep(context.Background(), &container.Step{
		Name:     "test",
		Busy:     ir.StatusFlattening,
		Done:     ir.StatusFlattened,
		Handlers: handlers,
	})
	require.NoError(t, err, spew.Sdump(c.Iterate()))
}

func fieldNames(t *ir.Type) []string {
	out := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		out[i] = f.Name
	}

	return out
}

func localNames(types []*ir.FieldType) []string {
	out := make([]string, len(types))
	for i, ft := range types {
		out[i] = ft.QName.Local
	}

	return out
}
