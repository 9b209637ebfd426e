package container

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schema-compiler/internal/config"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

const testNS = "urn:test"

func qn(local string) ir.QName {
	return ir.NewQName(testNS, local)
}

func newType(local string, tag ir.Tag) *ir.Type {
	return &ir.Type{QName: qn(local), Tag: tag}
}

func newContainer(types ...*ir.Type) *Container {
	c := New(config.DefaultConfig(), nil)
	c.Extend(types...)

	return c
}

// recorder logs the order in which Types are processed and can look up a
// dependency through Find.
type recorder struct {
	c     *Container
	mu    sync.Mutex
	seen  []string
	deps  map[string]string
	fails string
}

func (r *recorder) Process(t *ir.Type) error {
	r.mu.Lock()
	r.seen = append(r.seen, t.Name())
	r.mu.Unlock()

	if t.Name() == r.fails {
		return errors.New("boom")
	}

	if dep, ok := r.deps[t.Name()]; ok {
		found, err := r.c.Find(qn(dep))
		if err != nil {
			return err
		}

		if found != nil && found.Status < ir.StatusFlattening {
			return errors.New("dependency not processed")
		}
	}

	return nil
}

func flattenStep(handlers ...Handler) *Step {
	return &Step{
		Name:     "flatten",
		Busy:     ir.StatusFlattening,
		Done:     ir.StatusFlattened,
		Handlers: handlers,
	}
}

func TestContainerIndex(t *testing.T) {
	a1 := newType("A", ir.TagElement)
	a2 := newType("A", ir.TagComplexType)
	b := newType("B", ir.TagComplexType)
	c := newContainer(a1, b, a2)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []ir.QName{qn("A"), qn("B")}, c.QNames())
	assert.Equal(t, []*ir.Type{a1, a2}, c.Bucket(qn("A")))
	assert.Same(t, a2, c.Lookup(qn("A"), func(t *ir.Type) bool { return t.Tag == ir.TagComplexType }))
	assert.Nil(t, c.Lookup(qn("C")))
	assert.False(t, a1.ID.IsZero())
	assert.Same(t, b, c.FindByID(b.ID))

	c.Remove(a1)
	assert.Equal(t, []*ir.Type{b, a2}, c.Iterate())
	assert.Equal(t, []*ir.Type{a2}, c.Bucket(qn("A")))
	assert.False(t, c.Contains(a1))

	oldQName := b.QName
	b.QName = qn("B_1")
	c.Reset(b, oldQName)
	assert.Empty(t, c.Bucket(oldQName))
	assert.Same(t, b, c.Lookup(qn("B_1")))

	repl := newType("R", ir.TagComplexType)
	require.NoError(t, c.Replace(b.ID, repl))
	assert.Equal(t, b.ID, repl.ID)
	assert.Equal(t, []*ir.Type{repl, a2}, c.Iterate())
	assert.Error(t, c.Replace(ir.NewHandle(), repl))
}

func TestFindByIDInner(t *testing.T) {
	inner := newType("Inner", ir.TagComplexType)
	parent := newType("Parent", ir.TagComplexType)
	parent.Inner = []*ir.Type{inner}
	c := newContainer(parent)

	assert.Same(t, inner, c.FindByID(inner.ID))
	assert.Nil(t, c.FindByID(ir.NewHandle()))
}

func TestFindInner(t *testing.T) {
	deep := newType("Deep", ir.TagComplexType)
	inner := newType("Inner", ir.TagComplexType)
	inner.Inner = []*ir.Type{deep}
	parent := newType("Parent", ir.TagComplexType)
	parent.Inner = []*ir.Type{inner}
	c := newContainer(parent)

	found, err := c.FindInner(parent, qn("Deep"))
	require.NoError(t, err)
	assert.Same(t, deep, found)

	_, err = c.FindInner(parent, qn("Missing"))
	require.ErrorIs(t, err, diagnostic.ErrInnerNotFound)
	assert.Contains(t, err.Error(), "{urn:test}Missing")
}

func TestRunStepProcessesDependenciesFirst(t *testing.T) {
	a := newType("A", ir.TagComplexType)
	b := newType("B", ir.TagComplexType)
	c := newContainer(a, b)

	rec := &recorder{c: c, deps: map[string]string{"A": "B"}}
	require.NoError(t, c.RunStep(context.Background(), flattenStep(rec)))

	assert.Equal(t, []string{"A", "B"}, rec.seen[:2])
	assert.Len(t, rec.seen, 2)
	assert.Equal(t, ir.StatusFlattened, a.Status)
	assert.Equal(t, ir.StatusFlattened, b.Status)
}

func TestRunStepCircularFind(t *testing.T) {
	a := newType("A", ir.TagComplexType)
	b := newType("B", ir.TagComplexType)
	c := newContainer(a, b)

	// B finds A while A is busy: A is returned as is.
	rec := &recorder{c: c, deps: map[string]string{"A": "B", "B": "A"}}
	require.NoError(t, c.RunStep(context.Background(), flattenStep(rec)))
	assert.Len(t, rec.seen, 2)
}

func TestRunStepInnerFirst(t *testing.T) {
	inner := newType("Inner", ir.TagComplexType)
	parent := newType("Parent", ir.TagComplexType)
	parent.Inner = []*ir.Type{inner}
	c := newContainer(parent)

	rec := &recorder{c: c}
	require.NoError(t, c.RunStep(context.Background(), flattenStep(rec)))
	assert.Equal(t, []string{"Inner", "Parent"}, rec.seen)
	assert.Equal(t, ir.StatusFlattened, inner.Status)
}

type adder struct {
	c     *Container
	added bool
}

func (a *adder) Process(t *ir.Type) error {
	if !a.added {
		a.added = true
		a.c.Add(newType("Late", ir.TagComplexType))
		t.Inner = append(t.Inner, newType("Spawned", ir.TagComplexType))
	}

	return nil
}

func TestRunStepSweepsAddedTypes(t *testing.T) {
	c := newContainer(newType("A", ir.TagComplexType))
	require.NoError(t, c.RunStep(context.Background(), flattenStep(&adder{c: c})))

	for _, typ := range c.Iterate() {
		typ.Walk(func(cur *ir.Type) {
			assert.Equal(t, ir.StatusFlattened, cur.Status, cur.Name())
		})
	}

	assert.Equal(t, 2, c.Len())
}

func TestRunStepError(t *testing.T) {
	c := newContainer(newType("A", ir.TagComplexType))
	rec := &recorder{c: c, fails: "A"}

	err := c.RunStep(context.Background(), flattenStep(rec))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flatten: {urn:test}A: boom")
}

type prepCounter struct {
	prepared int
}

func (p *prepCounter) Prepare(*Container) error {
	p.prepared++
	return nil
}

func (p *prepCounter) Process(*ir.Type) error {
	return nil
}

func TestRunStepParallel(t *testing.T) {
	var types []*ir.Type
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		types = append(types, newType(name, ir.TagComplexType))
	}

	cfg := config.DefaultConfig()
	cfg.Workers = 2
	c := New(cfg, nil)
	c.Extend(types...)

	rec := &recorder{c: c}
	prep := &prepCounter{}
	step := &Step{
		Name:     "sanitize",
		Busy:     ir.StatusSanitizing,
		Done:     ir.StatusSanitized,
		Handlers: []Handler{prep, rec},
		Parallel: true,
	}

	require.NoError(t, c.RunStep(context.Background(), step))
	assert.ElementsMatch(t, []string{"A", "B", "C", "D", "E"}, rec.seen)
	assert.Equal(t, 1, prep.prepared)

	for _, typ := range types {
		assert.Equal(t, ir.StatusSanitized, typ.Status)
	}
}

func TestWarn(t *testing.T) {
	c := newContainer()
	c.Warn(diagnostic.CodeResetAbsentType, "Order", "item", "reset absent type %q", "Missing")
	c.Info(diagnostic.CodeRenamedType, "Order", "", "renamed")

	diags := c.Diagnostics()
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, `reset absent type "Missing"`, diags.Warnings[0].Message)
	assert.Equal(t, "item", diags.Warnings[0].Field)
	assert.Len(t, diags.Infos, 1)
	assert.False(t, diags.HasErrors())
}
