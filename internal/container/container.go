package container

import (
	"fmt"
	"log/slog"
	"sync"

	"schema-compiler/internal/config"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

// Predicate filters Types returned by Find and Lookup.
type Predicate func(*ir.Type) bool

// Container is the working set of root Types.
type Container struct {
	cfg    config.Config
	logger *slog.Logger

	types   []*ir.Type
	byQName map[ir.QName][]*ir.Type
	byID    map[ir.Handle]*ir.Type

	// step is the active sequential step, nil otherwise.
	step *Step

	mu    sync.Mutex
	diags diagnostic.Diagnostics
}

// New returns an empty container. A nil logger means slog.Default().
func New(cfg config.Config, logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.Default()
	}

	return &Container{
		cfg:     cfg,
		logger:  logger,
		byQName: make(map[ir.QName][]*ir.Type),
		byID:    make(map[ir.Handle]*ir.Type),
	}
}

// Config returns the configuration the container was built with.
func (c *Container) Config() config.Config {
	return c.cfg
}

// Logger returns the container logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Add appends t as a root Type. Types without a Handle get one.
func (c *Container) Add(t *ir.Type) {
	ir.AssignHandles(t)

	c.types = append(c.types, t)
	c.byQName[t.QName] = append(c.byQName[t.QName], t)
	c.byID[t.ID] = t
}

// Extend adds every Type in order.
func (c *Container) Extend(types ...*ir.Type) {
	for _, t := range types {
		c.Add(t)
	}
}

// Remove drops root Types by identity.
func (c *Container) Remove(types ...*ir.Type) {
	if len(types) == 0 {
		return
	}

	drop := make(map[ir.Handle]bool, len(types))
	for _, t := range types {
		drop[t.ID] = true
	}

	kept := c.types[:0]

	for _, t := range c.types {
		if drop[t.ID] {
			delete(c.byID, t.ID)
			continue
		}

		kept = append(kept, t)
	}

	clear(c.types[len(kept):])
	c.types = kept

	for _, t := range types {
		c.rebuildBucket(t.QName)
	}
}

// Replace puts t in place of the root Type with oldID, keeping its position.
// When t has no Handle it takes oldID, so existing references stay bound.
func (c *Container) Replace(oldID ir.Handle, t *ir.Type) error {
	old, ok := c.byID[oldID]
	if !ok {
		return fmt.Errorf("replace: no type with handle %d", oldID)
	}

	if t.ID.IsZero() {
		t.ID = oldID
	}

	ir.AssignHandles(t)

	for i, cur := range c.types {
		if cur == old {
			c.types[i] = t
			break
		}
	}

	delete(c.byID, oldID)
	c.byID[t.ID] = t
	c.rebuildBucket(old.QName)
	c.rebuildBucket(t.QName)

	return nil
}

// Reset re-keys t after its qualified name changed from oldQName.
func (c *Container) Reset(t *ir.Type, oldQName ir.QName) {
	c.rebuildBucket(oldQName)
	c.rebuildBucket(t.QName)
}

// rebuildBucket recomputes one qname bucket in container order.
func (c *Container) rebuildBucket(q ir.QName) {
	var bucket []*ir.Type

	for _, t := range c.types {
		if t.QName == q {
			bucket = append(bucket, t)
		}
	}

	if bucket == nil {
		delete(c.byQName, q)
		return
	}

	c.byQName[q] = bucket
}

// Iterate returns a snapshot of the root Types in container order. Types
// added afterwards are not part of the snapshot.
func (c *Container) Iterate() []*ir.Type {
	return append([]*ir.Type(nil), c.types...)
}

// Bucket returns every root Type named q, in container order.
func (c *Container) Bucket(q ir.QName) []*ir.Type {
	return append([]*ir.Type(nil), c.byQName[q]...)
}

// QNames returns the distinct root qualified names in first-seen order.
func (c *Container) QNames() []ir.QName {
	seen := make(map[ir.QName]bool, len(c.byQName))

	var out []ir.QName

	for _, t := range c.types {
		if !seen[t.QName] {
			seen[t.QName] = true
			out = append(out, t.QName)
		}
	}

	return out
}

// Len returns the number of root Types.
func (c *Container) Len() int {
	return len(c.types)
}

// Lookup returns the first root Type named q matching every predicate.
// It never triggers processing and is safe to call from parallel steps.
func (c *Container) Lookup(q ir.QName, preds ...Predicate) *ir.Type {
	for _, t := range c.byQName[q] {
		if matches(t, preds) {
			return t
		}
	}

	return nil
}

// Find returns the first root Type named q matching every predicate.
// During a sequential step, a Type that has not reached the step yet is
// processed first. A nil Type with a nil error means "not found".
func (c *Container) Find(q ir.QName, preds ...Predicate) (*ir.Type, error) {
	for _, t := range c.byQName[q] {
		if !matches(t, preds) {
			continue
		}

		if c.step != nil && t.Status < c.step.Busy {
			if err := c.processTree(c.step, t); err != nil {
				return nil, err
			}

			// Processing may have renamed or removed it.
			return c.Find(q, preds...)
		}

		return t, nil
	}

	return nil, nil
}

// FindInner returns the Type named q nested anywhere inside parent.
// It fails with ErrInnerNotFound when absent.
func (c *Container) FindInner(parent *ir.Type, q ir.QName) (*ir.Type, error) {
	var found *ir.Type

	for _, inner := range parent.Inner {
		inner.Walk(func(cur *ir.Type) {
			if found == nil && cur.QName == q {
				found = cur
			}
		})

		if found != nil {
			break
		}
	}

	if found == nil {
		return nil, diagnostic.NewCompileError(diagnostic.ErrInnerNotFound,
			"inner of "+parent.QName.String(), q.String())
	}

	if c.step != nil && found.Status < c.step.Busy {
		if err := c.processTree(c.step, found); err != nil {
			return nil, err
		}
	}

	return found, nil
}

// FindByID returns the root or inner Type with handle h.
func (c *Container) FindByID(h ir.Handle) *ir.Type {
	if t, ok := c.byID[h]; ok {
		return t
	}

	var found *ir.Type

	for _, root := range c.types {
		root.Walk(func(cur *ir.Type) {
			if found == nil && cur.ID == h {
				found = cur
			}
		})

		if found != nil {
			return found
		}
	}

	return nil
}

// Contains reports whether t is currently a root Type.
func (c *Container) Contains(t *ir.Type) bool {
	return c.byID[t.ID] == t
}

func matches(t *ir.Type, preds []Predicate) bool {
	for _, p := range preds {
		if !p(t) {
			return false
		}
	}

	return true
}

// Warn records a recoverable problem and logs it.
func (c *Container) Warn(code, typeName, fieldName, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	c.mu.Lock()
	c.diags.AddWarning(code, msg, typeName, fieldName)
	c.mu.Unlock()

	c.logger.Warn(msg, "code", code, "type", typeName, "field", fieldName)
}

// Info records an informational note and logs it at debug level.
func (c *Container) Info(code, typeName, fieldName, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	c.mu.Lock()
	c.diags.AddInfo(code, msg, typeName, fieldName)
	c.mu.Unlock()

	c.logger.Debug(msg, "code", code, "type", typeName, "field", fieldName)
}

// Diagnostics returns a copy of the recorded diagnostics.
func (c *Container) Diagnostics() diagnostic.Diagnostics {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out diagnostic.Diagnostics
	out.Merge(c.diags)

	return out
}
