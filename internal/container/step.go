package container

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"schema-compiler/internal/ir"
)

// Handler transforms one Type in place.
type Handler interface {
	Process(t *ir.Type) error
}

// Preparer is implemented by handlers that memoise container-wide indices.
// Prepare runs at the start of every sweep, before any Type is processed.
type Preparer interface {
	Prepare(c *Container) error
}

// Runner is a container-wide pass that runs once.
type Runner interface {
	Run() error
}

// Step applies Handlers, in order, to every Type whose status is below Busy.
// A Type is Busy while its handlers run and Done afterwards.
type Step struct {
	Name     string
	Busy     ir.Status
	Done     ir.Status
	Handlers []Handler
	// Parallel fans the per-Type loop out over a bounded worker group.
	// Handlers of a parallel step must only mutate the Type they are given
	// and must use Lookup instead of Find.
	Parallel bool
}

// RunStep runs step over the whole container. Types added while the step
// runs are picked up by further sweeps.
func (c *Container) RunStep(ctx context.Context, step *Step) error {
	if !step.Parallel {
		c.step = step
		defer func() { c.step = nil }()
	}

	for sweep := 1; ; sweep++ {
		var pending []*ir.Type

		for _, t := range c.types {
			if t.Status < step.Busy {
				pending = append(pending, t)
			}
		}

		if len(pending) == 0 {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		for _, h := range step.Handlers {
			if p, ok := h.(Preparer); ok {
				if err := p.Prepare(c); err != nil {
					return fmt.Errorf("%s: prepare: %w", step.Name, err)
				}
			}
		}

		c.logger.Debug("step.sweep", "step", step.Name, "sweep", sweep, "types", len(pending))

		var err error
		if step.Parallel {
			err = c.sweepParallel(ctx, step, pending)
		} else {
			err = c.sweep(step, pending)
		}

		if err != nil {
			return err
		}
	}
}

func (c *Container) sweep(step *Step, pending []*ir.Type) error {
	for _, t := range pending {
		// Already processed through Find, or dropped by another handler.
		if t.Status >= step.Busy || !c.Contains(t) {
			continue
		}

		if err := c.processTree(step, t); err != nil {
			return err
		}
	}

	return nil
}

func (c *Container) sweepParallel(ctx context.Context, step *Step, pending []*ir.Type) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.WorkerCount())

	for _, t := range pending {
		t := t // per-iteration copy; go directive is 1.21 (pre-1.22 loopvar semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			return c.processTree(step, t)
		})
	}

	return g.Wait()
}

// processTree processes root and its inner Types, inner Types first. Inner
// Types added by handlers while the tree is processed are processed too.
func (c *Container) processTree(step *Step, root *ir.Type) error {
	for {
		var order []*ir.Type

		root.Walk(func(cur *ir.Type) {
			if cur.Status < step.Busy {
				order = append(order, cur)
			}
		})

		if len(order) == 0 {
			return nil
		}

		// Reversed pre-order puts every inner Type before its parent.
		for i := len(order) - 1; i >= 0; i-- {
			cur := order[i]
			if cur.Status >= step.Busy {
				continue
			}

			if err := c.apply(step, cur); err != nil {
				return err
			}
		}
	}
}

func (c *Container) apply(step *Step, t *ir.Type) error {
	t.Status = step.Busy

	for _, h := range step.Handlers {
		if err := h.Process(t); err != nil {
			return fmt.Errorf("%s: %s: %w", step.Name, t.QName, err)
		}
	}

	t.Status = step.Done

	return nil
}
