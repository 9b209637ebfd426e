// Package pipeline assembles the handler passes into their fixed order and
// runs them over a container.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"schema-compiler/internal/container"
	"schema-compiler/internal/handlers"
	"schema-compiler/internal/ir"
)

// Stage is one entry of the pipeline: either a per-Type step or a
// container-wide runner.
type Stage struct {
	Name   string
	Step   *container.Step
	Runner container.Runner
}

// Pipeline is the ordered list of stages bound to one container.
type Pipeline struct {
	c      *container.Container
	stages []Stage
}

// New binds every pass to c.
func New(c *container.Container) *Pipeline {
	return &Pipeline{c: c, stages: stages(c)}
}

func stages(c *container.Container) []Stage {
	return []Stage{
		{Name: "ungroup", Step: &container.Step{
			Name: "ungroup",
			Busy: ir.StatusUngrouping,
			Done: ir.StatusUngrouped,
			Handlers: []container.Handler{
				handlers.NewFlattenAttributeGroups(c),
			},
		}},
		{Name: "remove-groups", Runner: handlers.NewRemoveGroups(c)},
		{Name: "flatten", Step: &container.Step{
			Name: "flatten",
			Busy: ir.StatusFlattening,
			Done: ir.StatusFlattened,
			Handlers: []container.Handler{
				handlers.NewCalculateAttributePaths(),
				handlers.NewFlattenClassExtensions(c),
				handlers.NewSanitizeEnumerationClass(c),
				handlers.NewUpdateAttributesEffectiveChoice(),
				handlers.NewUnnestInnerClasses(c),
				handlers.NewAddAttributeSubstitutions(c),
				handlers.NewProcessAttributeTypes(c),
				handlers.NewMergeAttributes(),
				handlers.NewProcessMixedContentClass(),
				handlers.NewUnwrapWrappedLists(c),
			},
		}},
		{Name: "filter", Runner: handlers.NewFilterClasses(c)},
		{Name: "sanitize", Step: &container.Step{
			Name: "sanitize",
			Busy: ir.StatusSanitizing,
			Done: ir.StatusSanitized,
			Handlers: []container.Handler{
				handlers.NewResetAttributeSequences(),
				handlers.NewRenameDuplicateAttributes(c),
			},
			Parallel: true,
		}},
		{Name: "resolve", Step: &container.Step{
			Name: "resolve",
			Busy: ir.StatusResolving,
			Done: ir.StatusResolved,
			Handlers: []container.Handler{
				handlers.NewSanitizeAttributesDefaultValue(c),
				handlers.NewValidateAttributesOverrides(c),
			},
		}},
		{Name: "cleanup", Step: &container.Step{
			Name: "cleanup",
			Busy: ir.StatusCleaning,
			Done: ir.StatusCleaned,
			Handlers: []container.Handler{
				handlers.NewVacuumInnerClasses(),
			},
		}},
		{Name: "compound", Step: &container.Step{
			Name: "compound",
			Busy: ir.StatusCompounding,
			Done: ir.StatusCompounded,
			Handlers: []container.Handler{
				handlers.NewCreateCompoundFields(c),
				handlers.NewDisambiguateChoices(c),
			},
		}},
		{Name: "rename-types", Runner: handlers.NewRenameDuplicateClasses(c)},
		{Name: "finalize", Step: &container.Step{
			Name: "finalize",
			Busy: ir.StatusFinalizing,
			Done: ir.StatusFinalized,
			Handlers: []container.Handler{
				handlers.NewDetectCircularReferences(),
				handlers.NewResetAttributeSequenceNumbers(),
			},
			Parallel: true,
		}},
		{Name: "designate", Runner: handlers.NewDesignateClasses(c)},
	}
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}

	return names
}

// Run executes every stage in order and stops at the first error.
func (p *Pipeline) Run(ctx context.Context) error {
	logger := p.c.Logger()

	for _, s := range p.stages {
		start := time.Now()

		var err error
		if s.Step != nil {
			err = p.c.RunStep(ctx, s.Step)
		} else {
			err = s.Runner.Run()
		}

		if err != nil {
			return fmt.Errorf("pipeline stage %s: %w", s.Name, err)
		}

		logger.Debug("pipeline.stage",
			"stage", s.Name,
			"types", p.c.Len(),
			"elapsed", time.Since(start),
		)
	}

	return nil
}
