package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"schema-compiler/internal/config"
	"schema-compiler/internal/container"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/pipeline"
	"schema-compiler/internal/resolve"
	"schema-compiler/internal/validate"
)

// Analyzer compiles raw Types into resolved output modules.
type Analyzer struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil logger means slog.Default().
func NewAnalyzer(cfg config.Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Analyzer{cfg: cfg, logger: logger}
}

// Process runs the whole core over types. The Types are mutated in place
// and must not be shared with another run. On failure the returned Result
// carries only the Diagnostics gathered so far, with err recorded as an
// error.
func (a *Analyzer) Process(ctx context.Context, types []*ir.Type) (*Result, error) {
	c := container.New(a.cfg, a.logger)
	c.Extend(types...)

	result, err := a.compile(ctx, c)
	if err != nil {
		diags := c.Diagnostics()
		diags.RecordError(err)

		return &Result{Diagnostics: diags}, err
	}

	a.logger.Info("analyze.done",
		"types", len(result.Types),
		"modules", len(result.Modules),
		"warnings", len(result.Diagnostics.Warnings),
	)

	return result, nil
}

func (a *Analyzer) compile(ctx context.Context, c *container.Container) (*Result, error) {
	if err := validate.New(c).Run(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	if err := pipeline.New(c).Run(ctx); err != nil {
		return nil, err
	}

	processed := c.Iterate()

	if err := checkIntegrity(processed); err != nil {
		return nil, fmt.Errorf("integrity: %w", err)
	}

	modules, err := a.resolveModules(processed)
	if err != nil {
		return nil, err
	}

	return &Result{
		Types:       processed,
		Modules:     modules,
		Diagnostics: c.Diagnostics(),
	}, nil
}

// resolveModules groups Types by module path and resolves each module.
func (a *Analyzer) resolveModules(types []*ir.Type) ([]Module, error) {
	registry := make(map[ir.QName]string, len(types))
	byPath := make(map[string][]*ir.Type)

	for _, t := range types {
		registry[t.QName] = t.ModulePath()
		byPath[t.ModulePath()] = append(byPath[t.ModulePath()], t)
	}

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	modules := make([]Module, 0, len(paths))

	for _, p := range paths {
		members := byPath[p]

		r := resolve.NewResolver(registry)
		if err := r.Process(members); err != nil {
			return nil, fmt.Errorf("resolve module %s: %w", p, err)
		}

		modules = append(modules, Module{
			Path:    p,
			Package: members[0].Package,
			Name:    members[0].Module,
			Types:   r.SortedTypes(),
			Imports: r.Imports(),
		})
	}

	return modules, nil
}
