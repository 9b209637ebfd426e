// Package config holds the values the compiler core consumes: output
// structure strategy, inner class unnesting, compound field policy, wrapped
// list handling and facet filtering.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Structure selects how Types are grouped into output modules.
type Structure string

const (
	// StructureNamespaces groups Types by target namespace.
	StructureNamespaces Structure = "namespaces"
	// StructureSingle puts every Type in one module.
	StructureSingle Structure = "single"
	// StructureClusters gives every strongly connected cluster its own module.
	StructureClusters Structure = "clusters"
	// StructureNamespaceClusters combines namespace packages with cluster modules.
	StructureNamespaceClusters Structure = "namespace-clusters"
	// StructureFilenames groups Types by the resource they were parsed from.
	StructureFilenames Structure = "filenames"
)

// UnmarshalYAML rejects unknown strategies.
func (s *Structure) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch Structure(raw) {
	case StructureNamespaces, StructureSingle, StructureClusters, StructureNamespaceClusters, StructureFilenames:
		*s = Structure(raw)
		return nil
	default:
		return fmt.Errorf("line %d: unknown output structure %q", value.Line, raw)
	}
}

// WrappedLists selects how single-list container types are handled.
type WrappedLists string

const (
	WrappedListsKeep   WrappedLists = "keep"
	WrappedListsUnwrap WrappedLists = "unwrap"
)

// UnmarshalYAML rejects unknown modes.
func (w *WrappedLists) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch WrappedLists(raw) {
	case WrappedListsKeep, WrappedListsUnwrap:
		*w = WrappedLists(raw)
		return nil
	default:
		return fmt.Errorf("line %d: unknown wrapped list mode %q", value.Line, raw)
	}
}

// Filter selects which Types survive the filter stage.
type Filter string

const (
	// FilterGlobals keeps generatable roots and everything they depend on.
	FilterGlobals Filter = "globals"
	// FilterAll keeps every Type.
	FilterAll Filter = "all"
)

// UnmarshalYAML rejects unknown filters.
func (f *Filter) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch Filter(raw) {
	case FilterGlobals, FilterAll:
		*f = Filter(raw)
		return nil
	default:
		return fmt.Errorf("line %d: unknown filter %q", value.Line, raw)
	}
}

// Output holds the output layout options.
type Output struct {
	// Package is the base dotted package path, e.g. "generated".
	Package string `yaml:"package"`
	// Structure is the module grouping strategy.
	Structure Structure `yaml:"structure"`
	// UnnestClasses promotes every inner Type to a root Type.
	UnnestClasses bool `yaml:"unnestClasses"`
	// WrappedLists controls unwrapping of single-list container Types.
	WrappedLists WrappedLists `yaml:"wrappedLists"`
	// IgnorePatterns drops pattern facets.
	IgnorePatterns bool `yaml:"ignorePatterns"`
	// Filter selects the Types that are generated.
	Filter Filter `yaml:"filter"`
}

// CompoundFields holds the compound field grouping policy.
type CompoundFields struct {
	// Enabled groups choice members into one compound field.
	Enabled bool `yaml:"enabled"`
	// MaxNameParts is the largest number of member names joined into a compound name.
	MaxNameParts int `yaml:"maxNameParts"`
	// DefaultName is used when the joined name would be too long.
	DefaultName string `yaml:"defaultName"`
	// UseSubstitutionGroups names compound fields after substitution group heads.
	UseSubstitutionGroups bool `yaml:"useSubstitutionGroups"`
	// ForceDefaultName always uses DefaultName.
	ForceDefaultName bool `yaml:"forceDefaultName"`
}

// Config is the full compiler core configuration.
type Config struct {
	Output         Output         `yaml:"output"`
	CompoundFields CompoundFields `yaml:"compoundFields"`
	// Workers bounds per-type parallelism inside parallel steps (0 = GOMAXPROCS).
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Output: Output{
			Package:      "generated",
			Structure:    StructureNamespaces,
			WrappedLists: WrappedListsKeep,
			Filter:       FilterGlobals,
		},
		CompoundFields: CompoundFields{
			Enabled:      false,
			MaxNameParts: 3,
			DefaultName:  "choice",
		},
	}
}

// WorkerCount returns the effective worker bound.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}

	return runtime.GOMAXPROCS(0)
}

// LoadFile loads and parses a YAML config file from the given path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data over DefaultConfig.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyDefaults fills in values left empty by the file.
func applyDefaults(cfg *Config) {
	if cfg.Output.Package == "" {
		cfg.Output.Package = "generated"
	}

	if cfg.Output.Structure == "" {
		cfg.Output.Structure = StructureNamespaces
	}

	if cfg.Output.WrappedLists == "" {
		cfg.Output.WrappedLists = WrappedListsKeep
	}

	if cfg.Output.Filter == "" {
		cfg.Output.Filter = FilterGlobals
	}

	if cfg.CompoundFields.DefaultName == "" {
		cfg.CompoundFields.DefaultName = "choice"
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.CompoundFields.MaxNameParts < 1 {
		return fmt.Errorf("compoundFields.maxNameParts must be positive, got %d", c.CompoundFields.MaxNameParts)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	return nil
}
