// Package resolve orders the Types of one output module and computes the
// imports, with aliases, that module needs from other modules.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"schema-compiler/internal/common"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/graph"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/naming"
)

// Import is one external Type a module refers to.
type Import struct {
	QName  ir.QName `json:"qname"`
	Source string   `json:"source"`
	Alias  string   `json:"alias,omitempty"`
}

// Name returns the identifier the module uses for the import.
func (i Import) Name() string {
	if i.Alias != "" {
		return i.Alias
	}

	return i.QName.Local
}

// Resolver computes the dependency order and imports of one module.
type Resolver struct {
	// registry maps every known qualified name to its module path.
	registry map[ir.QName]string

	types   map[ir.QName]*ir.Type
	sorted  []ir.QName
	imports []Import
}

// NewResolver returns a Resolver over the module registry of the whole run.
func NewResolver(registry map[ir.QName]string) *Resolver {
	return &Resolver{registry: registry}
}

// Process indexes types, sorts them and every name they depend on, and
// resolves the imports of names defined elsewhere.
func (r *Resolver) Process(types []*ir.Type) error {
	r.types = make(map[ir.QName]*ir.Type, len(types))
	r.sorted = nil
	r.imports = nil

	g := graph.New[ir.QName]()
	protected := make([]string, 0, len(types))

	for _, t := range types {
		if _, ok := r.types[t.QName]; ok {
			return diagnostic.NewCompileError(diagnostic.ErrDuplicateType,
				"defined twice in one module", t.QName.String())
		}

		r.types[t.QName] = t
		protected = append(protected, t.Name())
		g.AddNode(t.QName)
	}

	for _, t := range types {
		for _, q := range t.Dependencies(false) {
			g.AddNode(q)
		}

		// Circular references never constrain the order.
		for _, q := range t.Dependencies(true) {
			g.AddEdge(t.QName, q)
		}
	}

	sorted, err := g.Sort()
	if err != nil {
		if errors.Is(err, graph.ErrCycle) {
			return diagnostic.NewCompileError(diagnostic.ErrDependencyCycle, err.Error())
		}

		return fmt.Errorf("sort dependencies: %w", err)
	}

	r.sorted = sorted

	var imports []Import

	for _, q := range r.ImportClasses() {
		source, ok := r.registry[q]
		if !ok {
			return diagnostic.NewCompileError(diagnostic.ErrUnresolvedReference,
				"no module defines the imported type", q.String())
		}

		imports = append(imports, Import{QName: q, Source: source})
	}

	r.imports = r.ResolveConflicts(imports, protected)

	return nil
}

// SortedTypes returns the module Types, dependencies first.
func (r *Resolver) SortedTypes() []*ir.Type {
	out := make([]*ir.Type, 0, len(r.types))

	for _, q := range r.sorted {
		if t, ok := r.types[q]; ok {
			out = append(out, t)
		}
	}

	return out
}

// ImportClasses returns the sorted names not defined in the module.
func (r *Resolver) ImportClasses() []ir.QName {
	var out []ir.QName

	for _, q := range r.sorted {
		if _, ok := r.types[q]; !ok {
			out = append(out, q)
		}
	}

	return out
}

// Imports returns the resolved imports in dependency order.
func (r *Resolver) Imports() []Import {
	return append([]Import(nil), r.imports...)
}

// Aliases returns the alias of every aliased import.
func (r *Resolver) Aliases() map[ir.QName]string {
	out := make(map[ir.QName]string)

	for _, imp := range r.imports {
		if imp.Alias != "" {
			out[imp.QName] = imp.Alias
		}
	}

	return out
}

// ResolveConflicts aliases imports whose local names collide, ignoring
// case, with each other or with a protected name. Colliding imports get the
// shortest suffix of their source module path that tells them apart.
func (r *Resolver) ResolveConflicts(imports []Import, protected []string) []Import {
	out := append([]Import(nil), imports...)

	reserved := make(map[string]bool, len(protected)+len(out))
	for _, name := range protected {
		reserved[strings.ToLower(name)] = true
	}

	keys, groups := common.GroupBy(indexes(len(out)), func(i int) string {
		return strings.ToLower(out[i].QName.Local)
	})

	for _, key := range keys {
		group := groups[key]

		switch {
		case len(group) > 1:
			for i, prefix := range distinguishingPrefixes(out, group) {
				out[group[i]].Alias = prefix + "_" + out[group[i]].QName.Local
			}
		case reserved[key]:
			imp := &out[group[0]]
			imp.Alias = naming.SnakeCase(common.ModuleBase(imp.Source)) + "_" + imp.QName.Local
		}
	}

	// Aliases must not collide with each other or with the module's own names.
	for i := range out {
		if out[i].Alias == "" {
			continue
		}

		key := strings.ToLower(out[i].Alias)
		if reserved[key] {
			out[i].Alias = nextFreeAlias(out[i].Alias, reserved)
			continue
		}

		reserved[key] = true
	}

	return out
}

// distinguishingPrefixes returns, for each import of group, the shortest
// run of trailing source module segments, joined by "_", that is unique
// within the group.
func distinguishingPrefixes(imports []Import, group []int) []string {
	depth := 0
	for _, i := range group {
		depth = max(depth, len(strings.Split(imports[i].Source, ".")))
	}

	for n := 1; n <= depth; n++ {
		prefixes := make([]string, len(group))
		seen := make(map[string]bool, len(group))
		unique := true

		for j, i := range group {
			prefixes[j] = moduleSuffix(imports[i].Source, n)
			if seen[prefixes[j]] {
				unique = false
			}

			seen[prefixes[j]] = true
		}

		if unique {
			return prefixes
		}
	}

	// Same source module: fall back to the full path plus the namespace.
	prefixes := make([]string, len(group))
	for j, i := range group {
		prefixes[j] = moduleSuffix(imports[i].Source, depth)
		if ns := naming.NamespaceSegments(imports[i].QName.Namespace); len(ns) > 0 {
			prefixes[j] += "_" + ns[len(ns)-1]
		}
	}

	return prefixes
}

// moduleSuffix joins the last n segments of a dotted module path with "_".
func moduleSuffix(source string, n int) string {
	segments := strings.Split(source, ".")
	if n < len(segments) {
		segments = segments[len(segments)-n:]
	}

	return strings.Join(segments, "_")
}

func nextFreeAlias(alias string, reserved map[string]bool) string {
	lower := make(map[string]bool, len(reserved))
	for k := range reserved {
		lower[naming.Key(k)] = true
	}

	name := naming.NextFree(alias, lower)
	reserved[strings.ToLower(name)] = true

	return name
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}
