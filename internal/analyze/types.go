package analyze

import (
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/resolve"
)

// Module is one output unit: Types sharing a package and module name.
type Module struct {
	Path    string           `json:"path"`
	Package string           `json:"package"`
	Name    string           `json:"name"`
	Types   []*ir.Type       `json:"-"`
	Imports []resolve.Import `json:"imports,omitempty"`
}

// TypeNames returns the local names of the module Types in order.
func (m *Module) TypeNames() []string {
	out := make([]string, len(m.Types))
	for i, t := range m.Types {
		out[i] = t.Name()
	}

	return out
}

// Result is the outcome of one analyzer run.
type Result struct {
	// Types holds every root Type in container order.
	Types []*ir.Type
	// Modules are sorted by path.
	Modules     []Module
	Diagnostics diagnostic.Diagnostics
}

// Module returns the module with the given path.
func (r *Result) Module(path string) *Module {
	for i := range r.Modules {
		if r.Modules[i].Path == path {
			return &r.Modules[i]
		}
	}

	return nil
}

// Lookup returns the root Type named q.
func (r *Result) Lookup(q ir.QName) *ir.Type {
	for _, t := range r.Types {
		if t.QName == q {
			return t
		}
	}

	return nil
}
