package handlers

import (
	"path"
	"strings"

	"schema-compiler/internal/common"
	"schema-compiler/internal/config"
	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/graph"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/naming"
)

// defaultModule names the module of Types without a namespace or location.
const defaultModule = "default"

// DesignateClasses assigns every root Type a package and module according
// to the output structure. Inner Types always share their parent's.
type DesignateClasses struct {
	c *container.Container
}

// NewDesignateClasses returns the runner.
func NewDesignateClasses(c *container.Container) *DesignateClasses {
	return &DesignateClasses{c: c}
}

// Run implements container.Runner.
func (r *DesignateClasses) Run() error {
	types := r.c.Iterate()
	refs := r.references(types)
	pkg := r.c.Config().Output.Package

	var err error

	switch structure := r.c.Config().Output.Structure; structure {
	case config.StructureSingle:
		for _, t := range types {
			t.Package, t.Module = common.ModuleParent(pkg), common.ModuleBase(pkg)
		}
	case config.StructureClusters:
		r.designateClusters(refs, func(*ir.Type) string { return pkg })
	case config.StructureNamespaceClusters:
		err = r.checkClusterNamespaces(refs)
		if err == nil {
			r.designateClusters(refs, func(t *ir.Type) string {
				return namespacePackage(pkg, t.Namespace())
			})
		}
	case config.StructureFilenames:
		designateFilenames(types, pkg)
	default:
		for _, t := range types {
			t.Package, t.Module = namespaceModule(pkg, t.Namespace())
		}
	}

	if err != nil {
		return err
	}

	for _, t := range types {
		inherit(t)
	}

	return checkModuleCycles(refs)
}

// references returns the dependency graph between root Types. References
// to inner Types count as references to their root.
func (r *DesignateClasses) references(types []*ir.Type) *graph.Graph[*ir.Type] {
	owner := make(map[ir.Handle]*ir.Type)
	g := graph.New[*ir.Type]()

	for _, t := range types {
		g.AddNode(t)
		t.Walk(func(cur *ir.Type) { owner[cur.ID] = t })
	}

	for _, t := range types {
		for _, h := range t.DependencyRefs() {
			if dep, ok := owner[h]; ok {
				g.AddEdge(t, dep)
			}
		}
	}

	return g
}

func (r *DesignateClasses) designateClusters(refs *graph.Graph[*ir.Type], packageOf func(*ir.Type) string) {
	reserved := make(map[string]map[string]bool)

	for _, comp := range refs.Components() {
		rep := representative(comp)
		pkg := packageOf(rep)

		if reserved[pkg] == nil {
			reserved[pkg] = make(map[string]bool)
		}

		module := naming.SnakeCase(rep.Name())
		if module == "" {
			module = defaultModule
		}

		module = naming.Unique(module, reserved[pkg])

		for _, t := range comp {
			t.Package, t.Module = pkg, module
		}
	}
}

// checkClusterNamespaces rejects clusters spanning namespaces, which cannot
// share a namespace package.
func (r *DesignateClasses) checkClusterNamespaces(refs *graph.Graph[*ir.Type]) error {
	for _, comp := range refs.Components() {
		for _, t := range comp[1:] {
			if t.Namespace() != comp[0].Namespace() {
				return diagnostic.NewCompileError(diagnostic.ErrCircularModules,
					"cluster spans namespaces", qnames(comp)...)
			}
		}
	}

	return nil
}

// representative names a cluster: its first element, else its first Type.
func representative(comp []*ir.Type) *ir.Type {
	for _, t := range comp {
		if t.IsElement() {
			return t
		}
	}

	return comp[0]
}

// moduleScopes returns, per root Type, the scope its name must be unique
// in: the module designation will place it in, or for clustering
// strategies the package the clusters are cut from.
func moduleScopes(types []*ir.Type, out config.Output) map[*ir.Type]string {
	scopes := make(map[*ir.Type]string, len(types))

	switch out.Structure {
	case config.StructureSingle, config.StructureClusters:
		for _, t := range types {
			scopes[t] = out.Package
		}
	case config.StructureNamespaceClusters:
		for _, t := range types {
			scopes[t] = namespacePackage(out.Package, t.Namespace())
		}
	case config.StructureFilenames:
		root := filenameRoot(types)
		for _, t := range types {
			scopes[t] = common.JoinModule(filenameModule(t, root, out.Package))
		}
	default:
		for _, t := range types {
			scopes[t] = common.JoinModule(namespaceModule(out.Package, t.Namespace()))
		}
	}

	return scopes
}

func namespacePackage(pkg, ns string) string {
	return common.JoinModule(append([]string{pkg}, naming.NamespaceSegments(ns)...)...)
}

func namespaceModule(pkg, ns string) (string, string) {
	segments := naming.NamespaceSegments(ns)
	if len(segments) == 0 {
		return pkg, defaultModule
	}

	last := len(segments) - 1

	return common.JoinModule(append([]string{pkg}, segments[:last]...)...), segments[last]
}

func designateFilenames(types []*ir.Type, pkg string) {
	root := filenameRoot(types)

	for _, t := range types {
		t.Package, t.Module = filenameModule(t, root, pkg)
	}
}

// filenameRoot is the directory prefix shared by every located Type.
func filenameRoot(types []*ir.Type) []string {
	var dirs [][]string

	for _, t := range types {
		if t.Location != "" {
			dirs = append(dirs, locationDir(t.Location))
		}
	}

	return commonPrefix(dirs)
}

func filenameModule(t *ir.Type, root []string, pkg string) (string, string) {
	if t.Location == "" {
		return pkg, defaultModule
	}

	parts := []string{pkg}
	for _, dir := range locationDir(t.Location)[len(root):] {
		if seg := naming.SnakeCase(dir); seg != "" {
			parts = append(parts, seg)
		}
	}

	base := path.Base(locationPath(t.Location))

	module := naming.SnakeCase(strings.TrimSuffix(base, path.Ext(base)))
	if module == "" {
		module = defaultModule
	}

	return common.JoinModule(parts...), module
}

// locationPath strips a scheme from a resource location.
func locationPath(location string) string {
	if i := strings.Index(location, "://"); i >= 0 {
		location = location[i+3:]
	}

	return path.Clean(strings.ReplaceAll(location, "\\", "/"))
}

func locationDir(location string) []string {
	dir := path.Dir(locationPath(location))
	if dir == "." || dir == "/" {
		return nil
	}

	return strings.Split(strings.Trim(dir, "/"), "/")
}

func commonPrefix(paths [][]string) []string {
	if len(paths) == 0 {
		return nil
	}

	prefix := paths[0]

	for _, p := range paths[1:] {
		n := 0
		for n < len(prefix) && n < len(p) && prefix[n] == p[n] {
			n++
		}

		prefix = prefix[:n]
	}

	return prefix
}

func inherit(root *ir.Type) {
	root.Walk(func(cur *ir.Type) {
		cur.Package, cur.Module = root.Package, root.Module
	})
}

// checkModuleCycles fails when a dependency cycle spans output modules.
func checkModuleCycles(refs *graph.Graph[*ir.Type]) error {
	for _, comp := range refs.Components() {
		for _, t := range comp[1:] {
			if t.ModulePath() != comp[0].ModulePath() {
				return diagnostic.NewCompileError(diagnostic.ErrCircularModules,
					"modules "+comp[0].ModulePath()+" and "+t.ModulePath()+" depend on each other",
					qnames(comp)...)
			}
		}
	}

	return nil
}

func qnames(types []*ir.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.QName.String()
	}

	return out
}
