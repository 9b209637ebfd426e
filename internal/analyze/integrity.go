package analyze

import (
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
	"schema-compiler/internal/naming"
)

// integrity checks the processed Types before they reach the resolver:
// no instance is owned twice, every reference is bound to a Type with the
// same name and root names are unique per module.
type integrity struct {
	owners map[any]claimant
	byID   map[ir.Handle]*ir.Type
	root   string
}

// claimant is the root qualified name and readable path holding an instance.
type claimant struct {
	root string
	path string
}

func checkIntegrity(types []*ir.Type) error {
	chk := &integrity{
		owners: make(map[any]claimant),
		byID:   make(map[ir.Handle]*ir.Type),
	}

	for _, root := range types {
		if err := chk.claimTree(root); err != nil {
			return err
		}
	}

	for _, root := range types {
		if err := chk.checkReferences(root); err != nil {
			return err
		}
	}

	return checkModuleNames(types)
}

// claim records owner as the single holder of instance.
func (chk *integrity) claim(instance any, owner *TypePath) error {
	if prev, ok := chk.owners[instance]; ok {
		qnames := []string{prev.root}
		if prev.root != chk.root {
			qnames = append(qnames, chk.root)
		}

		return diagnostic.NewCompileError(diagnostic.ErrCrossReference,
			"instance shared by "+prev.path+" and "+owner.String(), qnames...)
	}

	chk.owners[instance] = claimant{root: chk.root, path: owner.String()}

	return nil
}

func (chk *integrity) claimTree(root *ir.Type) error {
	type item struct {
		t    *ir.Type
		path *TypePath
	}

	chk.root = root.QName.String()
	stack := []item{{root, NewTypePath(root.Name())}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := chk.claim(cur.t, cur.path); err != nil {
			return err
		}

		chk.byID[cur.t.ID] = cur.t

		for _, f := range cur.t.Fields {
			if err := chk.claimField(f, cur.path.Child(f.Name)); err != nil {
				return err
			}
		}

		for i, ext := range cur.t.Extensions {
			path := cur.path.Extension(i)
			if err := chk.claim(ext, path); err != nil {
				return err
			}

			if err := chk.claim(ext.Type, path); err != nil {
				return err
			}
		}

		for _, inner := range cur.t.Inner {
			stack = append(stack, item{inner, cur.path.Child(inner.Name())})
		}
	}

	return nil
}

func (chk *integrity) claimField(f *ir.Field, path *TypePath) error {
	if err := chk.claim(f, path); err != nil {
		return err
	}

	for _, ft := range f.Types {
		if err := chk.claim(ft, path); err != nil {
			return err
		}
	}

	for _, choice := range f.Choices {
		if err := chk.claimField(choice, path.Choice(choice.Name)); err != nil {
			return err
		}
	}

	return nil
}

func (chk *integrity) checkReferences(root *ir.Type) error {
	var err error

	root.Walk(func(cur *ir.Type) {
		if err != nil {
			return
		}

		for _, ft := range cur.FieldTypes() {
			if ft.Native {
				continue
			}

			target, ok := chk.byID[ft.Reference]
			if !ok || target.QName != ft.QName {
				err = diagnostic.NewCompileError(diagnostic.ErrUnresolvedReference,
					"referenced by "+cur.QName.String(), ft.QName.String())

				return
			}
		}
	})

	return err
}

// checkModuleNames rejects root Types whose normalised local names collide
// inside one module.
func checkModuleNames(types []*ir.Type) error {
	seen := make(map[string]*ir.Type, len(types))

	for _, t := range types {
		key := t.ModulePath() + "\x00" + naming.Key(t.Name())
		if prev, ok := seen[key]; ok {
			return diagnostic.NewCompileError(diagnostic.ErrDuplicateType,
				"names collide in module "+t.ModulePath(), prev.QName.String(), t.QName.String())
		}

		seen[key] = t
	}

	return nil
}
