package ir

import "schema-compiler/internal/common"

// Type is one schema-derived record or enumeration.
type Type struct {
	ID            Handle            `json:"id,omitempty" yaml:"id,omitempty"`
	QName         QName             `json:"qname" yaml:"qname"`
	Tag           Tag               `json:"tag" yaml:"tag"`
	Location      string            `json:"location,omitempty" yaml:"location,omitempty"`
	Container     Tag               `json:"container,omitempty" yaml:"container,omitempty"`
	Abstract      bool              `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Mixed         bool              `json:"mixed,omitempty" yaml:"mixed,omitempty"`
	Nillable      bool              `json:"nillable,omitempty" yaml:"nillable,omitempty"`
	LocalType     bool              `json:"localType,omitempty" yaml:"localType,omitempty"`
	Status        Status            `json:"status,omitempty" yaml:"status,omitempty"`
	Default       string            `json:"default,omitempty" yaml:"default,omitempty"`
	Fixed         bool              `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Help          string            `json:"help,omitempty" yaml:"help,omitempty"`
	NSMap         map[string]string `json:"nsMap,omitempty" yaml:"nsMap,omitempty"`
	Fields        []*Field          `json:"fields,omitempty" yaml:"fields,omitempty"`
	Extensions    []*Extension      `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Inner         []*Type           `json:"inner,omitempty" yaml:"inner,omitempty"`
	Substitutions []QName           `json:"substitutions,omitempty" yaml:"substitutions,omitempty"`
	Package       string            `json:"package,omitempty" yaml:"package,omitempty"`
	Module        string            `json:"module,omitempty" yaml:"module,omitempty"`
}

// Name returns the local name.
func (t *Type) Name() string {
	return t.QName.Local
}

// Namespace returns the target namespace.
func (t *Type) Namespace() string {
	return t.QName.Namespace
}

// ModulePath returns the dotted output module path assigned by designation.
func (t *Type) ModulePath() string {
	return common.JoinModule(t.Package, t.Module)
}

// IsEnumeration reports whether every field is an enumeration member.
func (t *Type) IsEnumeration() bool {
	if len(t.Fields) == 0 {
		return false
	}

	for _, f := range t.Fields {
		if !f.IsEnumeration() {
			return false
		}
	}

	return true
}

// HasEnumerations reports whether at least one field is an enumeration member.
func (t *Type) HasEnumerations() bool {
	for _, f := range t.Fields {
		if f.IsEnumeration() {
			return true
		}
	}

	return false
}

// IsElement reports whether the Type comes from an element declaration.
func (t *Type) IsElement() bool {
	return t.Tag == TagElement
}

// IsGroup reports whether the Type is a group or attribute group.
func (t *Type) IsGroup() bool {
	return t.Tag == TagGroup || t.Tag == TagAttributeGroup
}

// IsComplex reports whether the Type is generated as a record.
func (t *Type) IsComplex() bool {
	switch t.Tag {
	case TagElement, TagComplexType, TagBindingMessage, TagBindingOperation, TagBindingFault:
		return true
	default:
		return false
	}
}

// IsSimpleType reports whether the Type only wraps one text value: a single
// simple content field, no extensions, not an enumeration.
func (t *Type) IsSimpleType() bool {
	return len(t.Fields) == 1 &&
		len(t.Extensions) == 0 &&
		t.Fields[0].IsText() &&
		!t.Mixed
}

// HasSuffixField reports whether the last field is an element wildcard.
func (t *Type) HasSuffixField() bool {
	if len(t.Fields) == 0 {
		return false
	}

	return t.Fields[len(t.Fields)-1].Tag == TagAny
}

// ShouldGenerate reports whether the Type is a root of generation on its own.
func (t *Type) ShouldGenerate() bool {
	return t.IsComplex() && !t.IsGroup()
}

// FieldByName returns the first field with the given name.
func (t *Type) FieldByName(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}

	return nil
}

// FieldTypes returns every FieldType owned directly by t: field types,
// choice types and extension types. Inner Types are not included.
func (t *Type) FieldTypes() []*FieldType {
	var out []*FieldType
	for _, f := range t.Fields {
		out = append(out, f.AllTypes()...)
	}

	for _, ext := range t.Extensions {
		out = append(out, ext.Type)
	}

	return out
}

// Walk visits t and every nested inner Type in pre-order.
func (t *Type) Walk(fn func(*Type)) {
	stack := []*Type{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fn(cur)

		for i := len(cur.Inner) - 1; i >= 0; i-- {
			stack = append(stack, cur.Inner[i])
		}
	}
}

// Dependencies returns the qualified names of Types referenced by t or its
// inner Types, excluding natives and forward references, in first-seen order.
func (t *Type) Dependencies(skipCircular bool) []QName {
	seen := make(map[QName]bool)

	var out []QName

	t.Walk(func(cur *Type) {
		for _, ft := range cur.FieldTypes() {
			if !ft.IsDependency() || (skipCircular && ft.Circular) || seen[ft.QName] {
				continue
			}

			seen[ft.QName] = true
			out = append(out, ft.QName)
		}
	})

	return out
}

// DependencyRefs returns the handles referenced by t or its inner Types,
// excluding natives and forward references.
func (t *Type) DependencyRefs() []Handle {
	seen := make(map[Handle]bool)

	var out []Handle

	t.Walk(func(cur *Type) {
		for _, ft := range cur.FieldTypes() {
			if !ft.IsDependency() || ft.Reference.IsZero() || seen[ft.Reference] {
				continue
			}

			seen[ft.Reference] = true
			out = append(out, ft.Reference)
		}
	})

	return out
}

// Clone returns a deep copy of t and its inner Types. Every Type in the copy
// gets a fresh Handle, and references inside the copy that pointed at the
// original tree are remapped onto the copy.
func (t *Type) Clone() *Type {
	remap := make(map[Handle]Handle)
	root := cloneTree(t, remap)

	root.Walk(func(cur *Type) {
		for _, ft := range cur.FieldTypes() {
			if ft.Reference.IsZero() {
				continue
			}

			if h, ok := remap[ft.Reference]; ok {
				ft.Reference = h
			}
		}
	})

	return root
}

func cloneTree(t *Type, remap map[Handle]Handle) *Type {
	c := *t
	c.ID = NewHandle()

	if !t.ID.IsZero() {
		remap[t.ID] = c.ID
	}

	if t.NSMap != nil {
		c.NSMap = make(map[string]string, len(t.NSMap))
		for k, v := range t.NSMap {
			c.NSMap[k] = v
		}
	}

	c.Fields = make([]*Field, len(t.Fields))
	for i, f := range t.Fields {
		c.Fields[i] = f.Clone()
	}

	c.Extensions = make([]*Extension, len(t.Extensions))
	for i, ext := range t.Extensions {
		c.Extensions[i] = ext.Clone()
	}

	c.Inner = make([]*Type, len(t.Inner))
	for i, inner := range t.Inner {
		c.Inner[i] = cloneTree(inner, remap)
	}

	c.Substitutions = append([]QName(nil), t.Substitutions...)

	return &c
}
