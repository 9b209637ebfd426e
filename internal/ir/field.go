package ir

// FieldType is a reference from a Field or Extension to a native datatype,
// to an inner Type of the declaring Type (forward) or to another Type in the
// container (dependency).
type FieldType struct {
	QName       QName  `json:"qname" yaml:"qname"`
	Reference   Handle `json:"reference,omitempty" yaml:"reference,omitempty"`
	Native      bool   `json:"native,omitempty" yaml:"native,omitempty"`
	Forward     bool   `json:"forward,omitempty" yaml:"forward,omitempty"`
	Circular    bool   `json:"circular,omitempty" yaml:"circular,omitempty"`
	Substituted bool   `json:"substituted,omitempty" yaml:"substituted,omitempty"`
}

// NewNative returns a reference to a built-in datatype.
func NewNative(q QName) *FieldType {
	return &FieldType{QName: q, Native: true}
}

// NewDependency returns an unbound reference to a Type elsewhere in the container.
func NewDependency(q QName) *FieldType {
	return &FieldType{QName: q}
}

// NewForward returns a reference to an inner Type of the declaring Type.
func NewForward(q QName, ref Handle) *FieldType {
	return &FieldType{QName: q, Forward: true, Reference: ref}
}

// IsDependency reports whether the reference points at another root Type.
func (t *FieldType) IsDependency() bool {
	return !t.Native && !t.Forward
}

// Kind returns the native DataKind, or KindUnknown for Type references.
func (t *FieldType) Kind() DataKind {
	if !t.Native {
		return KindUnknown
	}

	k, _ := NativeKind(t.QName)

	return k
}

// Clone returns a copy.
func (t *FieldType) Clone() *FieldType {
	c := *t
	return &c
}

// Extension is a base reference of a Type.
type Extension struct {
	Tag          Tag          `json:"tag" yaml:"tag"`
	Type         *FieldType   `json:"type" yaml:"type"`
	Restrictions Restrictions `json:"restrictions" yaml:"restrictions"`
}

// Clone returns a deep copy.
func (e *Extension) Clone() *Extension {
	return &Extension{
		Tag:          e.Tag,
		Type:         e.Type.Clone(),
		Restrictions: e.Restrictions.Clone(),
	}
}

// EnumValue binds a field default to a member of an enumeration Type.
type EnumValue struct {
	Type   QName  `json:"type" yaml:"type"`
	Ref    Handle `json:"ref" yaml:"ref"`
	Member string `json:"member" yaml:"member"`
}

// Field is one member of a Type.
type Field struct {
	Tag               Tag          `json:"tag" yaml:"tag"`
	Name              string       `json:"name" yaml:"name"`
	LocalName         string       `json:"localName,omitempty" yaml:"localName,omitempty"`
	Index             int          `json:"index" yaml:"index"`
	Types             []*FieldType `json:"types,omitempty" yaml:"types,omitempty"`
	Choices           []*Field     `json:"choices,omitempty" yaml:"choices,omitempty"`
	Namespace         string       `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Restrictions      Restrictions `json:"restrictions" yaml:"restrictions"`
	Default           string       `json:"default,omitempty" yaml:"default,omitempty"`
	Fixed             bool         `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Mixed             bool         `json:"mixed,omitempty" yaml:"mixed,omitempty"`
	Help              string       `json:"help,omitempty" yaml:"help,omitempty"`
	Wrapper           string       `json:"wrapper,omitempty" yaml:"wrapper,omitempty"`
	SubstitutionGroup string       `json:"substitutionGroup,omitempty" yaml:"substitutionGroup,omitempty"`
	DefaultEnum       *EnumValue   `json:"defaultEnum,omitempty" yaml:"defaultEnum,omitempty"`
}

// IsAttribute reports whether the field is an attribute or attribute wildcard.
func (f *Field) IsAttribute() bool {
	return f.Tag == TagAttribute || f.Tag == TagAnyAttribute
}

// IsEnumeration reports whether the field is an enumeration member.
func (f *Field) IsEnumeration() bool {
	return f.Tag == TagEnumeration
}

// IsWildcard reports whether the field is an element or attribute wildcard.
func (f *Field) IsWildcard() bool {
	return f.Tag == TagAny || f.Tag == TagAnyAttribute
}

// IsGroup reports whether the field is a group or attribute group reference.
func (f *Field) IsGroup() bool {
	return f.Tag == TagGroup || f.Tag == TagAttributeGroup
}

// IsChoice reports whether the field is a compound field.
func (f *Field) IsChoice() bool {
	return f.Tag == TagChoice
}

// IsElement reports whether the field is an element particle.
func (f *Field) IsElement() bool {
	return f.Tag == TagElement
}

// IsText reports whether the field holds the simple content of its Type.
func (f *Field) IsText() bool {
	switch f.Tag {
	case TagExtension, TagRestriction, TagUnion, TagList:
		return true
	default:
		return false
	}
}

// IsList reports whether the field may repeat.
func (f *Field) IsList() bool {
	return f.Restrictions.IsList()
}

// IsOptional reports whether the field may be absent.
func (f *Field) IsOptional() bool {
	return f.Restrictions.IsOptional()
}

// IsProhibited reports whether the field must be absent.
func (f *Field) IsProhibited() bool {
	return f.Restrictions.IsProhibited()
}

// IsNillable reports whether the field accepts an explicit nil.
func (f *Field) IsNillable() bool {
	return f.Restrictions.Nillable
}

// AllTypes returns the field's types followed by the types of its choices.
func (f *Field) AllTypes() []*FieldType {
	out := append([]*FieldType(nil), f.Types...)
	for _, choice := range f.Choices {
		out = append(out, choice.AllTypes()...)
	}

	return out
}

// Clone returns a deep copy; no FieldType or choice is shared with f.
func (f *Field) Clone() *Field {
	c := *f
	c.Restrictions = f.Restrictions.Clone()
	c.Types = make([]*FieldType, len(f.Types))

	for i, t := range f.Types {
		c.Types[i] = t.Clone()
	}

	if f.Choices != nil {
		c.Choices = make([]*Field, len(f.Choices))
		for i, choice := range f.Choices {
			c.Choices[i] = choice.Clone()
		}
	}

	if f.DefaultEnum != nil {
		v := *f.DefaultEnum
		c.DefaultEnum = &v
	}

	return &c
}
