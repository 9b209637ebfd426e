package ir

import (
	"fmt"

	"schema-compiler/internal/common"
)

// Tag identifies the schema construct a Type or Field originates from.
type Tag int

const (
	TagUnknown Tag = iota
	TagElement
	TagComplexType
	TagSimpleType
	TagAttribute
	TagAttributeGroup
	TagGroup
	TagEnumeration
	TagExtension
	TagRestriction
	TagUnion
	TagList
	TagAny
	TagAnyAttribute
	TagChoice
	TagSequence
	TagBindingMessage
	TagBindingOperation
	TagBindingFault
	TagSchema
	TagOverride
	TagRedefine
)

var tagNames = map[Tag]string{
	TagElement:          "element",
	TagComplexType:      "complexType",
	TagSimpleType:       "simpleType",
	TagAttribute:        "attribute",
	TagAttributeGroup:   "attributeGroup",
	TagGroup:            "group",
	TagEnumeration:      "enumeration",
	TagExtension:        "extension",
	TagRestriction:      "restriction",
	TagUnion:            "union",
	TagList:             "list",
	TagAny:              "any",
	TagAnyAttribute:     "anyAttribute",
	TagChoice:           "choice",
	TagSequence:         "sequence",
	TagBindingMessage:   "bindingMessage",
	TagBindingOperation: "bindingOperation",
	TagBindingFault:     "bindingFault",
	TagSchema:           "schema",
	TagOverride:         "override",
	TagRedefine:         "redefine",
}

// String returns the schema construct name.
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}

	return common.UnknownStr
}

// ParseTag returns the Tag for a construct name.
func ParseTag(s string) (Tag, error) {
	for tag, name := range tagNames {
		if name == s {
			return tag, nil
		}
	}

	return TagUnknown, fmt.Errorf("unknown tag %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	if len(text) == 0 || string(text) == common.UnknownStr {
		*t = TagUnknown
		return nil
	}

	parsed, err := ParseTag(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// Suffix returns the name suffix used to disambiguate colliding names of different tags.
func (t Tag) Suffix() string {
	switch t {
	case TagComplexType, TagSimpleType:
		return "Type"
	case TagAttribute, TagAnyAttribute:
		return "Attribute"
	case TagElement, TagAny:
		return "Element"
	case TagBindingMessage:
		return "Message"
	case TagBindingOperation:
		return "Operation"
	case TagBindingFault:
		return "Fault"
	default:
		return "Value"
	}
}
