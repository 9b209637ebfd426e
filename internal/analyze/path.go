package analyze

import (
	"strconv"
	"strings"
)

// TypePath builds a readable location inside a Type tree.
// Examples:
//   - "Order" for a root Type
//   - "Order.Items" for an inner Type
//   - "Order.Items.item" for a field of an inner Type
//   - "Order.item|product" for a choice of a compound field
//   - "Order.extension[0]" for a base reference
type TypePath struct {
	parts []string
}

// NewTypePath creates a TypePath rooted at a Type name.
func NewTypePath(root string) *TypePath {
	return &TypePath{parts: []string{root}}
}

// Child appends an inner Type or field name.
func (p *TypePath) Child(name string) *TypePath {
	return &TypePath{parts: append(append([]string{}, p.parts...), name)}
}

// Choice appends a choice of the last element.
func (p *TypePath) Choice(name string) *TypePath {
	parts := append([]string{}, p.parts...)
	parts[len(parts)-1] += "|" + name

	return &TypePath{parts: parts}
}

// Extension appends the i-th base reference.
func (p *TypePath) Extension(i int) *TypePath {
	return p.Child("extension[" + strconv.Itoa(i) + "]")
}

// String returns the full path string.
func (p *TypePath) String() string {
	return strings.Join(p.parts, ".")
}
