// Package ir defines the intermediate representation shared by the
// front-ends, the normalization pipeline and the dependency resolver.
//
// Key types:
//   - Type: one generated record or enumeration
//   - Field: one member of a Type
//   - FieldType: a reference from a Field or Extension to a Type or a native datatype
//   - Extension: a base reference of a Type
//   - Restrictions: occurrence bounds, structural markers and facets
//
// Identity is carried by Handle values, not by names: qualified names are
// rewritten several times while the pipeline runs, handles never are.
package ir
