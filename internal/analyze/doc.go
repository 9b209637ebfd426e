// Package analyze runs the compiler core over a set of raw Types.
//
// The flow is fixed:
//   - load the Types into a container
//   - validate duplicate definitions
//   - run the handler pipeline
//   - check cross-reference integrity
//   - resolve the imports of every output module
//
// Key types:
//   - Analyzer: configured entry point
//   - Result: the processed Types grouped into Modules
//   - Module: the sorted Types and imports of one output unit
package analyze
