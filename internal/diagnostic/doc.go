// Package diagnostic provides structured warnings and the fatal compile
// error taxonomy of the schema compiler.
//
// Key capabilities:
//   - Recoverable warnings with a code, the owning type and field
//   - Fatal CompileError values carrying the violated rule and qualified names
//   - Aggregation of diagnostics across pipeline stages
package diagnostic
