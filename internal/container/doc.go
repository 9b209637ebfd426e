// Package container holds the working set of Types during compilation and
// the step engine that drives handlers over it.
//
// Types are indexed by qualified name (several Types may share one before
// validation) and by Handle. A Step applies an ordered list of handlers to
// every Type; while a sequential step is active, Find processes the Type it
// returns for that step first, so handlers always see their dependencies in
// the state the step promises.
package container
