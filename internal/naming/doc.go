// Package naming provides the identifier normalization used for name
// conflict detection and for deriving output module names.
//
// Two names conflict when their Key is equal: keys are case-folded and
// stripped of every separator and punctuation rune.
package naming
