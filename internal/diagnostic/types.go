package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"schema-compiler/internal/common"
)

// Diagnostics holds all diagnostic information from a compiler run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity `json:"severity"`
	// Code is a unique identifier for this type of diagnostic.
	Code string `json:"code"`
	// Message is the human-readable description.
	Message string `json:"message"`
	// Type identifies which type this relates to (if any).
	Type string `json:"type,omitempty"`
	// Field identifies which field this relates to (if any).
	Field string `json:"field,omitempty"`
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typeName, fieldName string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: DiagnosticError,
		Code:     code,
		Message:  message,
		Type:     typeName,
		Field:    fieldName,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typeName, fieldName string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Code:     code,
		Message:  message,
		Type:     typeName,
		Field:    fieldName,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, typeName, fieldName string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Code:     code,
		Message:  message,
		Type:     typeName,
		Field:    fieldName,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// RecordError adds err as an error diagnostic. A CompileError is coded by
// its rule and attributed to its first qualified name.
func (d *Diagnostics) RecordError(err error) {
	code, typeName := CodeCompileFailed, ""

	var ce *CompileError
	if errors.As(err, &ce) {
		code = ce.Code()
		if len(ce.QNames) > 0 {
			typeName = ce.QNames[0]
		}
	}

	d.AddError(code, err.Error(), typeName, "")
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Type != "" {
		prefix = append(prefix, "["+d.Type+"]")
	}

	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}

// MarshalText implements encoding.TextMarshaler.
func (s DiagnosticSeverity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Warning codes emitted by the pipeline.
const (
	CodeDuplicateType       = "duplicate_type"
	CodeMissingExtension    = "missing_extension"
	CodeMissingSubstitution = "missing_substitution"
	CodeResetAbsentType     = "reset_absent_type"
	CodeDefaultEnumMismatch = "default_enum_mismatch"
	CodeDefaultTypeMismatch = "default_type_mismatch"
	CodeNamespaceOverride   = "namespace_override"
	CodeNoGeneratableTypes  = "no_generatable_types"
	CodeProhibitedOverride  = "prohibited_override"
	CodeRenamedType         = "renamed_type"
	CodeRenamedField        = "renamed_field"
	CodeDroppedInvalidType  = "dropped_invalid_type"
	CodeMergedGlobalType    = "merged_global_type"
	CodeUnwrappedList       = "unwrapped_list"
	CodeRemovedCircularBase = "removed_circular_base"
	CodeSubstitutionCycle   = "substitution_cycle"
)

// Error codes of fatal errors.
const (
	CodeCompileFailed       = "compile_failed"
	CodeDuplicateName       = "duplicate_name"
	CodeMissingReference    = "missing_reference"
	CodeCrossReference      = "cross_reference"
	CodeUnresolvedReference = "unresolved_reference"
	CodeCircularModules     = "circular_modules"
	CodeInnerNotFound       = "inner_not_found"
	CodeDependencyCycle     = "dependency_cycle"
)
