package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCompile is the root of every fatal compile error.
var ErrCompile = errors.New("compile error")

// Rules violated by fatal compile errors.
var (
	ErrDuplicateType       = errors.New("duplicate type")
	ErrMissingReference    = errors.New("missing reference")
	ErrCrossReference      = errors.New("cross reference")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrCircularModules     = errors.New("circular module dependency")
	ErrInnerNotFound       = errors.New("inner type not found")
	ErrDependencyCycle     = errors.New("dependency cycle")
)

var ruleCodes = map[error]string{
	ErrDuplicateType:       CodeDuplicateName,
	ErrMissingReference:    CodeMissingReference,
	ErrCrossReference:      CodeCrossReference,
	ErrUnresolvedReference: CodeUnresolvedReference,
	ErrCircularModules:     CodeCircularModules,
	ErrInnerNotFound:       CodeInnerNotFound,
	ErrDependencyCycle:     CodeDependencyCycle,
}

// CompileError aborts a run. It names the violated rule and the offending
// qualified names.
type CompileError struct {
	Rule   error
	QNames []string
	Detail string
}

// NewCompileError builds a CompileError.
func NewCompileError(rule error, detail string, qnames ...string) *CompileError {
	return &CompileError{Rule: rule, QNames: qnames, Detail: detail}
}

func (e *CompileError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%v: %v", ErrCompile, e.Rule)

	if len(e.QNames) > 0 {
		fmt.Fprintf(&b, ": `%s`", strings.Join(e.QNames, "`, `"))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	return b.String()
}

// Unwrap exposes both ErrCompile and the rule to errors.Is.
func (e *CompileError) Unwrap() []error {
	return []error{ErrCompile, e.Rule}
}

// Code returns the diagnostic code of the violated rule.
func (e *CompileError) Code() string {
	if code, ok := ruleCodes[e.Rule]; ok {
		return code
	}

	return CodeCompileFailed
}
