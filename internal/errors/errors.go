package errors

import "fmt"

// Error kinds for the brilt toolkit. The core never terminates the
// process; everything surfaces as one of these.
//
// Error code ranges follow the compiler convention:
// E0001-E0099: analysis invariant errors
// E0100-E0199: program structure / parse errors

// Kind classifies a toolkit error.
type Kind int

const (
	// MalformedProgram: parse failure, or a terminator referencing an
	// unknown label.
	MalformedProgram Kind = iota
	// Diagnostic: a report about the input program (e.g. uninitialized
	// variables) rather than a toolkit failure.
	Diagnostic
	// InvariantViolation: the input IR is inconsistent, e.g. a variable
	// typed differently along two paths.
	InvariantViolation
)

const (
	// E0003: a variable typed inconsistently along two paths.
	CodeInconsistentType = "E0003"

	// E0017: use of a possibly-uninitialized variable.
	CodeUninitializedVariable = "E0017"

	// E0100: malformed program (parse failure or unresolved label).
	CodeMalformedProgram = "E0100"
)

// Error is a typed toolkit error with a stable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is matches any *Error of the same kind, so callers can test
// errors.Is(err, errors.ErrMalformedProgram).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

// Kind sentinels for errors.Is.
var (
	ErrMalformedProgram   = &Error{Kind: MalformedProgram}
	ErrDiagnostic         = &Error{Kind: Diagnostic}
	ErrInvariantViolation = &Error{Kind: InvariantViolation}
)

// MalformedProgramf builds a MalformedProgram error.
func MalformedProgramf(format string, args ...any) *Error {
	return &Error{
		Kind:    MalformedProgram,
		Code:    CodeMalformedProgram,
		Message: fmt.Sprintf(format, args...),
	}
}

// Diagnosticf builds a Diagnostic error.
func Diagnosticf(format string, args ...any) *Error {
	return &Error{
		Kind:    Diagnostic,
		Code:    CodeUninitializedVariable,
		Message: fmt.Sprintf(format, args...),
	}
}

// InvariantViolationf builds an InvariantViolation error.
func InvariantViolationf(format string, args ...any) *Error {
	return &Error{
		Kind:    InvariantViolation,
		Code:    CodeInconsistentType,
		Message: fmt.Sprintf(format, args...),
	}
}
