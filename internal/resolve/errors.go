package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes resolution errors. All of them are fatal for the
// whole run: a half-resolved architecture could silently drive incorrect
// downstream code generation.
type ErrorCode string

const (
	// CodeParse indicates malformed record source.
	CodeParse ErrorCode = "PARSE_ERROR"

	// CodeReference indicates a dangling $inherits target: a missing record
	// file or an unresolvable pointer segment.
	CodeReference ErrorCode = "REFERENCE_ERROR"

	// CodeCycle indicates a self-referential inheritance chain.
	CodeCycle ErrorCode = "CYCLE_ERROR"
)

// Error is a resolution failure with file and structural-path context.
type Error struct {
	Code    ErrorCode
	File    string // record path relative to the architecture root
	Path    string // pointer path within the record, "" when not applicable
	Message string
	Err     error // underlying cause, optional
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.File != "" {
		fmt.Fprintf(&b, " (file=%s", e.File)
		if e.Path != "" {
			fmt.Fprintf(&b, ", path=%s", e.Path)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewParseError creates an Error for malformed record source.
func NewParseError(file, message string, err error) *Error {
	return &Error{Code: CodeParse, File: file, Message: message, Err: err}
}

// NewReferenceError creates an Error for a dangling reference target.
func NewReferenceError(file, path, message string) *Error {
	return &Error{Code: CodeReference, File: file, Path: path, Message: message}
}

// NewCycleError creates an Error describing an inheritance cycle. The chain
// lists the in-progress resolution targets, ending with the one revisited.
func NewCycleError(chain []string) *Error {
	return &Error{
		Code:    CodeCycle,
		File:    chain[len(chain)-1],
		Message: fmt.Sprintf("inheritance cycle: %s", strings.Join(chain, " -> ")),
	}
}

// hasCode reports whether err is or wraps an Error with the given code.
func hasCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsParseError reports whether err is a parse error.
func IsParseError(err error) bool { return hasCode(err, CodeParse) }

// IsReferenceError reports whether err is a dangling-reference error.
func IsReferenceError(err error) bool { return hasCode(err, CodeReference) }

// IsCycleError reports whether err is a cycle detection error.
func IsCycleError(err error) bool { return hasCode(err, CodeCycle) }
