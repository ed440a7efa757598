package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// PlatformError is an error carrying an ErrorCode, a human message and
// optional structured context. It wraps the underlying cause, if any.
type PlatformError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
	Cause   error
}

// Error implements the error interface.
func (e *PlatformError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chaining support.
func (e *PlatformError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a PlatformError with the same code.
// This allows errors.Is(err, errors.New(CodeUploadFailed, "")) style checks.
func (e *PlatformError) Is(target error) bool {
	var pe *PlatformError
	if !errors.As(target, &pe) {
		return false
	}
	return pe.Code == e.Code && pe.Message == ""
}

// New creates a PlatformError with the given code and message.
func New(code ErrorCode, message string) *PlatformError {
	return &PlatformError{Code: code, Message: message}
}

// Newf creates a PlatformError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *PlatformError {
	return &PlatformError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message. Returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &PlatformError{Code: code, Message: message, Cause: err}
}

// WrapWithContext wraps err with a code, message and structured context.
// Returns nil when err is nil.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &PlatformError{Code: code, Message: message, Context: ctx, Cause: err}
}

// GetCode returns the code of the outermost PlatformError in err's chain,
// or CodeUnknown if there is none.
func GetCode(err error) ErrorCode {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeUnknown
}

// HasCode reports whether any PlatformError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var pe *PlatformError
		if !errors.As(err, &pe) {
			return false
		}
		if pe.Code == code {
			return true
		}
		err = pe.Cause
	}
	return false
}

// IsFatal reports whether err aborts a mirror run.
func IsFatal(err error) bool {
	return fatalCodes[GetCode(err)]
}

// IsRetryable reports whether err is worth retrying on a later run.
func IsRetryable(err error) bool {
	return retryableCodes[GetCode(err)]
}

// Is, As and Join re-export the standard library helpers so callers only
// need to import this package.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)
