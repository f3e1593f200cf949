package errors

import "fmt"

// New creates an Error with the given code and message.
//
// Example:
//
//	err := errors.New(errors.CodeInvalidInput, "provider is nil")
func New(code ErrorCode, message string) Error {
	return &vfsError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
	}
}

// Newf creates an Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) Error {
	return New(code, fmt.Sprintf(format, args...))
}
