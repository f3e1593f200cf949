package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps err with a code and message. The classification of a wrapped
// Error is preserved; otherwise the code's default applies.
// Returns nil if err is nil.
//
// Example:
//
//	return errors.Wrap(fs.ErrNotExist, errors.CodeNotFound, "no provider claims path")
func Wrap(err error, code ErrorCode, message string) Error {
	return WrapWithContext(err, code, message, nil)
}

// Wrapf wraps err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) Error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps err and attaches context in one step. The context
// map is copied. Returns nil if err is nil.
//
// Example:
//
//	return errors.WrapWithContext(syscall.EXDEV, errors.CodeCrossDevice, "rename across providers",
//	    map[string]interface{}{"source": src, "target": dst})
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) Error {
	if err == nil {
		return nil
	}

	classification := getDefaultClassification(code)
	var inner Error
	if errors.As(err, &inner) {
		classification = inner.Classification()
	}

	var contextCopy map[string]interface{}
	if ctx != nil {
		contextCopy = copyContext(ctx)
	}

	return &vfsError{
		code:           code,
		classification: classification,
		message:        message,
		context:        contextCopy,
		cause:          err,
	}
}
