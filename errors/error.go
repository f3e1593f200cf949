package errors

import "fmt"

// vfsError is the concrete Error. Construction goes through package functions.
type vfsError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]interface{}
	cause          error
}

// Error formats as "[CODE] message" or "[CODE] message: cause".
func (e *vfsError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *vfsError) Code() ErrorCode { return e.code }

func (e *vfsError) Classification() ErrorClassification { return e.classification }

func (e *vfsError) Message() string { return e.message }

// Context returns a copy of the context map so callers cannot mutate it.
func (e *vfsError) Context() map[string]interface{} {
	if e.context == nil {
		return nil
	}
	return copyContext(e.context)
}

func (e *vfsError) Unwrap() error { return e.cause }

func copyContext(ctx map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
