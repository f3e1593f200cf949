package errors

import "errors"

// WithContext returns a copy of err with one context field added.
// A plain error is first converted to an Error with CodeUnknown.
// Returns nil if err is nil.
func WithContext(err error, key string, value interface{}) Error {
	return WithContextMap(err, map[string]interface{}{key: value})
}

// WithContextMap returns a copy of err with the fields of ctx merged in.
// New fields override existing ones with the same key.
// Returns nil if err is nil.
func WithContextMap(err error, ctx map[string]interface{}) Error {
	if err == nil {
		return nil
	}

	base := asError(err)
	merged := make(map[string]interface{}, len(ctx))
	for k, v := range base.Context() {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}

	return &vfsError{
		code:           base.Code(),
		classification: base.Classification(),
		message:        base.Message(),
		context:        merged,
		cause:          base.Unwrap(),
	}
}

// WithClassification returns a copy of err with its classification replaced.
// Returns nil if err is nil.
func WithClassification(err error, classification ErrorClassification) Error {
	if err == nil {
		return nil
	}

	base := asError(err)
	return &vfsError{
		code:           base.Code(),
		classification: classification,
		message:        base.Message(),
		context:        base.Context(),
		cause:          base.Unwrap(),
	}
}

// ContextValue looks up key in the context of the outermost Error in the
// chain that carries it.
func ContextValue(err error, key string) (interface{}, bool) {
	for err != nil {
		if e, ok := err.(Error); ok { //nolint:errorlint // walking the chain by hand
			if v, found := e.Context()[key]; found {
				return v, true
			}
		}
		err = errors.Unwrap(err)
	}
	return nil, false
}

func asError(err error) Error {
	var e Error
	if errors.As(err, &e) {
		return e
	}
	return &vfsError{
		code:           CodeUnknown,
		classification: ClassificationPermanent,
		message:        err.Error(),
		cause:          err,
	}
}
