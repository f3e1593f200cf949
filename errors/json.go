package errors

import (
	"encoding/json"
)

// ErrorResponse is a flat, serializable view of an error. The wrapped cause
// chain is left out; only the outermost code, message and context appear.
type ErrorResponse struct {
	// Code is the error code identifying the failure.
	Code string `json:"code"`

	// Message is the human-readable message.
	Message string `json:"message"`

	// Classification is RETRYABLE or PERMANENT.
	Classification string `json:"classification"`

	// Context holds metadata such as the offending path. Omitted if empty.
	Context map[string]interface{} `json:"context,omitempty"`
}

// ToJSON converts any error to an ErrorResponse. Plain errors become
// CodeUnknown with their Error() text as the message. Returns nil if err is
// nil.
func ToJSON(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	message := err.Error()
	var context map[string]interface{}

	var e Error
	if As(err, &e) {
		message = e.Message()
		context = e.Context()
	}

	return &ErrorResponse{
		Code:           string(GetCode(err)),
		Message:        message,
		Classification: string(GetClassification(err)),
		Context:        context,
	}
}

// MarshalJSON lets an Error be passed to json.Marshal directly.
func (e *vfsError) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(&ErrorResponse{
		Code:           string(e.code),
		Message:        e.message,
		Classification: string(e.classification),
		Context:        e.context,
	})
	if err != nil {
		return nil, &vfsError{
			code:           CodeInternal,
			classification: ClassificationPermanent,
			message:        "failed to marshal error response",
			cause:          err,
		}
	}
	return data, nil
}
