package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetCode extracts the code of the outermost Error in the chain.
// Returns CodeUnknown for nil or plain errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var e Error
	if stderrors.As(err, &e) {
		return e.Code()
	}
	return CodeUnknown
}

// GetClassification extracts the classification of the outermost Error in
// the chain. Returns ClassificationPermanent for nil or plain errors.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationPermanent
	}

	var e Error
	if stderrors.As(err, &e) {
		return e.Classification()
	}
	return ClassificationPermanent
}

// IsRetryable returns true if the error is classified as retryable.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}
