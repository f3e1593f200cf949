package errors

// ErrorCode represents a specific error condition.
// Codes are strings so they stay readable in logs.
type ErrorCode string

const (
	// CodeNotFound indicates that no provider claims a path, that the owning
	// provider lacks the requested capability, or that the target is missing.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates the target already exists.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeCrossDevice indicates a binary operation whose two paths are owned
	// by different providers. It corresponds to EXDEV.
	CodeCrossDevice ErrorCode = "CROSS_DEVICE"

	// CodeInvalidInput indicates a malformed argument, such as a nil provider.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodePermission indicates the provider denied access.
	CodePermission ErrorCode = "PERMISSION_DENIED"

	// CodeUnsupported indicates an operation the backend cannot perform.
	CodeUnsupported ErrorCode = "UNSUPPORTED"

	// CodeStaleReference indicates a cached resolution points at a provider
	// that is no longer registered. It never escapes the dispatch layer.
	CodeStaleReference ErrorCode = "STALE_REFERENCE"

	// CodeNetwork indicates a remote backend could not be reached.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeUnavailable indicates a backend is temporarily unavailable.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// CodeInternal indicates an internal error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)
