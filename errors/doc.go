// Package errors provides the structured errors returned by the virtual
// filesystem layer.
//
// Every error produced by the dispatch layer carries an ErrorCode that
// callers can branch on without string matching, a classification telling
// whether retrying could help, and optional context fields such as the
// offending path of a failed tree operation. Errors stay compatible with
// the standard library: errors.Is and errors.As walk through them, so a
// not-found error still satisfies errors.Is(err, fs.ErrNotExist) and a
// cross-provider rejection still satisfies errors.Is(err, syscall.EXDEV).
//
// Creating and wrapping:
//
//	err := errors.New(errors.CodeInvalidInput, "provider is nil")
//	err = errors.Wrap(fs.ErrNotExist, errors.CodeNotFound, "no provider claims path")
//	err = errors.WithContext(err, "path", "/mnt/x")
//
// Inspecting:
//
//	if errors.GetCode(err) == errors.CodeCrossDevice {
//	    // fall back to an explicit copy
//	}
//	p, _ := errors.ContextValue(err, "offending_path")
package errors
