package provider

import (
	"errors"
	"fmt"
)

// ErrImageNotFound is matched (via errors.Is) by ImageNotFoundError.
var ErrImageNotFound = errors.New("image not found")

// ImageNotFoundError reports that an image family has no current image.
// It is fatal and never retried.
type ImageNotFoundError struct {
	Project string
	Family  string
	Err     error
}

func (e *ImageNotFoundError) Error() string {
	msg := fmt.Sprintf("no image found for family %q in project %q", e.Family, e.Project)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrImageNotFound) succeed.
func (e *ImageNotFoundError) Is(target error) bool {
	return target == ErrImageNotFound
}

func (e *ImageNotFoundError) Unwrap() error {
	return e.Err
}

// TransientNetworkError reports a remote call that failed at the transport
// level (or with a retryable provider status). Retrying is the caller's call.
type TransientNetworkError struct {
	Op   string
	Code int
	Err  error
}

func (e *TransientNetworkError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: transient provider error (HTTP %d): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: transient network error: %v", e.Op, e.Err)
}

func (e *TransientNetworkError) Unwrap() error {
	return e.Err
}

// Temporary marks the error as retryable.
func (e *TransientNetworkError) Temporary() bool {
	return true
}

// ProviderRejectedError reports a request the provider refused, such as a
// malformed body, a permission problem or a missing resource. Not retryable.
type ProviderRejectedError struct {
	Op      string
	Code    int
	Message string
}

func (e *ProviderRejectedError) Error() string {
	return fmt.Sprintf("%s: rejected by provider (HTTP %d): %s", e.Op, e.Code, e.Message)
}

// OperationFailedError reports an operation that reached Done with an
// embedded error detail.
type OperationFailedError struct {
	Operation OperationHandle
	Detail    ErrorDetail
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("operation %s failed: %s", e.Operation.Name, e.Detail.String())
}

// IsTransient reports whether err (or anything it wraps) is a TransientNetworkError.
func IsTransient(err error) bool {
	var t *TransientNetworkError
	return errors.As(err, &t)
}
