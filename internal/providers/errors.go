package providers

import "fmt"

// ModelCallError wraps a failed model provider call. It is fatal to the
// conversation turn that issued it: the engine surfaces it to the caller
// instead of retrying.
type ModelCallError struct {
	Provider string
	Kind     string // "http_error", "empty_response", "stream_error", ...
	Err      error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("%s model call failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ModelCallError) Unwrap() error {
	return e.Err
}
