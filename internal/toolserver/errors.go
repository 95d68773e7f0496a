package toolserver

import "fmt"

// DiscoveryError wraps a failed tool-catalog fetch or parse. The catalog is
// left unchanged when Refresh returns one.
type DiscoveryError struct {
	Server string
	Err    error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("tool discovery against %s failed: %v", e.Server, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}
