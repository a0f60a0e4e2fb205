package models

import "fmt"

// AdapterErrorKind classifies source adapter failures.
type AdapterErrorKind string

const (
	AdapterUnavailable AdapterErrorKind = "unavailable" // network/HTTP failure
	AdapterAuth        AdapterErrorKind = "auth"        // rejected credentials
	AdapterDecode      AdapterErrorKind = "decode"      // unparseable payload
)

// AdapterError is the typed failure a source adapter returns for
// transport-level problems. "No data in window" is not an error:
// adapters return an empty slice for that.
type AdapterError struct {
	Provider string
	Kind     AdapterErrorKind
	Err      error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *AdapterError) Unwrap() error { return e.Err }

// NewAdapterError wraps err as a typed adapter failure.
func NewAdapterError(provider string, kind AdapterErrorKind, err error) *AdapterError {
	return &AdapterError{Provider: provider, Kind: kind, Err: err}
}
