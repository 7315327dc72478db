package domain

import "errors"

// Common errors
var (
	ErrNoFileProvided = errors.New("no file uploaded")
	ErrAssetExists    = errors.New("asset already exists")
)

// ProviderError wraps any failure surfaced by the image provider.
// Error returns the provider's own message text.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "provider upload failed"
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps err as a ProviderError unless it already is one
func NewProviderError(provider string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{Provider: provider, Message: err.Error(), Err: err}
}
