package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential     = errors.New("missing credential")
	ErrProviderTimeout       = errors.New("provider timed out")
	ErrProviderRejected      = errors.New("provider rejected request")
	ErrAllProvidersFailed    = errors.New("all providers failed")
	ErrInvalidResponseFormat = errors.New("invalid response format")
	ErrNoInputProvided       = errors.New("no input provided")
)

// ProviderError ties a failure to the external service that produced it.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err}
}
