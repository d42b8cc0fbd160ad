// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrNoHistory        = errors.New("no price history available")
	ErrInvalidHorizon   = errors.New("horizon must be between 1 and 365 days")
	ErrInvalidLookahead = errors.New("lookahead must be at least 1 day")
	ErrProviderDown     = errors.New("market data provider unavailable")
	ErrNotConfigured    = errors.New("required credential not configured")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
	ErrConfigInvalid    = errors.New("invalid configuration")
)

// ProviderError represents an error from the market data backend.
type ProviderError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider error [%s] status %d: %s: %v", e.Endpoint, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("provider error [%s] status %d: %s", e.Endpoint, e.Status, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError.
func NewProviderError(endpoint string, status int, message string, err error) *ProviderError {
	return &ProviderError{
		Endpoint: endpoint,
		Status:   status,
		Message:  message,
		Err:      err,
	}
}

// GeneratorError represents a failure of one interpretation provider.
type GeneratorError struct {
	Provider string
	Err      error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generator error [%s]: %v", e.Provider, e.Err)
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}

// NewGeneratorError creates a new GeneratorError.
func NewGeneratorError(provider string, err error) *GeneratorError {
	return &GeneratorError{Provider: provider, Err: err}
}
