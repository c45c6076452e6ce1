// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrOutOfRange is returned when a trade-history lookup has no
	// trade before the requested time, or when two trade fetches
	// cannot be spliced into one continuous window.
	ErrOutOfRange = errors.New("out of range")

	// ErrAmbiguousAuthor is returned when a feed author resolves to
	// zero or multiple tracked symbols.
	ErrAmbiguousAuthor = errors.New("author does not resolve to exactly one symbol")

	// ErrMonitorTooLate is returned when the time already elapsed at
	// task start exceeds the first monitoring horizon.
	ErrMonitorTooLate = errors.New("first monitoring horizon already passed")

	ErrConfigInvalid = errors.New("invalid configuration")
	ErrDataNotFound  = errors.New("data not found")
)

// FeedError represents an error from the social feed API.
type FeedError struct {
	Operation string
	Message   string
	Err       error
}

func (e *FeedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed error [%s]: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("feed error [%s]: %s", e.Operation, e.Message)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// NewFeedError creates a new FeedError.
func NewFeedError(operation, message string, err error) *FeedError {
	return &FeedError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// MarketError represents an error from the exchange API.
type MarketError struct {
	Operation string
	Symbol    string
	Err       error
}

func (e *MarketError) Error() string {
	return fmt.Sprintf("market error [%s] %s: %v", e.Operation, e.Symbol, e.Err)
}

func (e *MarketError) Unwrap() error {
	return e.Err
}

// NewMarketError creates a new MarketError.
func NewMarketError(operation, symbol string, err error) *MarketError {
	return &MarketError{
		Operation: operation,
		Symbol:    symbol,
		Err:       err,
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
