package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a collection or card does not exist
var ErrNotFound = errors.New("not found")

// ConfigurationError reports an integration bug in the directives handed to the engine,
// such as an unknown sort option or a malformed filter directive. It is always returned
// to the caller and never turned into an empty or unfiltered result.
type ConfigurationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(field, value, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Message: message}
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// DataError reports a single malformed record, e.g. a card with an unparseable date.
// The record is left out of date-dependent computations and processing continues.
type DataError struct {
	CardID string
	Field  string
	Err    error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("card %q: %s: %v", e.CardID, e.Field, e.Err)
}

func (e *DataError) Unwrap() error {
	return e.Err
}
