package errors

import (
	"errors"
	"fmt"
)

var (
	ErrScanNotFound              = errors.New("scan not found")
	ErrScanInProgress            = errors.New("scan still in progress")
	ErrNoToolsSelected           = errors.New("no tools selected for the scan")
	ErrToolTimeout               = errors.New("tool timed out")
	ErrToolExecutionFailed       = errors.New("tool execution failed")
	ErrInvalidConfig             = errors.New("invalid configuration")
	ErrNotificationNotConfigured = errors.New("discord client not configured")
)

type ToolError struct {
	ToolName string
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.ToolName, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func NewToolError(toolName string, err error) *ToolError {
	return &ToolError{
		ToolName: toolName,
		Err:      err,
	}
}

// ValidationError is returned synchronously for input that is rejected
// before any scan record is created.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (value: %q): %s", e.Field, fmt.Sprint(e.Value), e.Message)
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value: %v): %s", e.Field, e.Value, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func NewConfigError(field string, value interface{}, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
