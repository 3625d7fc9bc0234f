package errors

import (
	"bytes"
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput       = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON      = errors.New("invalid JSON format")
	ErrMultipleJSON     = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound     = errors.New("file not found")
	ErrFileEmpty        = errors.New("file is empty")
	ErrNoInput          = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath  = errors.New("invalid file path")
	ErrSourceUnreadable = errors.New("JSON source cannot be read")
	ErrNotParsed        = errors.New("JSON document has not been parsed")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownView      = errors.New("unknown view")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeSource   ErrorType = "source"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeState    ErrorType = "state"
	ErrorTypeArgument ErrorType = "argument"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// SyntaxError describes malformed JSON. Line and Column are 1-based,
// Offset is the byte offset of the offending character.
type SyntaxError struct {
	Line   int
	Column int
	Offset int64
	Detail string
}

// NewSyntaxError locates offset within data. The offset follows the
// encoding/json convention of counting the bytes read before the error
// was detected, so the offending byte sits at offset-1.
func NewSyntaxError(data []byte, offset int64, detail string) *SyntaxError {
	pos := offset - 1
	if pos < 0 {
		pos = 0
	}
	if pos > int64(len(data)) {
		pos = int64(len(data))
	}
	prefix := data[:pos]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	column := int(pos) - bytes.LastIndexByte(prefix, '\n')
	return &SyntaxError{
		Line:   line,
		Column: column,
		Offset: pos,
		Detail: detail,
	}
}

// Error implements error interface
func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("JSON syntax error in the specified source at line %d, column %d", e.Line, e.Column)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap makes every SyntaxError match ErrInvalidJSON
func (e *SyntaxError) Unwrap() error {
	return ErrInvalidJSON
}

// AsSyntaxError extracts the SyntaxError carried by err, if any
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var syntaxErr *SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr, true
	}
	return nil, false
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewSourceError creates a new error for a JSON source that failed while being read.
// The result always matches ErrSourceUnreadable.
func NewSourceError(message string, err error) *AppError {
	wrapped := ErrSourceUnreadable
	if err != nil {
		wrapped = fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return &AppError{
		Type:    ErrorTypeSource,
		Message: message,
		Err:     wrapped,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewStateError creates a new error for an operation attempted before parsing
func NewStateError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeState,
		Message: message,
		Err:     ErrNotParsed,
	}
}

// NewArgumentError creates a new error for invalid caller-supplied arguments
func NewArgumentError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeArgument,
		Message: message,
		Err:     ErrInvalidArgument,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeOutput,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeSource:
			return fmt.Sprintf("Read error: %s", appErr.Message)
		case ErrorTypeParsing:
			if syntaxErr, ok := AsSyntaxError(appErr); ok {
				return fmt.Sprintf("JSON parsing error: %s", syntaxErr.Error())
			}
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeState:
			return fmt.Sprintf("Usage error: %s", appErr.Message)
		case ErrorTypeArgument:
			return fmt.Sprintf("Invalid argument: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON document."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrNotParsed) {
		return "Error: The JSON document must be parsed before it can be flattened."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
