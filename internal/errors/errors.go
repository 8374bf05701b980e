package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// Core engine errors
	ErrorTypeParse    ErrorType = "parse"
	ErrorTypeSelector ErrorType = "invalid_selector"
	ErrorTypePosition ErrorType = "out_of_range_line"

	// Buffer and file errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Host protocol errors
	ErrorTypeProtocol ErrorType = "protocol"
)

// ErrEmptyBuffer marks a buffer holding only whitespace. It is a notice for
// the user rather than a failure.
var ErrEmptyBuffer = errors.New("Buffer is empty")

// ParseError represents a failure to turn buffer text into a syntax tree
type ParseError struct {
	Type       ErrorType
	BufferID   int
	Dialect    string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error. Line and column are 1-based.
func NewParseError(dialect string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		Dialect:    dialect,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithBuffer records the buffer that failed to parse
func (e *ParseError) WithBuffer(bufferID int) *ParseError {
	e.BufferID = bufferID
	return e
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s parse error: %v", e.Dialect, e.Underlying)
	}
	return fmt.Sprintf("%s parse error at %d:%d (near token %q): %v",
		e.Dialect, e.Line, e.Column, e.Token, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// SelectorError represents a selector that could not be compiled or evaluated.
// It is never returned for a valid selector that simply matched nothing.
type SelectorError struct {
	Type       ErrorType
	Selector   string
	Offset     int
	Underlying error
	Timestamp  time.Time
}

// NewSelectorError creates a new invalid selector error
func NewSelectorError(selector string, offset int, err error) *SelectorError {
	return &SelectorError{
		Type:       ErrorTypeSelector,
		Selector:   selector,
		Offset:     offset,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SelectorError) Error() string {
	return fmt.Sprintf("Invalid ESQuery selector: %s (at %d): %v", e.Selector, e.Offset, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SelectorError) Unwrap() error {
	return e.Underlying
}

// PositionError is returned when an editor position does not exist in the
// cached buffer snapshot. It points at a stale cursor/buffer pairing.
type PositionError struct {
	Type      ErrorType
	Line      int
	LineCount int
	Timestamp time.Time
}

// NewPositionError creates a new out-of-range line error
func NewPositionError(line, lineCount int) *PositionError {
	return &PositionError{
		Type:      ErrorTypePosition,
		Line:      line,
		LineCount: lineCount,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *PositionError) Error() string {
	return fmt.Sprintf("line %d out of range (buffer has %d lines)", e.Line, e.LineCount)
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if errors.Is(err, fs.ErrPermission) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// ProtocolError represents a malformed message on a host channel
type ProtocolError struct {
	Type       ErrorType
	Method     string
	Underlying error
}

// NewProtocolError creates a new protocol error
func NewProtocolError(method string, err error) *ProtocolError {
	return &ProtocolError{Type: ErrorTypeProtocol, Method: method, Underlying: err}
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("protocol error: %v", e.Underlying)
	}
	return fmt.Sprintf("protocol error in %s: %v", e.Method, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ProtocolError) Unwrap() error {
	return e.Underlying
}

// IsParse reports whether err is (or wraps) a ParseError
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsSelector reports whether err is (or wraps) a SelectorError
func IsSelector(err error) bool {
	var se *SelectorError
	return errors.As(err, &se)
}

// IsPosition reports whether err is (or wraps) a PositionError
func IsPosition(err error) bool {
	var pe *PositionError
	return errors.As(err, &pe)
}
