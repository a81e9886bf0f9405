// Package errors provides custom error types for the local inference engine client.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEngineNotRunning = errors.New("inference engine is not running")
	ErrModelNotFound    = errors.New("model not found")
	ErrInvalidResponse  = errors.New("invalid response format")
	ErrNoContent        = errors.New("no content in response")
)

// LoadFailureKind classifies why a model load failed.
type LoadFailureKind int

const (
	LoadFailureUnknown LoadFailureKind = iota
	LoadFailureConnection
	LoadFailureModelNotFound
	LoadFailureOutOfMemory
)

// String returns a human-readable name for the failure kind.
func (k LoadFailureKind) String() string {
	switch k {
	case LoadFailureConnection:
		return "connection"
	case LoadFailureModelNotFound:
		return "model not found"
	case LoadFailureOutOfMemory:
		return "out of memory"
	default:
		return "unknown"
	}
}

// LoadError represents a model load failure with a structured cause.
type LoadError struct {
	Kind    LoadFailureKind
	Model   string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("failed to load model %s (%s)", e.Model, e.Kind)
	}
	return fmt.Sprintf("failed to load model %s: %s", e.Model, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *LoadError) Is(target error) bool {
	if target == ErrModelNotFound && e.Kind == LoadFailureModelNotFound {
		return true
	}
	if target == ErrEngineNotRunning && e.Kind == LoadFailureConnection {
		return true
	}
	_, ok := target.(*LoadError)
	return ok
}

// NewLoadError creates a new LoadError
func NewLoadError(kind LoadFailureKind, model, message string, cause error) *LoadError {
	return &LoadError{Kind: kind, Model: model, Message: message, Cause: cause}
}

// EngineError represents a failed request to the inference engine
type EngineError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *EngineError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("engine error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("engine error at %s: %s", e.Endpoint, e.Message)
}

// NewEngineError creates a new EngineError
func NewEngineError(statusCode int, endpoint, message string) *EngineError {
	return &EngineError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NetworkError represents a failure to reach the engine at all
type NetworkError struct {
	Endpoint string
	Cause    error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("cannot reach engine at %s: %v", e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("cannot reach engine: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrEngineNotRunning {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(endpoint string, cause error) *NetworkError {
	return &NetworkError{Endpoint: endpoint, Cause: cause}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// IsNetworkError reports whether err indicates the engine was unreachable
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsModelNotFound reports whether err indicates an unknown model
func IsModelNotFound(err error) bool {
	if errors.Is(err, ErrModelNotFound) {
		return true
	}
	var le *LoadError
	return errors.As(err, &le) && le.Kind == LoadFailureModelNotFound
}

// IsOutOfMemory reports whether err indicates the model did not fit in memory
func IsOutOfMemory(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == LoadFailureOutOfMemory
}

// IsCancellation reports whether err came from a user-cancelled context
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// GetHTTPStatus extracts the HTTP status code from an error, or 0 if absent
func GetHTTPStatus(err error) int {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.StatusCode
	}
	return 0
}

// GetEndpoint extracts the engine endpoint from an error, or "" if absent
func GetEndpoint(err error) string {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Endpoint
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Endpoint
	}
	return ""
}

// GetLoadFailureKind extracts the load failure classification, or
// LoadFailureUnknown when err is not a LoadError.
func GetLoadFailureKind(err error) LoadFailureKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return LoadFailureUnknown
}
