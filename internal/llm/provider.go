package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// defines the interface for structured-generation LLM providers
type Provider interface {
	GenerateStructured(ctx context.Context, req *StructuredRequest) (*StructuredResponse, error)
	GetProviderName() string
}

// StructuredRequest asks a provider for output conforming to Schema.
type StructuredRequest struct {
	System    string
	Prompt    string
	Schema    *Schema
	RequestID string
}

// StructuredResponse carries the raw schema-conforming JSON object.
type StructuredResponse struct {
	Raw      json.RawMessage
	Metadata ResponseMetadata
}

type ResponseMetadata struct {
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	ProcessingTime int    `json:"processing_time_ms"`
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Common error codes
const (
	ErrCodeAPIKey          = "invalid_api_key"
	ErrCodeRateLimit       = "rate_limit_exceeded"
	ErrCodeServiceDown     = "service_unavailable"
	ErrCodeInvalidInput    = "invalid_input"
	ErrCodeTimeout         = "timeout"
	ErrCodeSchemaViolation = "schema_violation"
)

// CodeOf extracts the provider error code, or "" for other errors.
func CodeOf(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsRetryable reports whether a failed call may succeed on a later attempt.
// Schema violations and bad input are permanent for a given prompt.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeRateLimit, ErrCodeServiceDown, ErrCodeTimeout:
		return true
	}
	return false
}
