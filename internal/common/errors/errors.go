// Package errors provides standardized error handling for the scoring pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Primary emissions-factor provider
	ErrCodeFactorNotRecognized ErrorCode = "FACTOR_NOT_RECOGNIZED"
	ErrCodeProviderTimeout     ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeProviderMalformed   ErrorCode = "PROVIDER_MALFORMED_RESPONSE"
	ErrCodeQualityGateRejected ErrorCode = "QUALITY_GATE_REJECTED"

	// Secondary AI estimator
	ErrCodeEstimateMalformed   ErrorCode = "ESTIMATE_MALFORMED"
	ErrCodeEstimateUnavailable ErrorCode = "ESTIMATE_UNAVAILABLE"
	ErrCodeEstimateTimeout     ErrorCode = "ESTIMATE_TIMEOUT"

	// Persistence
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeStoreReadFailed  ErrorCode = "STORE_READ_FAILED"
	ErrCodeStoreWriteFailed ErrorCode = "STORE_WRITE_FAILED"

	// Contract violations (programmer-visible defects)
	ErrCodeInvalidWeight ErrorCode = "INVALID_WEIGHT"
	ErrCodeUnknownGrade  ErrorCode = "UNKNOWN_GRADE"

	// Configuration
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFactorNotRecognizedError is returned when the provider has no emission
// factor matching the product text. Non-retryable: the fallback tier takes over.
func NewFactorNotRecognizedError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFactorNotRecognized,
		Message:   "No emission factor matched the product description",
		Details:   fmt.Sprintf("query: %s", query),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderTimeoutError creates a retryable provider timeout error.
func NewProviderTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   fmt.Sprintf("Provider '%s' timeout", provider),
		Details:   "call exceeded configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderUnavailableError creates a retryable provider error.
func NewProviderUnavailableError(provider string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   fmt.Sprintf("Provider '%s' unavailable", provider),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderMalformedError is returned when a provider payload cannot be decoded.
func NewProviderMalformedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderMalformed,
		Message:   fmt.Sprintf("Provider '%s' returned a malformed payload", provider),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQualityGateRejectedError records a primary result rejected by the data-quality gate.
func NewQualityGateRejectedError(dataQuality float64, threshold float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeQualityGateRejected,
		Message:   "Primary estimate rejected by quality gate",
		Details:   fmt.Sprintf("dataQuality: %.2f, threshold: %.2f", dataQuality, threshold),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEstimateMalformedError is returned when the AI estimator payload fails schema validation.
func NewEstimateMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEstimateMalformed,
		Message:   "AI estimate failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEstimateTimeoutError creates a retryable estimator timeout error.
func NewEstimateTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEstimateTimeout,
		Message:   "AI estimator timeout",
		Details:   "call exceeded configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEstimateUnavailableError creates a retryable estimator outage error.
func NewEstimateUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEstimateUnavailable,
		Message:   "AI estimator unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable persistence error.
func NewStoreUnavailableError(store string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   fmt.Sprintf("Store '%s' unavailable", store),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreWriteFailedError creates a retryable persistence write error.
func NewStoreWriteFailedError(store string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreWriteFailed,
		Message:   fmt.Sprintf("Store '%s' write failed", store),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidWeightError reports a normalizer invariant violation reaching the scorer.
// This is a defect, never absorbed by a fallback.
func NewInvalidWeightError(weightKg float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidWeight,
		Message:   "Product weight must be finite and strictly positive",
		Details:   fmt.Sprintf("weightKg: %v", weightKg),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownGradeError reports a grade outside the configured band table.
func NewUnknownGradeError(grade string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownGrade,
		Message:   "Grade is not in the configured band table",
		Details:   fmt.Sprintf("grade: %s", grade),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidConfigError reports an invalid configuration value.
func NewInvalidConfigError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidConfig,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreUnavailable,
		ErrCodeStoreReadFailed,
		ErrCodeStoreWriteFailed:
		return 3 // Retryable technical errors

	case ErrCodeProviderTimeout,
		ErrCodeProviderUnavailable,
		ErrCodeEstimateTimeout,
		ErrCodeEstimateUnavailable:
		return 1 // One retry before the next fallback tier takes over

	default:
		return 0 // Contract violations and rejections: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROVIDER") || strings.Contains(codeStr, "FACTOR") || strings.Contains(codeStr, "QUALITY"):
		return "PROVIDER"
	case strings.Contains(codeStr, "ESTIMATE"):
		return "AI_ESTIMATE"
	case strings.Contains(codeStr, "STORE"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNKNOWN"):
		return "CONTRACT"
	default:
		return "OTHER"
	}
}
