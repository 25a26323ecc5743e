// Package errors provides standardized error handling for BPMN workflow integration.
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
	ErrCodeInvalidInput         ErrorCode = "INVALID_INPUT"
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"

	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogLoadFailed  ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeCatalogInvalid     ErrorCode = "CATALOG_INVALID"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeFallbackDisabled        ErrorCode = "FALLBACK_DISABLED"
	ErrCodeFallbackTimeout         ErrorCode = "FALLBACK_TIMEOUT"
	ErrCodeFallbackFailed          ErrorCode = "FALLBACK_FAILED"
	ErrCodeFallbackResponseInvalid ErrorCode = "FALLBACK_RESPONSE_INVALID"

	ErrCodeReviewPublishFailed ErrorCode = "REVIEW_PUBLISH_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewInvalidInputError is returned for job variables that cannot be decoded or are incomplete.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false, nil)
}

// NewClassificationFailedError wraps an unexpected failure inside the classifier.
func NewClassificationFailedError(err error) *StandardError {
	return newError(ErrCodeClassificationFailed, "Utterance classification failed", detailsOf(err), false, err)
}

// NewCatalogUnavailableError is retryable: the first snapshot may still be loading.
func NewCatalogUnavailableError(err error) *StandardError {
	return newError(ErrCodeCatalogUnavailable, "No catalog snapshot is loaded", detailsOf(err), true, err)
}

// NewCatalogLoadFailedError reports a source that could not be read.
func NewCatalogLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogLoadFailed, "Catalog snapshot load failed",
		fmt.Sprintf("source: %s, error: %s", source, detailsOf(err)), true, err)
}

// NewCatalogInvalidError reports a document that failed schema or identity checks.
func NewCatalogInvalidError(err error) *StandardError {
	return newError(ErrCodeCatalogInvalid, "Catalog snapshot is invalid", detailsOf(err), false, err)
}

// NewCacheUnavailableError reports a redis failure that callers may tolerate.
func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", detailsOf(err), true, err)
}

// NewFallbackDisabledError is returned when an escalation arrives but the interpreter is off.
func NewFallbackDisabledError() *StandardError {
	return newError(ErrCodeFallbackDisabled, "Fallback interpreter is disabled", "", false, nil)
}

// NewFallbackTimeoutError creates a retryable interpreter timeout error.
func NewFallbackTimeoutError(err error) *StandardError {
	return newError(ErrCodeFallbackTimeout, "Fallback interpreter timeout", detailsOf(err), true, err)
}

// NewFallbackFailedError creates a retryable interpreter API error.
func NewFallbackFailedError(err error) *StandardError {
	return newError(ErrCodeFallbackFailed, "Fallback interpreter API error", detailsOf(err), true, err)
}

// NewFallbackResponseInvalidError reports an interpreter reply that could not be used.
func NewFallbackResponseInvalidError(details string) *StandardError {
	return newError(ErrCodeFallbackResponseInvalid, "Fallback interpreter returned an unusable response", details, false, nil)
}

// NewReviewPublishFailedError reports a failed publish to the review topic.
func NewReviewPublishFailedError(err error) *StandardError {
	return newError(ErrCodeReviewPublishFailed, "Review queue publish failed", detailsOf(err), true, err)
}

// NewInternalError wraps anything that is not already a StandardError.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", detailsOf(err), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes modelled in the BPMN diagrams.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:            "INVALID_INPUT",
	ErrCodeClassificationFailed:    "CLASSIFICATION_FAILED",
	ErrCodeCatalogUnavailable:      "CATALOG_UNAVAILABLE",
	ErrCodeCatalogLoadFailed:       "CATALOG_UNAVAILABLE",
	ErrCodeCatalogInvalid:          "CATALOG_UNAVAILABLE",
	ErrCodeCacheUnavailable:        "CACHE_UNAVAILABLE",
	ErrCodeFallbackDisabled:        "FALLBACK_UNAVAILABLE",
	ErrCodeFallbackTimeout:         "FALLBACK_UNAVAILABLE",
	ErrCodeFallbackFailed:          "FALLBACK_UNAVAILABLE",
	ErrCodeFallbackResponseInvalid: "FALLBACK_UNAVAILABLE",
	ErrCodeReviewPublishFailed:     "REVIEW_PUBLISH_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogUnavailable,
		ErrCodeCatalogLoadFailed,
		ErrCodeFallbackFailed:
		return 3
	case ErrCodeCacheUnavailable,
		ErrCodeReviewPublishFailed:
		return 2
	case ErrCodeFallbackTimeout:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.HasPrefix(codeStr, "FALLBACK"):
		return "AI"
	case strings.HasPrefix(codeStr, "CACHE"):
		return "CACHE"
	case strings.HasPrefix(codeStr, "REVIEW"):
		return "REVIEW"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "CLASSIFICATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
