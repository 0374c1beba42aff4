// Package errors provides standardized error handling for the assessment
// service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Fatal for the call that hits them.
	ErrCodeInvariantViolation        ErrorCode = "INVARIANT_VIOLATION"
	ErrCodeReportSerializationFailed ErrorCode = "REPORT_SERIALIZATION_FAILED"

	// Recoverable: the report is composed without the failing element.
	ErrCodeLogoEmbedFailed  ErrorCode = "LOGO_EMBED_FAILED"
	ErrCodeChartUnavailable ErrorCode = "CHART_UNAVAILABLE"

	// Caller-side plumbing around the core.
	ErrCodeSubmissionValidationFailed ErrorCode = "SUBMISSION_VALIDATION_FAILED"
	ErrCodeRateLimited                ErrorCode = "RATE_LIMITED"
	ErrCodeLeadPersistFailed          ErrorCode = "LEAD_PERSIST_FAILED"
	ErrCodeWebhookDeliveryFailed      ErrorCode = "WEBHOOK_DELIVERY_FAILED"
	ErrCodeEmailSendFailed            ErrorCode = "EMAIL_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from err, or "" if err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// NewInvariantViolationError signals a configuration defect, such as a tier
// table that no longer partitions the score range. Must never be swallowed.
func NewInvariantViolationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvariantViolation,
		Message:   "Internal invariant violated",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportSerializationError creates a fatal report generation error.
func NewReportSerializationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportSerializationFailed,
		Message:   "Report document serialization failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLogoEmbedError creates a non-fatal logo embedding error. The composer
// logs it and continues without the image.
func NewLogoEmbedError(slot string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLogoEmbedFailed,
		Message:   "Logo image could not be embedded",
		Details:   fmt.Sprintf("slot: %s, error: %s", slot, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChartUnavailableError creates a non-fatal chart rendering error.
func NewChartUnavailableError(err error) *StandardError {
	details := "no renderer configured"
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeChartUnavailable,
		Message:   "Radar chart rendering unavailable",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionValidationError creates a non-retryable input error.
func NewSubmissionValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionValidationFailed,
		Message:   "Submission payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError is returned when a contact submits again inside the
// cooldown window.
func NewRateLimitedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Submission rate limit exceeded",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLeadPersistError creates a retryable lead storage error.
func NewLeadPersistError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLeadPersistFailed,
		Message:   "Lead record could not be persisted",
		Details:   fmt.Sprintf("sink: %s, error: %s", sink, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookDeliveryError creates a retryable webhook forwarding error.
func NewWebhookDeliveryError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookDeliveryFailed,
		Message:   "Webhook delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailSendError creates a retryable email delivery error.
func NewEmailSendError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "Report email delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
