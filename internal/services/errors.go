package services

import (
	"errors"
	"fmt"
	"net/http"

	"rekaloka/internal/repositories"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// WithStatus overrides the HTTP status code
func (e *ServiceError) WithStatus(status int) *ServiceError {
	e.StatusCode = status
	return e
}

// WithCause records the underlying error
func (e *ServiceError) WithCause(cause error) *ServiceError {
	e.Cause = cause
	return e
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewBusinessError creates a business rule rejection
func NewBusinessError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       "BUSINESS_ERROR",
		Message:    message,
		Code:       code,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       "NOT_FOUND",
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Type:       "FORBIDDEN",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       "CONFLICT",
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *ServiceError {
	return &ServiceError{
		Type:       "SERVICE_UNAVAILABLE",
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

// ===============================
// ERROR UTILITIES
// ===============================

// GetServiceError extracts a ServiceError from an error chain, or wraps the
// error in a generic internal error
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return NewInternalError(err.Error()).WithCause(err)
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr) && serviceErr.Type == errorType
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, "NOT_FOUND")
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, "VALIDATION_ERROR")
}

// HasCode reports whether err is a ServiceError carrying code
func HasCode(err error, code string) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr) && serviceErr.Code == code
}

// ===============================
// ERROR CONTEXT
// ===============================

// ErrorContext provides additional context for errors
type ErrorContext struct {
	UserID    string                 `json:"user_id,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	Resource  string                 `json:"resource,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// WithContext adds context to a service error
func (e *ServiceError) WithContext(ctx *ErrorContext) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}

	if ctx.UserID != "" {
		e.Details["user_id"] = ctx.UserID
	}
	if ctx.Operation != "" {
		e.Details["operation"] = ctx.Operation
	}
	if ctx.Resource != "" {
		e.Details["resource"] = ctx.Resource
	}
	for k, v := range ctx.Metadata {
		e.Details[k] = v
	}

	return e
}

// ===============================
// COMMON ERROR PATTERNS
// ===============================

// EntityNotFoundError creates a standard entity not found error
func EntityNotFoundError(entityType string, id interface{}) *ServiceError {
	return NewNotFoundError(fmt.Sprintf("%s not found", entityType)).WithContext(&ErrorContext{
		Resource: entityType,
		Metadata: map[string]interface{}{
			"id": id,
		},
	})
}

// EntityAlreadyExistsError creates a standard entity already exists error
func EntityAlreadyExistsError(entityType string, field, value string) *ServiceError {
	return NewConflictError(
		fmt.Sprintf("%s with this %s already exists", entityType, field),
		"ENTITY_ALREADY_EXISTS",
	).WithContext(&ErrorContext{
		Resource: entityType,
		Metadata: map[string]interface{}{
			"field": field,
			"value": value,
		},
	})
}

// InvalidInputError creates a standard invalid input error
func InvalidInputError(field, reason string) *ServiceError {
	return NewValidationError(fmt.Sprintf("Invalid input for field '%s': %s", field, reason), nil).WithContext(&ErrorContext{
		Metadata: map[string]interface{}{
			"field":  field,
			"reason": reason,
		},
	})
}

// storeError converts a repository result variant into a service error.
// Unknown errors become internal errors that keep the cause for logging.
func storeError(err error, entityType string, id interface{}, message string) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFound(err):
		return EntityNotFoundError(entityType, id)
	case repositories.IsDuplicateKey(err):
		return NewConflictError(fmt.Sprintf("%s already exists", entityType), "ENTITY_ALREADY_EXISTS").WithCause(err)
	default:
		return NewInternalError(message).WithCause(err)
	}
}
