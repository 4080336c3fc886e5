package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness. Entity, Field and
// Rule carry enough context for a client to render a field-scoped message
// without re-deriving the rule that rejected the mutation.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Entity  string `json:"entity,omitempty"`
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so sentinels survive Clone and field annotation.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the registry rule taxonomy.
var (
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "version conflict, re-read and retry")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrReferential         = New("REFERENTIAL", http.StatusUnprocessableEntity, "referenced entity does not exist or has the wrong kind")
	ErrIncompatibleRole    = New("ROLE_INCOMPATIBLE_CATEGORY", http.StatusUnprocessableEntity, "person category is incompatible with the role")
	ErrMissingPrereqRole   = New("ROLE_MISSING_PREREQUISITE", http.StatusUnprocessableEntity, "prerequisite role record is missing")
	ErrFieldConstraint     = New("FIELD_CONSTRAINT", http.StatusBadRequest, "field constraint violated")
	ErrNotCurrentPeriod    = New("NOT_CURRENT_PERIOD", http.StatusConflict, "session is not in the current period")
	ErrNotHistoricalPeriod = New("NOT_HISTORICAL_PERIOD", http.StatusConflict, "session has not reached a historical period")
	ErrGradeRequired       = New("GRADE_REQUIRED", http.StatusUnprocessableEntity, "a grade is required to archive a session")
	ErrCategoryImmutable   = New("CATEGORY_IMMUTABLE", http.StatusConflict, "person category cannot change while role records reference it")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// OnField returns a copy of the error annotated with entity, field and rule
// context. The error code and status are preserved so sentinel comparisons
// via errors.Is keep working.
func OnField(err *Error, entity, field, rule, message string) *Error {
	clone := Clone(err, message)
	if clone == nil {
		return nil
	}
	clone.Entity = entity
	clone.Field = field
	clone.Rule = rule
	return clone
}
