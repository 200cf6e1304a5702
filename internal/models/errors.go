package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned by services and surfaced in API responses.
const (
	CodeDuplicateUsername      = "DUPLICATE_USERNAME"
	CodeDuplicateEmail         = "DUPLICATE_EMAIL"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeNotFound               = "NOT_FOUND"
	CodeForbidden              = "FORBIDDEN"
	CodeInvalidDate            = "INVALID_DATE"
	CodeRequestAlreadyResolved = "REQUEST_ALREADY_RESOLVED"
	CodeValidation             = "VALIDATION_ERROR"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeInternal               = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrDuplicateUsername      = &AppError{Code: CodeDuplicateUsername, Message: "username already taken"}
	ErrDuplicateEmail         = &AppError{Code: CodeDuplicateEmail, Message: "email already registered"}
	ErrInvalidCredentials     = &AppError{Code: CodeInvalidCredentials, Message: "invalid username or password"}
	ErrNotFound               = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrForbidden              = &AppError{Code: CodeForbidden, Message: "you are not allowed to perform this action"}
	ErrInvalidDate            = &AppError{Code: CodeInvalidDate, Message: "invalid date format, expected YYYY-MM-DDTHH:MM"}
	ErrRequestAlreadyResolved = &AppError{Code: CodeRequestAlreadyResolved, Message: "club request has already been resolved"}
	ErrValidation             = &AppError{Code: CodeValidation, Message: "validation failed"}
	ErrUnauthorized           = &AppError{Code: CodeUnauthorized, Message: "authentication required"}
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

func NewDuplicateUsernameError(username string) *AppError {
	return &AppError{
		Code:    CodeDuplicateUsername,
		Message: fmt.Sprintf("username %q is already taken", username),
	}
}

func NewDuplicateEmailError(email string) *AppError {
	return &AppError{
		Code:    CodeDuplicateEmail,
		Message: fmt.Sprintf("email %q is already registered", email),
	}
}

// NewInvalidCredentialsError never says which half of the pair was wrong.
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Code:    CodeInvalidCredentials,
		Message: ErrInvalidCredentials.Message,
	}
}

func NewInvalidDateError(raw string) *AppError {
	return &AppError{
		Code:    CodeInvalidDate,
		Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DDTHH:MM", raw),
	}
}

func NewRequestAlreadyResolvedError(id uint, status ClubRequestStatus) *AppError {
	return &AppError{
		Code:    CodeRequestAlreadyResolved,
		Message: fmt.Sprintf("club request %d is already %s", id, status),
	}
}

// ErrorCode extracts the AppError code from err, or CodeInternal.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error to the HTTP status the API responds with.
func HTTPStatus(err error) int {
	switch ErrorCode(err) {
	case CodeDuplicateUsername, CodeDuplicateEmail, CodeRequestAlreadyResolved:
		return fiber.StatusConflict
	case CodeInvalidCredentials, CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeInvalidDate, CodeValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		// Internal causes stay in logs.
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: "Internal server error",
			Code:  CodeInternal,
		}
	}

	return c.Status(status).JSON(response)
}

// RespondWithAppError writes err using the status derived from its code.
func RespondWithAppError(c *fiber.Ctx, err error) error {
	return RespondWithError(c, HTTPStatus(err), err)
}
