package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"meetapi/internal/http/middleware"
	"meetapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// serviceErrorMapping pairs a service sentinel with its HTTP representation.
type serviceErrorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var serviceErrors = []serviceErrorMapping{
	{service.ErrMeetingNotFound, fiber.StatusNotFound, "MEETING_NOT_FOUND", "meeting not found"},
	{service.ErrDocumentNotFound, fiber.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found"},
	{service.ErrBlobMissing, fiber.StatusNotFound, "FILE_MISSING", "stored file is missing"},
	{service.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND", "user not found"},
	{service.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "you do not own this resource"},
	{service.ErrInvalidDateRange, fiber.StatusBadRequest, "INVALID_DATE_RANGE", "end date must be after start date"},
	{service.ErrStartInPast, fiber.StatusBadRequest, "START_IN_PAST", "start date cannot be in the past"},
	{service.ErrMeetingExpired, fiber.StatusConflict, "MEETING_EXPIRED", "meeting has already ended"},
	{service.ErrAlreadyCancelled, fiber.StatusConflict, "ALREADY_CANCELLED", "meeting is already cancelled"},
	{service.ErrEmptyFile, fiber.StatusBadRequest, "EMPTY_FILE", "no file content provided"},
	{service.ErrFileTypeNotAllowed, fiber.StatusBadRequest, "FILE_TYPE_NOT_ALLOWED", "file type not allowed"},
	{service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the maximum allowed size"},
	{service.ErrEmailTaken, fiber.StatusConflict, "EMAIL_TAKEN", "email is already registered"},
	{service.ErrWeakPassword, fiber.StatusBadRequest, "WEAK_PASSWORD", "password does not meet the complexity requirements"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password"},
}

// writeServiceError maps a service sentinel error to its HTTP response.
// Unrecognized errors become an opaque 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return writeError(c, m.status, m.code, m.message)
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
