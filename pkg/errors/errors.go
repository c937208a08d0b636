package errors

import "net/http"

// AppError is a custom error type carrying an HTTP status and an optional
// machine-readable error code the clients switch on.
type AppError struct {
	Status    int    `json:"-"`
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode,omitempty"`
	Field     string `json:"field,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

// WithCode attaches a machine-readable error code.
func (e *AppError) WithCode(code string) *AppError {
	e.ErrorCode = code
	return e
}

// WithField names the offending request field (validation/conflict errors).
func (e *AppError) WithField(field string) *AppError {
	e.Field = field
	return e
}

// Error codes clients rely on.
const (
	CodeNotInContacts      = "NOT_IN_CONTACTS"
	CodeNotChatParticipant = "NOT_CHAT_PARTICIPANT"
	CodeInvalidFileType    = "INVALID_FILE_TYPE"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
)

// Common errors
var (
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized access")
	ErrForbidden      = New(http.StatusForbidden, "Access denied")
	ErrNotFound       = New(http.StatusNotFound, "Resource not found")
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error")
)

func BadRequest(msg string) *AppError {
	return New(http.StatusBadRequest, msg)
}

func NotFound(msg string) *AppError {
	return New(http.StatusNotFound, msg)
}

func Unauthorized(msg string) *AppError {
	return New(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *AppError {
	return New(http.StatusForbidden, msg)
}

func Internal(msg string) *AppError {
	return New(http.StatusInternalServerError, msg)
}
