package errors

import (
	"net/http"

	"spurt/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
	kind      *BaseError
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// Is matches copies produced by WithDetails against the predefined error they came from.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e == t || (e.kind != nil && e.kind == t)
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	kind := e.kind
	if kind == nil {
		kind = e
	}

	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
		kind:      kind,
	}
}

// Predefined error types
var (
	// Input errors
	ErrInvalidInput = NewBaseError(
		http.StatusBadRequest,
		"INVALID_INPUT",
		"The request contains an invalid value",
		"",
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	// Credential errors
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Incorrect email or password",
		"",
	)

	ErrMalformedCredential = NewBaseError(
		http.StatusInternalServerError,
		"MALFORMED_CREDENTIAL",
		"Stored credential is malformed",
		"",
	)

	ErrEmailNotVerified = NewBaseError(
		http.StatusUnauthorized,
		"EMAIL_NOT_VERIFIED",
		"Email address has not been confirmed",
		"",
	)

	ErrConfirmationTokenInvalid = NewBaseError(
		http.StatusBadRequest,
		"CONFIRMATION_TOKEN_INVALID",
		"Invalid or expired confirmation link",
		"",
	)

	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"Authentication required",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Access denied",
		"",
	)

	// User and subscriber errors
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"User not found",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"User already exists",
		"",
	)

	ErrSubscriberAlreadyExists = NewBaseError(
		http.StatusConflict,
		"SUBSCRIBER_ALREADY_EXISTS",
		"Subscriber has already been added",
		"",
	)

	// Event and photo errors
	ErrEventNotFound = NewBaseError(
		http.StatusNotFound,
		"EVENT_NOT_FOUND",
		"Event does not exist",
		"",
	)

	ErrPhotoNotFound = NewBaseError(
		http.StatusNotFound,
		"PHOTO_NOT_FOUND",
		"Photo does not exist",
		"",
	)

	ErrAlreadyMain = NewBaseError(
		http.StatusBadRequest,
		"PHOTO_ALREADY_MAIN",
		"Photo is already main photo",
		"",
	)

	ErrCannotDeleteMain = NewBaseError(
		http.StatusBadRequest,
		"CANNOT_DELETE_MAIN_PHOTO",
		"You can't delete the main photo",
		"",
	)

	ErrUploadTooLarge = NewBaseError(
		http.StatusRequestEntityTooLarge,
		"UPLOAD_TOO_LARGE",
		"Maximum file size exceeded",
		"",
	)

	ErrUnsupportedFileType = NewBaseError(
		http.StatusUnsupportedMediaType,
		"UNSUPPORTED_FILE_TYPE",
		"Invalid file type",
		"",
	)

	// Remote collaborator errors
	ErrRemoteUploadFailed = NewBaseError(
		http.StatusBadGateway,
		"REMOTE_UPLOAD_FAILED",
		"Could not upload photo to the media host",
		"",
	)

	ErrRemoteDeleteFailed = NewBaseError(
		http.StatusBadGateway,
		"REMOTE_DELETE_FAILED",
		"Could not delete photo from the media host",
		"",
	)

	// Infrastructure errors
	ErrPersistence = NewBaseError(
		http.StatusInternalServerError,
		"PERSISTENCE_ERROR",
		"Could not save changes",
		"",
	)

	ErrConfiguration = NewBaseError(
		http.StatusInternalServerError,
		"CONFIGURATION_ERROR",
		"Service is misconfigured",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// PersistenceError reports a failed read or commit against the store and keeps the cause.
// It matches ErrPersistence under errors.Is.
type PersistenceError struct {
	err     error
	details string
}

// NewPersistenceError creates a persistence error wrapping the store failure.
func NewPersistenceError(err error, details string) AppError {
	return &PersistenceError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	if e.err == nil {
		return "persistence failed: " + e.details
	}

	return errors.Wrap(e.err, "persistence failed: "+e.details).Error()
}

// Unwrap returns the store failure.
func (e *PersistenceError) Unwrap() error {
	return e.err
}

// Is reports a match against ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// HTTPCode returns the HTTP status code
func (e *PersistenceError) HTTPCode() int {
	return ErrPersistence.HTTPCode()
}

// ErrorCode returns the business error code
func (e *PersistenceError) ErrorCode() string {
	return ErrPersistence.ErrorCode()
}

// Message returns the user-friendly error message
func (e *PersistenceError) Message() string {
	return ErrPersistence.Message()
}

// Details returns detailed error information
func (e *PersistenceError) Details() string {
	return e.details
}

// Persistence turns err into a PersistenceError unless it already carries an AppError,
// so rejections raised inside a transaction keep their own kind.
func Persistence(err error, details string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.Find[AppError](err); ok {
		return err
	}

	return NewPersistenceError(err, details)
}
