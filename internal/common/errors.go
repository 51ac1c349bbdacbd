package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the stable, machine-readable failure code surfaced to callers.
type ErrorKind string

const (
	KindModelNotLoaded        ErrorKind = "MODEL_NOT_LOADED"
	KindTextEmpty             ErrorKind = "TEXT_EMPTY"
	KindNoExtractionLibraries ErrorKind = "NO_EXTRACTION_LIBRARIES"
	KindFileNotFound          ErrorKind = "FILE_NOT_FOUND"
	KindNoTextFound           ErrorKind = "NO_TEXT_FOUND"
	KindOCRNotAvailable       ErrorKind = "OCR_NOT_AVAILABLE"
	KindNoJSONFound           ErrorKind = "NO_JSON_FOUND"
	KindInvalidJSONFormat     ErrorKind = "INVALID_JSON_FORMAT"
	KindInvalidAIOutput       ErrorKind = "INVALID_AI_OUTPUT"
	KindInferenceFailed       ErrorKind = "INFERENCE_FAILED"
	KindExtractionFailed      ErrorKind = "EXTRACTION_FAILED"
	KindInternal              ErrorKind = "INTERNAL_ERROR"

	// transport-level kinds
	KindInvalidInput ErrorKind = "INVALID_INPUT"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindTooLarge     ErrorKind = "FILE_TOO_LARGE"
	KindUnsupported  ErrorKind = "UNSUPPORTED_MEDIA_TYPE"
)

// AppError represents application-specific errors
type AppError struct {
	Code    ErrorKind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

func NewAppError(code ErrorKind, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf returns the ErrorKind carried by err, or fallback when err holds no AppError.
func KindOf(err error, fallback ErrorKind) ErrorKind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return fallback
}

// HTTPStatus maps transport-level kinds onto HTTP status codes. Pipeline kinds
// are reported in the response body with 200.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindUnsupported:
		return http.StatusUnsupportedMediaType
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
