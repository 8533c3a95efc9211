package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeTxAborted     ErrorCode = "TX_ABORTED"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал
// и для обёрнутых копий сентинелов.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeTxAborted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки приложения или ErrCodeInternal для прочих ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsConflict(err error) bool {
	return CodeOf(err) == ErrCodeConflict
}

// Сообщения ошибок уходят клиенту как есть, поэтому они на языке интерфейса.
var (
	ErrTaskNotFound         = New(ErrCodeNotFound, "task does not exist")
	ErrUserNotFound         = New(ErrCodeNotFound, "user not found")
	ErrNotificationNotFound = New(ErrCodeNotFound, "notification not found")
	ErrUnauthorized         = New(ErrCodeUnauthorized, "user not authenticated")
	ErrInvalidCredentials   = New(ErrCodeUnauthorized, "invalid email or password")
	ErrForbidden            = New(ErrCodeForbidden, "access denied")
	ErrEmailTaken           = New(ErrCodeConflict, "email is already registered")

	ErrTaskNotOpen       = New(ErrCodeConflict, "task is not open for acceptance")
	ErrSelfAccept        = New(ErrCodeForbidden, "you cannot accept your own task")
	ErrNotTaskBuddy      = New(ErrCodeForbidden, "only the assigned buddy can do this")
	ErrNotTaskPoster     = New(ErrCodeForbidden, "only the task poster can do this")
	ErrNotParticipant    = New(ErrCodeForbidden, "you are not a participant of this task")
	ErrTaskNotAssigned   = New(ErrCodeConflict, "task is not assigned")
	ErrTaskNotCompleted  = New(ErrCodeConflict, "task not completed")
	ErrTaskNotCancelable = New(ErrCodeConflict, "task can no longer be cancelled")
	ErrInsufficientFunds = New(ErrCodeConflict, "insufficient funds")

	ErrTxAborted = New(ErrCodeTxAborted, "the task was modified concurrently, please retry")
)
