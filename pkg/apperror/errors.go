package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger Business Logic (LED) ----

func ErrNotFound(entity string) *AppError {
	return New("LED_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrDependency blocks a delete that would orphan a live reference. The
// message names the blocking record so the caller can act on it.
func ErrDependency(entity, blockedBy, blockerID string) *AppError {
	return New("LED_002",
		fmt.Sprintf("cannot delete %s: referenced by %s %s", entity, blockedBy, blockerID),
		http.StatusConflict)
}

func ErrInsufficientFunds(balance string) *AppError {
	return New("LED_003", fmt.Sprintf("insufficient funds, balance: %s", balance), http.StatusPaymentRequired)
}

// Validation returns a LED_004 request-validation error.
func Validation(message string) *AppError {
	return New("LED_004", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("LED_004", "invalid amount", http.StatusBadRequest)
}

// ---- Remote Sync (SYNC) ----

// ErrRemoteConnection covers missing credentials, an unreachable remote and
// an unknown spreadsheet id.
func ErrRemoteConnection(detail string, err error) *AppError {
	return Wrap("SYNC_001", fmt.Sprintf("remote connection failed: %s", detail), http.StatusBadGateway, err)
}

// ErrRemoteApply marks a single logged change that failed to apply remotely.
func ErrRemoteApply(err error) *AppError {
	return Wrap("SYNC_002", "failed to apply change to remote store", http.StatusBadGateway, err)
}

func ErrSyncInProgress() *AppError {
	return New("SYNC_003", "sync already in progress", http.StatusConflict)
}

// ---- System & Infrastructure (SYS) ----

// ErrPersistence wraps a local snapshot save/load failure. These are fatal
// to the triggering call: the caller must see the error.
func ErrPersistence(err error) *AppError {
	return Wrap("SYS_001", "local persistence failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "internal server error", http.StatusInternalServerError, err)
}
