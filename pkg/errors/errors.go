package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrorCode classifies an application error for HTTP mapping and
// caller diagnostics.
type ErrorCode int

const (
	ErrDoctorNotFound ErrorCode = iota + 1000
	ErrNotFound
	ErrUnknownApptType
	ErrInvalidInput
	ErrOutsideWorkingHours
	ErrSlotConflict
	ErrStorageUnavailable
	ErrInternal
)

// AppError represents an application error. SlotConflict errors carry
// the id of the appointment that blocked the booking.
type AppError struct {
	Code          ErrorCode `json:"code"`
	Message       string    `json:"message"`
	ConflictingID uuid.UUID `json:"conflicting_id,omitempty"`
	Err           error     `json:"-"`
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

// Is matches AppErrors by code, regardless of message or conflicting id.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return appErr.Code == e.Code
	}
	return false
}

// CodeOf extracts the error code from err, or ErrInternal if err is
// not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

func DoctorNotFound(id uuid.UUID) *AppError {
	return &AppError{
		Code:    ErrDoctorNotFound,
		Message: fmt.Sprintf("doctor %s not found", id),
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func UnknownApptType(name string) *AppError {
	return &AppError{
		Code:    ErrUnknownApptType,
		Message: fmt.Sprintf("unknown appointment type %q", name),
	}
}

func InvalidInput(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: message,
		Err:     err,
	}
}

func OutsideWorkingHours(message string) *AppError {
	return &AppError{
		Code:    ErrOutsideWorkingHours,
		Message: message,
	}
}

func SlotConflict(conflictingID uuid.UUID) *AppError {
	return &AppError{
		Code:          ErrSlotConflict,
		Message:       "time slot already taken",
		ConflictingID: conflictingID,
	}
}

func StorageUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrStorageUnavailable,
		Message: "storage unavailable",
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}
