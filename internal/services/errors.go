package services

import (
	"errors"
	"fmt"
)

// ErrStorage wraps failures of the underlying database. The transaction that
// produced it has been rolled back; the underlying error stays in the chain.
var ErrStorage = errors.New("storage error")

// Validation errors are returned before anything is written.
var (
	ErrUsernameRequired  = errors.New("username is required")
	ErrUsernameTooLong   = errors.New("username is too long")
	ErrPasswordTooShort  = errors.New("password too short")
	ErrPasswordTooLong   = errors.New("password too long")
	ErrInvalidRole       = errors.New("invalid role")
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleTooLong      = errors.New("title is too long")
	ErrNoAssignees       = errors.New("at least one assignee is required")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidProgress   = errors.New("progress must be between 0 and 100")
	ErrInvalidStage      = errors.New("invalid stage")
	ErrInvalidInitial    = errors.New("tasks can only start in Todo or InProgress")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidShift      = errors.New("invalid shift")
	ErrInvalidTransition = errors.New("stage transition not allowed")
	ErrTaskCompleted     = errors.New("task is already done")
	ErrCompletionDate    = errors.New("completion date is only allowed for Done")
	ErrEvidenceTooLarge  = errors.New("evidence exceeds the upload size limit")
	ErrEvidenceType      = errors.New("evidence must be a PNG or JPEG image")
)

var validationErrors = []error{
	ErrUsernameRequired,
	ErrUsernameTooLong,
	ErrPasswordTooShort,
	ErrPasswordTooLong,
	ErrInvalidRole,
	ErrTitleRequired,
	ErrTitleTooLong,
	ErrNoAssignees,
	ErrInvalidDate,
	ErrInvalidProgress,
	ErrInvalidStage,
	ErrInvalidInitial,
	ErrInvalidPriority,
	ErrInvalidShift,
	ErrInvalidTransition,
	ErrTaskCompleted,
	ErrCompletionDate,
	ErrEvidenceTooLarge,
	ErrEvidenceType,
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
