package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAssignmentNotFound indicates the assignment id is not in the current collection.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrUnauthorized indicates the actor lacks the role, ownership, or leadership an action needs.
	ErrUnauthorized = errors.New("action not permitted for this user")
	// ErrNotSignedIn indicates an action that needs a current user was attempted without one.
	ErrNotSignedIn = errors.New("no user is signed in")
	// ErrUserNotFound indicates the user id is unknown.
	ErrUserNotFound = errors.New("user not found")
	// ErrCourseNotFound indicates the course id is unknown.
	ErrCourseNotFound = errors.New("course not found")
	// ErrInvalidCredentials indicates the login gate rejected the password.
	ErrInvalidCredentials = errors.New("incorrect password")

	errNoChange = errors.New("no change")
)

// ValidationKind names the input problem found when creating or editing records.
type ValidationKind string

const (
	KindMissingTitle          ValidationKind = "missing_title"
	KindMissingDueDate        ValidationKind = "missing_due_date"
	KindNoGroupSelected       ValidationKind = "no_group_selected"
	KindInvalidSubmissionType ValidationKind = "invalid_submission_type"
	KindMissingGroupName      ValidationKind = "missing_group_name"
	KindInvalidLeader         ValidationKind = "invalid_leader"
	KindInvalidAccount        ValidationKind = "invalid_account"
	KindInvalidPrefs          ValidationKind = "invalid_prefs"
)

var validationMessages = map[ValidationKind]string{
	KindMissingTitle:          "Title is required",
	KindMissingDueDate:        "Due date is required",
	KindNoGroupSelected:       "Select at least one group",
	KindInvalidSubmissionType: "Submission type must be individual or group",
	KindMissingGroupName:      "Group name required",
	KindInvalidLeader:         "Choose a leader",
	KindInvalidAccount:        "Account details are invalid",
	KindInvalidPrefs:          "Preferences are invalid",
}

// ValidationError reports bad user input. It is recoverable and shown inline.
type ValidationError struct {
	Kind ValidationKind
}

func newValidationError(kind ValidationKind) *ValidationError {
	return &ValidationError{Kind: kind}
}

func (e *ValidationError) Error() string {
	if msg, ok := validationMessages[e.Kind]; ok {
		return msg
	}
	return string(e.Kind)
}

// PersistenceError wraps a store failure. The in-memory snapshot has already
// been installed when it is returned, so callers treat it as a warning.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist snapshot (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceWarning reports whether err only signals a failed write.
func IsPersistenceWarning(err error) bool {
	var perr *PersistenceError
	return errors.As(err, &perr)
}
