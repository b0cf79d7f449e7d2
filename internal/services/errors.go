package services

import (
	"errors"
	"fmt"
)

// ===== SENTINEL ERRORS =====

var (
	ErrDoubtNotFound  = errors.New("doubt not found")
	ErrAnswerNotFound = errors.New("answer not found")
	ErrUserNotFound   = errors.New("user not found")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")

	// ErrDoubtResolved signals a lifecycle conflict: the doubt is
	// already RESOLVED and the requested transition or edit is not
	// allowed anymore.
	ErrDoubtResolved = errors.New("doubt is already resolved")

	// ErrSuggestionUnavailable signals that the upstream AI provider
	// is not configured or not reachable.
	ErrSuggestionUnavailable = errors.New("answer suggestion service unavailable")
)

// ===== PERMISSION ERRORS =====

// PermissionError carries enough context to log and map a denied
// operation without leaking internals to the client.
type PermissionError struct {
	UserID   string
	TargetID string
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s (%s)",
		e.UserID, e.Action, e.Resource, e.TargetID, e.Reason)
}

func NewPermissionError(userID, targetID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		TargetID: targetID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

// IsPermissionError checks whether err is a permission denial
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsNotFoundError checks whether err maps to a 404 response
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrDoubtNotFound) ||
		errors.Is(err, ErrAnswerNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsConflictError checks whether err maps to a 409 response
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDoubtResolved) || errors.Is(err, ErrEmailTaken)
}
