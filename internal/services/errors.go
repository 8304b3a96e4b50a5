package services

import (
	"fmt"
	"strings"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
)

// NotFoundError means the entity named by Kind/Key does not exist in the
// metadata store.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// InvalidTransitionError rejects a flag status change outside the state
// machine. Allowed lists the statuses reachable from From.
type InvalidTransitionError struct {
	From    domain.FlagStatus
	To      domain.FlagStatus
	Allowed []domain.FlagStatus
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, string(s))
	}
	return fmt.Sprintf(
		"invalid flag transition %q -> %q (allowed from %q: %s)",
		e.From, e.To, e.From, strings.Join(allowed, ", "),
	)
}

// UserNotFoundError means the identity lookup backing a ledger entry
// creation came back empty.
type UserNotFoundError struct {
	UserID     string
	Collection string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %q not found in %q", e.UserID, e.Collection)
}

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// IndexDeletionError is raised when every vector deletion strategy in the
// fallback chain failed. Metadata is left untouched when this fires.
type IndexDeletionError struct {
	CourseName string
	Attempts   []error
}

func (e *IndexDeletionError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		if attempt != nil {
			parts = append(parts, attempt.Error())
		}
	}
	return fmt.Sprintf(
		"vector index deletion failed for course %q after %d strategies: %s",
		e.CourseName, len(e.Attempts), strings.Join(parts, "; "),
	)
}
