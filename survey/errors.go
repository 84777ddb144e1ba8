package survey

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups when the survey does not exist.
var ErrNotFound = errors.New("survey not found")

// ValidationError rejects a request before any row is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func invalid(field, reason string) error {
	return ValidationError{Field: field, Reason: reason}
}

// UnknownQuestionError flags a submitted question id that is not part of
// the survey's persisted set. Identities are server-generated, so a client
// supplying one we never issued is a conflict, not a create.
type UnknownQuestionError struct {
	ID int
}

func (e UnknownQuestionError) Error() string {
	return fmt.Sprintf("unknown question id %d", e.ID)
}

// InvalidQuestionError flags an answer submitted against a question that
// does not belong to the target survey.
type InvalidQuestionError struct {
	ID string
}

func (e InvalidQuestionError) Error() string {
	return fmt.Sprintf("Invalid question ID: %q", e.ID)
}
