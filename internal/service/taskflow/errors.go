package taskflow

import (
	"fmt"
	"strings"
)

// ValidationError rejects a mutation because of bad input: a missing title, an
// unknown status key, a required field left empty, or a configuration patch
// that would leave the board unusable. Always recoverable; the mutation is
// aborted with no partial state change.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

func newValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// BoardPermissionError rejects a mutation the configuration's permission
// matrix does not grant to the acting role.
type BoardPermissionError struct {
	Role      string
	Operation string
}

func (e *BoardPermissionError) Error() string {
	return fmt.Sprintf("role %s may not %s on this board", e.Role, e.Operation)
}

// UserMessage returns the user-facing denial text.
func (e *BoardPermissionError) UserMessage() string {
	return "Tu rol no tiene permiso para esta operación en el tablero."
}

// ReconciliationError reports that an optimistic mutation could not be
// confirmed by the store. The local cache has already been rolled back to its
// pre-mutation snapshot when this error is returned.
type ReconciliationError struct {
	TaskID int
	Err    error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("task %d: mutation could not be confirmed, local state rolled back: %v", e.TaskID, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}
