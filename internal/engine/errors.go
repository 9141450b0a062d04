package engine

import (
	"errors"
	"fmt"
)

// CommandErrorCode categorizes malformed commands.
type CommandErrorCode string

const (
	// ErrCodeUnknownCommand indicates a command type the engine does not know.
	ErrCodeUnknownCommand CommandErrorCode = "UNKNOWN_COMMAND"

	// ErrCodeMissingField indicates a required field was empty.
	ErrCodeMissingField CommandErrorCode = "MISSING_FIELD"

	// ErrCodeInvalidValue indicates a field holds a value outside its domain.
	ErrCodeInvalidValue CommandErrorCode = "INVALID_VALUE"

	// ErrCodeLoopClosed indicates the command loop has stopped.
	ErrCodeLoopClosed CommandErrorCode = "LOOP_CLOSED"
)

// CommandError reports a command that could not be dispatched. Scoring
// itself never fails; only the shape of a command can be wrong.
type CommandError struct {
	Code    CommandErrorCode
	Type    string // command type as received
	Field   string // offending field, if any
	Message string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (command=%s, field=%s)", e.Code, e.Message, e.Type, e.Field)
	}
	return fmt.Sprintf("%s: %s (command=%s)", e.Code, e.Message, e.Type)
}

// IsCommandError reports whether err is a CommandError. Uses errors.As to
// handle wrapped errors.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}

func missingField(typ, field string) *CommandError {
	return &CommandError{Code: ErrCodeMissingField, Type: typ, Field: field, Message: "required field is empty"}
}

func invalidValue(typ, field, value string) *CommandError {
	return &CommandError{Code: ErrCodeInvalidValue, Type: typ, Field: field, Message: fmt.Sprintf("invalid value %q", value)}
}
