package command

import "fmt"

// UserInputError is a missing or malformed argument; Message is shown as-is
type UserInputError struct {
	Message string
}

func (e *UserInputError) Error() string {
	return e.Message
}

func userInput(format string, args ...any) error {
	return &UserInputError{Message: fmt.Sprintf(format, args...)}
}

// UnknownCommandError is returned for a command name with no handler
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Name)
}

// Outcome classifies a dispatch for logging and metrics
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeUnknown   Outcome = "unknown_command"
	OutcomeUserInput Outcome = "user_input"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeNetwork   Outcome = "network_error"
	OutcomeFailed    Outcome = "error"
)
