package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes carried by errors returned from the layout and image command
// handlers. Callers branch on the code without knowing which handler ran.
const (
	codeInvalidMessage = "SIGNAGE_COMMAND_INVALID"
	codeCancelled      = "SIGNAGE_COMMAND_CANCELLED"
	codeTimedOut       = "SIGNAGE_COMMAND_TIMED_OUT"
	codeContext        = "SIGNAGE_COMMAND_CONTEXT"
	codeFailed         = "SIGNAGE_COMMAND_FAILED"
)

// tag categorises err unless a service below the handler already returned
// a go-errors value, which passes through untouched.
func tag(err error, category goerrors.Category, message, code string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

func wrapValidationError(err error) error {
	return tag(err, goerrors.CategoryValidation, "signage command message rejected", codeInvalidMessage)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return tag(err, goerrors.CategoryCommand, "signage command cancelled", codeCancelled)
	case errors.Is(err, context.DeadlineExceeded):
		return tag(err, goerrors.CategoryCommand, "signage command ran past its deadline", codeTimedOut)
	default:
		return tag(err, goerrors.CategoryCommand, "signage command context error", codeContext)
	}
}

// wrapExecuteError tags a failed migration or image run. Layout not-found
// errors stay detectable through errors.As.
func wrapExecuteError(err error) error {
	return tag(err, goerrors.CategoryCommand, "signage command failed", codeFailed)
}
