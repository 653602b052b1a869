// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"github.com/hay-kot/criterio"

	"taskman/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, rejected draft).
	UserError = 1

	// AuthError indicates a missing, rejected or expired credential.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)

// FromError maps an operation outcome to an exit code.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	if errors.Is(err, service.ErrUnauthorized) || errors.Is(err, service.ErrInvalidCredentials) {
		return AuthError
	}
	if errors.Is(err, service.ErrTitleRequired) || errors.Is(err, service.ErrInvalidID) {
		return UserError
	}
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return UserError
	}
	if rf, ok := service.AsRequestFailed(err); ok {
		switch {
		case rf.IsValidation(), rf.Status == 404:
			return UserError
		}
	}
	return BackendError
}
