package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"taskman/internal/exitcode"
	"taskman/internal/logging"
	"taskman/internal/service"
	"taskman/internal/session"
	"taskman/internal/tasklist"
)

// sessionExpiredMsg is printed when the server rejects the stored credential.
const sessionExpiredMsg = "error: session expired (run: taskman login)"

// taskSession is a controller plus the guard it reports to, for commands that
// also call the API directly.
type taskSession struct {
	*tasklist.Controller
	guard  *session.Guard
	tasks  service.Service
	logger zerolog.Logger
}

// newSession builds a task controller whose guard clears the credential
// and tells the user to log in again.
func newSession(deps Deps, errOut io.Writer) *taskSession {
	guard := session.NewGuard(deps.Creds, func() {
		fmt.Fprintln(errOut, sessionExpiredMsg)
	}, logging.Component("session"))
	return &taskSession{
		Controller: tasklist.New(deps.Tasks, guard, logging.Component("tasklist")),
		guard:      guard,
		tasks:      deps.Tasks,
		logger:     deps.Logger,
	}
}

// get fetches one task, routing Unauthorized through the guard.
func (s *taskSession) get(ctx context.Context, id service.ID) (service.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if service.IsUnauthorized(err) {
		s.guard.OnUnauthorized()
	}
	return task, err
}

// submit sends the open form. See mutate.
func (s *taskSession) submit(ctx context.Context) error {
	eff, err := s.SubmitForm()
	if err != nil {
		return err
	}
	return s.mutate(ctx, eff)
}

// mutate runs a create, update or delete and returns its outcome. The
// follow-up refresh only keeps the controller current: once the server has
// accepted the change, a failed refresh is logged and not returned.
func (s *taskSession) mutate(ctx context.Context, eff tasklist.Effect) error {
	if eff == nil {
		return nil
	}
	next, err := s.Apply(eff(ctx))
	if err != nil {
		return err
	}
	if err := s.Drive(ctx, next); err != nil {
		s.logger.Warn().Err(err).Msg("refresh after change failed")
	}
	return nil
}

// fail reports err on errOut and returns the matching exit code.
// Unauthorized has already been reported by the guard.
func fail(errOut io.Writer, err error) int {
	code := exitcode.FromError(err)

	var fieldErrs criterio.FieldErrors
	rf, isRequestFailed := service.AsRequestFailed(err)

	switch {
	case errors.Is(err, service.ErrUnauthorized):
	case errors.Is(err, service.ErrInvalidCredentials):
		fmt.Fprintln(errOut, "error: invalid username or password")
	case errors.Is(err, service.ErrTitleRequired):
		fmt.Fprintln(errOut, "error: title required")
	case errors.Is(err, service.ErrInvalidID):
		fmt.Fprintf(errOut, "error: %v\n", err)
	case errors.As(err, &fieldErrs):
		fmt.Fprintf(errOut, "error: invalid task: %s\n", describeFieldErrors(fieldErrs))
	case isRequestFailed && rf.IsValidation():
		fmt.Fprintf(errOut, "error: rejected by server: %v\n", err)
	case isRequestFailed && rf.Status == 404:
		fmt.Fprintln(errOut, "error: not found")
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	}
	return code
}

func describeFieldErrors(errs criterio.FieldErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s %v", fe.Field, fe.Err))
	}
	return strings.Join(parts, "; ")
}

// parseID takes exactly one positional task id.
func parseID(args []string) (service.ID, error) {
	if len(args) == 0 {
		return "", errors.New("task id required")
	}
	if len(args) > 1 {
		return "", fmt.Errorf("unexpected argument: %s", args[1])
	}
	if strings.TrimSpace(args[0]) == "" {
		return "", errors.New("task id required")
	}
	return service.ParseID(args[0])
}
