// Package tasklist owns the client-side view of the paged, filtered task
// collection and keeps it in step with the server.
//
// The Controller is a state machine driven from a single goroutine (the event
// loop). Operations that need the network do not block: they return an Effect,
// which the caller runs wherever it likes and whose Result is fed back through
// Apply on the owning goroutine. Drive does both synchronously for callers that
// have no event loop.
package tasklist

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"taskman/internal/service"
)

// ErrFormClosed is returned by SubmitForm when no form is open.
var ErrFormClosed = errors.New("no form open")

// Effect is deferred I/O. It may run on any goroutine; it does not touch
// controller state.
type Effect func(ctx context.Context) Result

// Result is the outcome of an Effect, to be passed to Controller.Apply.
type Result interface {
	result()
}

type listResult struct {
	seq  uint64
	page int
	resp service.Page
	err  error
}

type submitResult struct {
	formSeq uint64
	task    service.Task
	err     error
}

type deleteResult struct {
	id  service.ID
	err error
}

func (listResult) result()   {}
func (submitResult) result() {}
func (deleteResult) result() {}

// Unauthorizer is told when the server rejects the credential.
type Unauthorizer interface {
	OnUnauthorized()
}

// FormMode says whether the form is closed or what it is for.
type FormMode int

const (
	FormClosed FormMode = iota
	FormCreate
	FormEdit
)

func (m FormMode) String() string {
	switch m {
	case FormCreate:
		return "create"
	case FormEdit:
		return "edit"
	default:
		return "closed"
	}
}

// Form is the create/edit form. At most one task is edited at a time.
type Form struct {
	Mode       FormMode
	EditingID  service.ID
	Draft      service.Draft
	Submitting bool
}

// IsOpen reports whether the form is shown.
func (f Form) IsOpen() bool { return f.Mode != FormClosed }

// State is a snapshot of the controller.
type State struct {
	Filter    service.Filter
	Page      int
	PageCount int
	Tasks     []service.Task
	Form      Form
	Loading   bool

	// Err is the last failure signal; cleared by the next success.
	Err error
}

// LastPage returns the highest page that may be requested.
func (s State) LastPage() int {
	return max(s.PageCount, 1)
}

// Controller is the task collection controller. It is not safe for
// concurrent use: every method must be called from the owning goroutine.
type Controller struct {
	svc    service.Service
	guard  Unauthorizer
	logger zerolog.Logger

	state State

	// listSeq is the sequence number of the last issued list request.
	// Responses carrying an older number are discarded.
	listSeq     uint64
	listPending bool

	// formSeq changes every time the form is opened or closed, so a submit
	// result only closes the form it was submitted from.
	formSeq   uint64
	mutations int
}

// New returns a controller on page 1 with no filter and a closed form.
func New(svc service.Service, guard Unauthorizer, logger zerolog.Logger) *Controller {
	return &Controller{
		svc:    svc,
		guard:  guard,
		logger: logger,
		state: State{
			Page: 1,
			Form: Form{Draft: service.NewDraft()},
		},
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	s := c.state
	s.Tasks = slices.Clone(c.state.Tasks)
	s.Loading = c.listPending || c.mutations > 0
	return s
}

// Refresh reloads the current (filter, page) from the server.
func (c *Controller) Refresh() Effect {
	c.listSeq++
	c.listPending = true

	seq, filter, page := c.listSeq, c.state.Filter, c.state.Page
	return func(ctx context.Context) Result {
		resp, err := c.svc.List(ctx, filter, page)
		return listResult{seq: seq, page: page, resp: resp, err: err}
	}
}

// SetFilter replaces the filter and returns to page 1.
func (c *Controller) SetFilter(f service.Filter) Effect {
	c.state.Filter = f
	c.state.Page = 1
	return c.Refresh()
}

// SetPage moves to page n. Pages outside [1, pageCount] are ignored and
// SetPage returns nil.
func (c *Controller) SetPage(n int) Effect {
	if n < 1 || n > c.state.LastPage() {
		return nil
	}
	c.state.Page = n
	return c.Refresh()
}

// ResetFilter clears the filter. SetFilter already returns to page 1, so a
// single refresh covers both steps.
func (c *Controller) ResetFilter() Effect {
	return c.SetFilter(service.Filter{})
}

// OpenCreateForm opens an empty form, discarding any draft in progress.
func (c *Controller) OpenCreateForm() {
	c.formSeq++
	c.state.Form = Form{Mode: FormCreate, Draft: service.NewDraft()}
}

// OpenEditForm opens the form on a copy of task, discarding any draft in progress.
func (c *Controller) OpenEditForm(task service.Task) {
	c.formSeq++
	c.state.Form = Form{Mode: FormEdit, EditingID: task.ID, Draft: task.Draft()}
}

// SetDraft replaces the draft of the open form. It does nothing when the form is closed.
func (c *Controller) SetDraft(d service.Draft) {
	if !c.state.Form.IsOpen() {
		return
	}
	c.state.Form.Draft = d
}

// CancelForm closes the form and discards the draft. No request is made.
func (c *Controller) CancelForm() {
	c.closeForm()
}

// SubmitForm sends the draft: an update when editing, a create otherwise.
// A draft without a title is rejected with service.ErrTitleRequired and no
// request is made. A second submit while one is in flight returns nil, nil.
func (c *Controller) SubmitForm() (Effect, error) {
	form := c.state.Form
	if !form.IsOpen() {
		return nil, ErrFormClosed
	}
	if form.Submitting {
		return nil, nil
	}
	if strings.TrimSpace(form.Draft.Title) == "" {
		c.state.Err = service.ErrTitleRequired
		return nil, service.ErrTitleRequired
	}
	if err := ValidateDraft(form.Draft); err != nil {
		c.state.Err = err
		return nil, err
	}

	c.state.Form.Submitting = true
	c.mutations++

	formSeq, id, draft := c.formSeq, form.EditingID, form.Draft
	editing := form.Mode == FormEdit
	return func(ctx context.Context) Result {
		var (
			task service.Task
			err  error
		)
		if editing {
			task, err = c.svc.Update(ctx, id, draft)
		} else {
			task, err = c.svc.Create(ctx, draft)
		}
		return submitResult{formSeq: formSeq, task: task, err: err}
	}, nil
}

// DeleteTask removes a task on the server. No confirmation is asked here.
func (c *Controller) DeleteTask(id service.ID) Effect {
	c.mutations++
	return func(ctx context.Context) Result {
		return deleteResult{id: id, err: c.svc.Remove(ctx, id)}
	}
}

// Apply folds the result of an Effect into the state. It returns a follow-up
// effect (a refresh after a successful mutation) and the failure signal, if
// any. Unauthorized results are handed to the guard and returned as
// service.ErrUnauthorized without touching the task list.
func (c *Controller) Apply(r Result) (Effect, error) {
	switch r := r.(type) {
	case listResult:
		return c.applyList(r)
	case submitResult:
		return c.applySubmit(r)
	case deleteResult:
		return c.applyDelete(r)
	default:
		return nil, nil
	}
}

// Drive runs eff and every follow-up effect on the calling goroutine and
// returns the first failure signal.
func (c *Controller) Drive(ctx context.Context, eff Effect) error {
	var err error
	for eff != nil {
		eff, err = c.Apply(eff(ctx))
	}
	return err
}

func (c *Controller) applyList(r listResult) (Effect, error) {
	if r.seq != c.listSeq {
		c.logger.Debug().
			Uint64("seq", r.seq).
			Uint64("latest", c.listSeq).
			Msg("discarding stale list response")
		return nil, nil
	}
	c.listPending = false

	if r.err != nil {
		if service.IsUnauthorized(r.err) {
			c.unauthorized()
			return nil, r.err
		}
		// The paginator answers 404 for a page past the end, e.g. after the
		// last task of the last page was deleted.
		if service.IsNotFound(r.err) && r.page > 1 {
			c.logger.Debug().Int("page", r.page).Msg("page no longer exists, returning to page 1")
			c.state.Page = 1
			return c.Refresh(), nil
		}
		c.state.Err = r.err
		return nil, r.err
	}

	c.state.Tasks = r.resp.Items
	c.state.PageCount = service.PageCount(r.resp.Count)
	c.state.Err = nil

	if last := c.state.LastPage(); c.state.Page > last {
		c.state.Page = last
		return c.Refresh(), nil
	}
	return nil, nil
}

func (c *Controller) applySubmit(r submitResult) (Effect, error) {
	c.mutations--
	current := r.formSeq == c.formSeq
	if current {
		c.state.Form.Submitting = false
	}

	if r.err != nil {
		if service.IsUnauthorized(r.err) {
			c.unauthorized()
			return nil, r.err
		}
		c.logger.Warn().Err(r.err).Msg("saving task failed")
		c.state.Err = r.err
		return nil, r.err
	}

	c.logger.Debug().Str("id", string(r.task.ID)).Msg("task saved")
	if current {
		c.closeForm()
	}
	c.state.Err = nil
	return c.Refresh(), nil
}

func (c *Controller) applyDelete(r deleteResult) (Effect, error) {
	c.mutations--

	if r.err != nil {
		if service.IsUnauthorized(r.err) {
			c.unauthorized()
			return nil, r.err
		}
		c.logger.Warn().Err(r.err).Str("id", string(r.id)).Msg("deleting task failed")
		c.state.Err = r.err
		return nil, r.err
	}

	c.state.Err = nil
	return c.Refresh(), nil
}

func (c *Controller) closeForm() {
	c.formSeq++
	c.state.Form = Form{Draft: service.NewDraft()}
}

func (c *Controller) unauthorized() {
	if c.guard != nil {
		c.guard.OnUnauthorized()
	}
}
