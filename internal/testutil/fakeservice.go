// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"taskman/internal/credential"
	"taskman/internal/service"
)

// ListCall records the arguments of one List call.
type ListCall struct {
	Filter service.Filter
	Page   int
}

// FakeService is an in-memory implementation of service.Backend for testing.
// It mimics the remote API: newest tasks first, 10 per page, 404 for a page
// past the end, exact status match and case-insensitive title match.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task // newest first
	nextID int
	users  map[string]user
	now    time.Time

	// Creds and ValidToken, when both set, make every task call check the
	// stored credential and fail with service.ErrUnauthorized on mismatch.
	Creds      credential.Store
	ValidToken string

	// Error injection for testing
	ListErr     error
	GetErr      error
	CreateErr   error
	UpdateErr   error
	RemoveErr   error
	LoginErr    error
	RegisterErr error

	listCalls   []ListCall
	createCalls []service.Draft
	updateCalls []service.ID
	removeCalls []service.ID
}

type user struct {
	email    string
	password string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		users:  make(map[string]user),
		now:    time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// AddTask stores a task as if it had been created now and returns it.
func (f *FakeService) AddTask(title string, priority service.Priority, status service.Status) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(service.Draft{Title: title, Priority: priority, Status: status})
}

// AddTasks stores n pending, medium tasks titled "<prefix> 1" .. "<prefix> n".
func (f *FakeService) AddTasks(prefix string, n int) {
	for i := 1; i <= n; i++ {
		f.AddTask(prefix+" "+strconv.Itoa(i), service.PriorityMedium, service.StatusPending)
	}
}

// AddUser registers an account that Login accepts.
func (f *FakeService) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = user{password: password}
}

// Tasks returns every stored task, newest first.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// ListCalls returns the arguments of every List call so far.
func (f *FakeService) ListCalls() []ListCall {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]ListCall(nil), f.listCalls...)
}

// CreateCalls returns the drafts passed to Create so far.
func (f *FakeService) CreateCalls() []service.Draft {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Draft(nil), f.createCalls...)
}

// UpdateCalls returns the ids passed to Update so far.
func (f *FakeService) UpdateCalls() []service.ID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.ID(nil), f.updateCalls...)
}

// RemoveCalls returns the ids passed to Remove so far.
func (f *FakeService) RemoveCalls() []service.ID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.ID(nil), f.removeCalls...)
}

// MutationCount returns how many create, update and remove calls were made.
func (f *FakeService) MutationCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.createCalls) + len(f.updateCalls) + len(f.removeCalls)
}

// List implements service.Service.
func (f *FakeService) List(ctx context.Context, filter service.Filter, page int) (service.Page, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, ListCall{Filter: filter, Page: page})
	f.mu.Unlock()

	if err := f.authorize(); err != nil {
		return service.Page{}, err
	}
	if f.ListErr != nil {
		return service.Page{}, f.ListErr
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var matched []service.Task
	for _, t := range f.tasks {
		if filter.Title != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		matched = append(matched, t)
	}

	start := (page - 1) * service.PageSize
	if page < 1 || (page > 1 && start >= len(matched)) {
		return service.Page{}, &service.RequestFailedError{Status: http.StatusNotFound, Detail: "Invalid page."}
	}
	end := min(start+service.PageSize, len(matched))

	items := make([]service.Task, 0, end-start)
	items = append(items, matched[start:end]...)
	return service.Page{Items: items, Count: len(matched)}, nil
}

// Get implements service.Service.
func (f *FakeService) Get(ctx context.Context, id service.ID) (service.Task, error) {
	if err := f.authorize(); err != nil {
		return service.Task{}, err
	}
	if f.GetErr != nil {
		return service.Task{}, f.GetErr
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if i := f.index(id); i >= 0 {
		return f.tasks[i], nil
	}
	return service.Task{}, notFound()
}

// Create implements service.Service.
func (f *FakeService) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, draft)
	f.mu.Unlock()

	if err := f.authorize(); err != nil {
		return service.Task{}, err
	}
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	if err := validate(draft); err != nil {
		return service.Task{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(draft), nil
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, id service.ID, draft service.Draft) (service.Task, error) {
	f.mu.Lock()
	f.updateCalls = append(f.updateCalls, id)
	f.mu.Unlock()

	if err := f.authorize(); err != nil {
		return service.Task{}, err
	}
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	if err := validate(draft); err != nil {
		return service.Task{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return service.Task{}, notFound()
	}
	t := &f.tasks[i]
	t.Title = draft.Title
	t.Description = draft.Description
	t.Priority = draft.Priority
	t.Status = draft.Status
	return *t, nil
}

// Remove implements service.Service.
func (f *FakeService) Remove(ctx context.Context, id service.ID) error {
	f.mu.Lock()
	f.removeCalls = append(f.removeCalls, id)
	f.mu.Unlock()

	if err := f.authorize(); err != nil {
		return err
	}
	if f.RemoveErr != nil {
		return f.RemoveErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return notFound()
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

// Login implements service.Authenticator. It returns ValidToken (or
// "token-<username>" when ValidToken is empty) for a known user.
func (f *FakeService) Login(ctx context.Context, username, password string) (string, error) {
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.mu.RLock()
	u, ok := f.users[username]
	f.mu.RUnlock()
	if !ok || u.password != password {
		return "", service.ErrInvalidCredentials
	}
	if f.ValidToken != "" {
		return f.ValidToken, nil
	}
	return "token-" + username, nil
}

// Register implements service.Authenticator.
func (f *FakeService) Register(ctx context.Context, username, email, password string) error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[username]; exists {
		return &service.RequestFailedError{
			Status: http.StatusBadRequest,
			Fields: map[string][]string{"username": {"A user with that username already exists."}},
		}
	}
	f.users[username] = user{email: email, password: password}
	return nil
}

func (f *FakeService) authorize() error {
	if f.Creds == nil || f.ValidToken == "" {
		return nil
	}
	tok, ok := f.Creds.Get()
	if !ok || tok != f.ValidToken {
		return service.ErrUnauthorized
	}
	return nil
}

// insert must be called with f.mu held.
func (f *FakeService) insert(d service.Draft) service.Task {
	t := service.Task{
		ID:          service.ID(strconv.Itoa(f.nextID)),
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Status:      d.Status,
		CreatedAt:   f.now.Add(time.Duration(f.nextID) * time.Minute),
	}
	f.nextID++
	f.tasks = append([]service.Task{t}, f.tasks...)
	return t
}

// index must be called with f.mu held.
func (f *FakeService) index(id service.ID) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func validate(d service.Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		return &service.RequestFailedError{
			Status: http.StatusBadRequest,
			Fields: map[string][]string{"title": {"This field may not be blank."}},
		}
	}
	return nil
}

func notFound() error {
	return &service.RequestFailedError{Status: http.StatusNotFound, Detail: "Not found."}
}
