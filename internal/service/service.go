// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the task operations of the remote API.
// Every call attaches the stored credential when one is present.
// Failures are reported as ErrUnauthorized or *RequestFailedError.
type Service interface {
	// List returns one page of tasks matching filter.
	// page is 1-based; the server fixes the page size (PageSize).
	// Results are in server order (no client-side sorting or filtering).
	List(ctx context.Context, filter Filter, page int) (Page, error)

	// Get returns a single task.
	Get(ctx context.Context, id ID) (Task, error)

	// Create creates a task and returns it as stored by the server.
	Create(ctx context.Context, draft Draft) (Task, error)

	// Update replaces the writable fields of a task.
	Update(ctx context.Context, id ID, draft Draft) (Task, error)

	// Remove deletes a task.
	Remove(ctx context.Context, id ID) error
}

// Authenticator covers the account endpoints. These never carry a credential.
type Authenticator interface {
	// Login exchanges a username and password for a bearer token.
	// Returns ErrInvalidCredentials if the server rejects them.
	Login(ctx context.Context, username, password string) (string, error)

	// Register creates an account.
	Register(ctx context.Context, username, email, password string) error
}

// Backend is a remote API that serves both tasks and accounts.
type Backend interface {
	Service
	Authenticator
}
