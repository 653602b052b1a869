package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PageSize is the number of tasks the remote API returns per page.
const PageSize = 10

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority converts user input (case-insensitive, trimmed) to a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Priorities {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority: %s", s)
}

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusCompleted}

// ParseStatus converts user input to a Status.
// The empty string is accepted and means "any status" when used in a Filter.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return "", nil
	}
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status: %s", s)
}

// ID identifies a task. The server assigns it; the client treats it as opaque.
// The remote API encodes ids as JSON numbers, so both numbers and strings decode.
type ID string

// ParseID checks a task id given by the user. The id becomes one segment of
// the request path, so path separators and dot segments are refused.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidID)
	case s == "." || s == "..", strings.ContainsAny(s, "/\\"):
		return "", fmt.Errorf("%w: %s", ErrInvalidID, s)
	}
	return ID(s), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Task represents a single task record as returned by the server.
type Task struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// Draft returns the editable fields of the task.
func (t Task) Draft() Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
	}
}

// Draft holds the writable fields of a task: the body of create and update calls.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
}

// NewDraft returns a draft with default field values.
func NewDraft() Draft {
	return Draft{Priority: PriorityMedium, Status: StatusPending}
}

// Filter narrows which tasks the server returns. Empty fields mean "no filter".
type Filter struct {
	Title  string
	Status Status
}

// IsZero reports whether the filter matches every task.
func (f Filter) IsZero() bool {
	return f.Title == "" && f.Status == ""
}

// Page is one page of a list response.
type Page struct {
	Items []Task `json:"results"`
	Count int    `json:"count"`
}

// PageCount returns the number of pages needed to show count tasks.
func PageCount(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + PageSize - 1) / PageSize
}
