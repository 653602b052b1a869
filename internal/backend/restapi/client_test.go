package restapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskman/internal/config"
	"taskman/internal/credential"
	"taskman/internal/service"
)

// recorded captures the parts of a request the tests assert on.
type recorded struct {
	Method string
	Path   string
	Query  map[string][]string
	Auth   string
	Body   string
}

type requestLog struct {
	mu   sync.Mutex
	reqs []recorded
}

func (l *requestLog) add(r recorded) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, r)
}

func (l *requestLog) all() []recorded {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recorded(nil), l.reqs...)
}

func newTestClient(t *testing.T, token string, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *requestLog) {
	t.Helper()

	log := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		log.add(recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewWithHTTPClient(srv.URL+"/api", srv.Client(), credential.NewMemoryStore(token))
	require.NoError(t, err)
	return c, log
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestList_QueryAndDecode(t *testing.T) {
	c, reqs := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"count":    25,
			"next":     nil,
			"previous": nil,
			"results": []map[string]any{
				{"id": 3, "title": "bug one", "description": "", "priority": "high", "status": "pending"},
			},
		})
	})

	page, err := c.List(context.Background(), service.Filter{Title: "bug", Status: service.StatusPending}, 2)
	require.NoError(t, err)

	assert.Equal(t, 25, page.Count)
	require.Len(t, page.Items, 1)
	assert.Equal(t, service.ID("3"), page.Items[0].ID)

	require.Len(t, reqs.all(), 1)
	req := reqs.all()[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/tasks/", req.Path)
	assert.Equal(t, []string{"2"}, req.Query["page"])
	assert.Equal(t, []string{"bug"}, req.Query["title"])
	assert.Equal(t, []string{"pending"}, req.Query["status"])
	assert.Equal(t, "Bearer tok", req.Auth)
}

func TestList_OmitsEmptyFilterKeys(t *testing.T) {
	c, reqs := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"count": 0, "results": []any{}})
	})

	page, err := c.List(context.Background(), service.Filter{}, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)

	req := reqs.all()[0]
	assert.Equal(t, []string{"1"}, req.Query["page"])
	_, hasTitle := req.Query["title"]
	_, hasStatus := req.Query["status"]
	assert.False(t, hasTitle, "empty title must not be sent")
	assert.False(t, hasStatus, "empty status must not be sent")
}

func TestRequest_NoCredentialSendsUnauthenticated(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"count": 0, "results": []any{}})
	})

	_, err := c.List(context.Background(), service.Filter{}, 1)
	require.NoError(t, err)
	assert.Equal(t, "", reqs.all()[0].Auth)
}

func TestRequest_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, "expired", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"detail": "Given token not valid for any token type",
			"code":   "token_not_valid",
		})
	})

	ctx := context.Background()

	_, err := c.List(ctx, service.Filter{}, 1)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = c.Create(ctx, service.NewDraft())
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = c.Update(ctx, "1", service.NewDraft())
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	err = c.Remove(ctx, "1")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestRequest_ValidationFailure(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"title": []string{"This field may not be blank."}})
	})

	_, err := c.Create(context.Background(), service.NewDraft())

	rf, ok := service.AsRequestFailed(err)
	require.True(t, ok, "expected RequestFailedError, got %v", err)
	assert.Equal(t, http.StatusBadRequest, rf.Status)
	assert.True(t, rf.IsValidation())
	assert.Equal(t, []string{"This field may not be blank."}, rf.Fields["title"])
	assert.False(t, service.IsUnauthorized(err))
}

func TestRequest_ServerError(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.Remove(context.Background(), "7")

	rf, ok := service.AsRequestFailed(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, rf.Status)
}

func TestRequest_NotFoundDetail(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Invalid page."})
	})

	_, err := c.List(context.Background(), service.Filter{}, 9)
	assert.True(t, service.IsNotFound(err))

	rf, _ := service.AsRequestFailed(err)
	assert.Equal(t, "Invalid page.", rf.Detail)
}

func TestRequest_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewWithHTTPClient(url, &http.Client{}, credential.NewMemoryStore("tok"))
	require.NoError(t, err)

	_, err = c.List(context.Background(), service.Filter{}, 1)

	rf, ok := service.AsRequestFailed(err)
	require.True(t, ok)
	assert.Equal(t, 0, rf.Status)
	assert.Error(t, rf.Err)
}

func TestRequest_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{APIURL: srv.URL, Timeout: 50 * time.Millisecond}
	c, err := New(cfg, credential.NewMemoryStore("tok"), zerolog.Nop())
	require.NoError(t, err)

	_, err = c.List(context.Background(), service.Filter{}, 1)

	rf, ok := service.AsRequestFailed(err)
	require.True(t, ok)
	assert.Contains(t, rf.Error(), "timed out")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreateUpdateRemove_Routes(t *testing.T) {
	c, reqs := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			writeJSON(w, http.StatusCreated, map[string]any{"id": 11, "title": "new", "priority": "medium", "status": "pending"})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"id": 11, "title": "renamed", "priority": "low", "status": "completed"})
		}
	})
	ctx := context.Background()

	draft := service.Draft{Title: "new", Priority: service.PriorityMedium, Status: service.StatusPending}
	created, err := c.Create(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, service.ID("11"), created.ID)

	updated, err := c.Update(ctx, created.ID, service.Draft{Title: "renamed", Priority: service.PriorityLow, Status: service.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, service.StatusCompleted, updated.Status)

	require.NoError(t, c.Remove(ctx, created.ID))

	require.Len(t, reqs.all(), 3)
	assert.Equal(t, http.MethodPost, reqs.all()[0].Method)
	assert.Equal(t, "/api/tasks/", reqs.all()[0].Path)
	assert.JSONEq(t, `{"title":"new","description":"","priority":"medium","status":"pending"}`, reqs.all()[0].Body)

	assert.Equal(t, http.MethodPut, reqs.all()[1].Method)
	assert.Equal(t, "/api/tasks/11/", reqs.all()[1].Path)

	assert.Equal(t, http.MethodDelete, reqs.all()[2].Method)
	assert.Equal(t, "/api/tasks/11/", reqs.all()[2].Path)
}

func TestTaskRoutes_RefuseIDsOutsideTasks(t *testing.T) {
	c, reqs := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()
	draft := service.Draft{Title: "x", Priority: service.PriorityLow, Status: service.StatusPending}

	for _, id := range []service.ID{"../../admin", "..", ".", "1/2", `..\admin`, ""} {
		t.Run(string(id), func(t *testing.T) {
			assert.ErrorIs(t, c.Remove(ctx, id), service.ErrInvalidID)

			_, err := c.Get(ctx, id)
			assert.ErrorIs(t, err, service.ErrInvalidID)

			_, err = c.Update(ctx, id, draft)
			assert.ErrorIs(t, err, service.ErrInvalidID)
		})
	}
	assert.Empty(t, reqs.all(), "no request leaves the client")
}

func TestTaskRoutes_EscapeQueryCharacters(t *testing.T) {
	c, reqs := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Remove(context.Background(), "7?x=1"))

	require.Len(t, reqs.all(), 1)
	assert.Equal(t, "/api/tasks/7?x=1/", reqs.all()[0].Path)
	assert.Empty(t, reqs.all()[0].Query)
}

func TestGet(t *testing.T) {
	c, reqs := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 5, "title": "five", "priority": "high", "status": "pending"})
	})

	task, err := c.Get(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, "five", task.Title)
	assert.Equal(t, "/api/tasks/5/", reqs.all()[0].Path)
}

func TestLogin_NeverSendsCredential(t *testing.T) {
	c, reqs := newTestClient(t, "stale-token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"access": "fresh", "refresh": "r"})
	})

	tok, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)

	req := reqs.all()[0]
	assert.Equal(t, "/api/login/", req.Path)
	assert.Equal(t, "", req.Auth)
	assert.JSONEq(t, `{"username":"alice","password":"pw"}`, req.Body)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "No active account found with the given credentials"})
	})

	_, err := c.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.False(t, service.IsUnauthorized(err))
}

func TestRegister(t *testing.T) {
	c, reqs := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": 1, "username": "bob"})
	})

	require.NoError(t, c.Register(context.Background(), "bob", "bob@example.com", "pw"))
	assert.Equal(t, "/api/register/", reqs.all()[0].Path)
	assert.JSONEq(t, `{"username":"bob","email":"bob@example.com","password":"pw"}`, reqs.all()[0].Body)
}

func TestRegister_Failure(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"username": []string{"A user with that username already exists."}})
	})

	err := c.Register(context.Background(), "bob", "", "pw")
	rf, ok := service.AsRequestFailed(err)
	require.True(t, ok)
	assert.Contains(t, rf.Error(), "already exists")
}
