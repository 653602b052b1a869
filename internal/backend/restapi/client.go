// Package restapi implements service.Backend against the remote task REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"

	"taskman/internal/config"
	"taskman/internal/credential"
	"taskman/internal/service"
)

const (
	tasksPath    = "tasks/"
	loginPath    = "login/"
	registerPath = "register/"
)

// Client implements service.Backend over HTTP/JSON.
type Client struct {
	base    *url.URL
	http    *http.Client
	creds   credential.Store
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates a client for the API at cfg.APIURL that authenticates with creds.
func New(cfg *config.Config, creds credential.Store, logger zerolog.Logger) (*Client, error) {
	c, err := NewWithHTTPClient(cfg.APIURL, &http.Client{}, creds)
	if err != nil {
		return nil, err
	}
	c.timeout = cfg.Timeout
	c.logger = logger
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, creds credential.Store) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Client{
		base:   u,
		http:   httpClient,
		creds:  creds,
		logger: zerolog.Nop(),
	}, nil
}

// List implements service.Service.
func (c *Client) List(ctx context.Context, filter service.Filter, page int) (service.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if filter.Title != "" {
		q.Set("title", filter.Title)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}

	var out service.Page
	if err := c.do(ctx, http.MethodGet, tasksPath, q, nil, &out, true); err != nil {
		return service.Page{}, err
	}
	if out.Items == nil {
		out.Items = []service.Task{}
	}
	return out, nil
}

// Get implements service.Service.
func (c *Client) Get(ctx context.Context, id service.ID) (service.Task, error) {
	path, err := taskPath(id)
	if err != nil {
		return service.Task{}, err
	}
	var out service.Task
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out, true); err != nil {
		return service.Task{}, err
	}
	return out, nil
}

// Create implements service.Service.
func (c *Client) Create(ctx context.Context, draft service.Draft) (service.Task, error) {
	var out service.Task
	if err := c.do(ctx, http.MethodPost, tasksPath, nil, draft, &out, true); err != nil {
		return service.Task{}, err
	}
	return out, nil
}

// Update implements service.Service.
func (c *Client) Update(ctx context.Context, id service.ID, draft service.Draft) (service.Task, error) {
	path, err := taskPath(id)
	if err != nil {
		return service.Task{}, err
	}
	var out service.Task
	if err := c.do(ctx, http.MethodPut, path, nil, draft, &out, true); err != nil {
		return service.Task{}, err
	}
	return out, nil
}

// Remove implements service.Service.
func (c *Client) Remove(ctx context.Context, id service.ID) error {
	path, err := taskPath(id)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, true)
}

// Login implements service.Authenticator.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}

	var out struct {
		Access string `json:"access"`
	}
	err := c.do(ctx, http.MethodPost, loginPath, nil, body, &out, false)
	if service.IsUnauthorized(err) {
		return "", service.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", &service.RequestFailedError{Status: http.StatusOK, Detail: "login response has no access token"}
	}
	return out.Access, nil
}

// Register implements service.Authenticator.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, registerPath, nil, body, nil, false)
}

// taskPath returns the path of one task. Ids that would resolve outside
// tasks/ are refused before any request is made.
func taskPath(id service.ID) (string, error) {
	if _, err := service.ParseID(string(id)); err != nil {
		return "", err
	}
	return tasksPath + string(id) + "/", nil
}

// do sends one request. in is encoded as the JSON body when non-nil; the
// response body is decoded into out when non-nil. The stored credential is
// attached only when authed is set and a credential is present.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any, authed bool) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.base.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return &service.RequestFailedError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if tok := credential.Bearer(c.creds); tok != nil {
			tok.SetAuthHeader(req)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return &service.RequestFailedError{Err: wrapTransportError(err)}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api request")

	if err := googleapi.CheckResponse(resp); err != nil {
		return classify(err)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &service.RequestFailedError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// classify maps a non-2xx response to the service error taxonomy.
func classify(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &service.RequestFailedError{Err: err}
	}
	if gerr.Code == http.StatusUnauthorized {
		return service.ErrUnauthorized
	}

	rf := &service.RequestFailedError{Status: gerr.Code}
	decodeErrorBody(gerr.Body, rf)
	return rf
}

// decodeErrorBody fills Detail or Fields from a JSON error body such as
// {"detail": "Not found."} or {"title": ["This field may not be blank."]}.
func decodeErrorBody(body string, rf *service.RequestFailedError) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return
	}

	if d, ok := raw["detail"]; ok {
		var detail string
		if json.Unmarshal(d, &detail) == nil {
			rf.Detail = detail
			return
		}
	}

	fields := make(map[string][]string)
	for name, v := range raw {
		var msgs []string
		if json.Unmarshal(v, &msgs) == nil {
			fields[name] = msgs
			continue
		}
		var msg string
		if json.Unmarshal(v, &msg) == nil {
			fields[name] = []string{msg}
		}
	}
	if len(fields) > 0 {
		rf.Fields = fields
	}
}

// wrapTransportError gives timeouts a readable message.
func wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}
