package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tarefista/tarefista/internal/instrumentation"
	"github.com/tarefista/tarefista/internal/logging"
)

// DefaultBaseURL is the production backend.
const DefaultBaseURL = "https://tarefista-api-81ceecfa6b1c.herokuapp.com"

// maxResponseBody caps how much of a response body is read. The task list
// of a single user is small; anything beyond this is a misbehaving server.
const maxResponseBody = 4 << 20

// Client is a client for the Tarefista REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
	metrics    *instrumentation.Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Use this to configure
// timeouts or inject a test transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for API operations.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer enables span creation around API operations.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// withClock overrides the clock; used by tests for deterministic payloads.
func withClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new backend client. An empty baseURL selects the
// production backend.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logging.DefaultLogger(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the backend base URL this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one backend request and returns the raw response body.
// Failures are mapped onto the error taxonomy: transport problems and
// non-2xx statuses become *Error, with the server's message carried
// verbatim when the body contains one.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body interface{}, token string) ([]byte, error) {
	var end func(error)
	if c.tracer != nil {
		ctx, end = instrumentation.StartSpan(ctx, c.tracer, op)
	}

	start := c.now()
	data, err := c.roundTrip(ctx, op, method, path, query, body, token)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	c.metrics.RecordAPIOperation(ctx, op, status, duration)
	if end != nil {
		end(err)
	}

	if err != nil {
		c.logger.Warn("backend request failed",
			logging.KeyOperation, op,
			logging.KeyDuration, duration.String(),
			logging.KeyError, err.Error(),
		)
		return nil, err
	}

	c.logger.Debug("backend request",
		logging.KeyOperation, op,
		logging.KeyDuration, duration.String(),
	)
	return data, nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, query url.Values, body interface{}, token string) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(data),
		}
	}

	return data, nil
}

// serverMessage pulls the human-readable error out of an error response
// body. The backend uses {"message": ...} but some handlers return
// {"error": ...} or plain text.
func serverMessage(body []byte) string {
	var wire struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err == nil {
		if wire.Message != "" {
			return wire.Message
		}
		if wire.Error != "" {
			return wire.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// decode unmarshals a 2xx body into out, mapping failures onto
// ErrMalformedResponse.
func decode(op string, data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrMalformedResponse, err)
	}
	return nil
}

// Login authenticates with email and password. On failure the server's
// error message is preserved verbatim in the returned *Error.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body := map[string]string{"email": email, "password": password}

	data, err := c.do(ctx, "login", http.MethodPost, "/api/login", nil, body, "")
	c.metrics.RecordAuthAttempt(ctx, "login", authResult(err))
	if err != nil {
		return nil, err
	}

	var wire struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	if err := decode("login", data, &wire); err != nil {
		return nil, err
	}
	if wire.Token == "" {
		return nil, fmt.Errorf("login: %w: response carries no token", ErrMalformedResponse)
	}

	return &Credentials{Token: wire.Token, User: decodeProfile(wire.User)}, nil
}

// Register creates a new account. Backends that log the user in on
// registration return credentials; otherwise Token is empty and the caller
// should follow up with Login.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Credentials, error) {
	body := map[string]string{"name": name, "email": email, "password": password}

	data, err := c.do(ctx, "register", http.MethodPost, "/api/register", nil, body, "")
	c.metrics.RecordAuthAttempt(ctx, "register", authResult(err))
	if err != nil {
		return nil, err
	}

	var wire struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	// Tolerate empty or non-JSON bodies: registration succeeded either way.
	_ = json.Unmarshal(data, &wire)

	return &Credentials{Token: wire.Token, User: decodeProfile(wire.User)}, nil
}

// Logout invalidates the session server-side.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, "logout", http.MethodPost, "/api/logout", nil, struct{}{}, token)
	c.metrics.RecordAuthAttempt(ctx, "logout", authResult(err))
	return err
}

func authResult(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}

// UserID exchanges a bearer token for the stable user id.
func (c *Client) UserID(ctx context.Context, token string) (string, error) {
	data, err := c.do(ctx, "userId", http.MethodGet, "/api/userId", nil, nil, token)
	if err != nil {
		return "", err
	}

	var wire struct {
		UserID string `json:"userId"`
	}
	if err := decode("userId", data, &wire); err != nil {
		return "", err
	}
	if wire.UserID == "" {
		return "", fmt.Errorf("userId: %w: response carries no user id", ErrMalformedResponse)
	}

	return wire.UserID, nil
}

// Tasks lists all tasks scoped to the given identity.
func (c *Client) Tasks(ctx context.Context, ident Identity) ([]Task, error) {
	query := url.Values{}
	if ident.UserID != "" {
		query.Set("userId", ident.UserID)
	} else {
		query.Set("tempUserId", ident.TempUserID)
	}

	data, err := c.do(ctx, "tasks.list", http.MethodGet, "/api/tasks", query, nil, "")
	if err != nil {
		return nil, err
	}

	var wires []taskWire
	if err := decode("tasks.list", data, &wires); err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(wires))
	for _, w := range wires {
		tasks = append(tasks, toTask(w))
	}
	return tasks, nil
}

// CreateTask creates a new task. The returned task carries the id assigned
// by the backend, and a tempUserId when the server chose to assign one to
// an anonymous caller.
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (*Task, error) {
	payload := taskPayload(in, c.now())

	data, err := c.do(ctx, "tasks.create", http.MethodPost, "/api/tasks", nil, payload, "")
	if err != nil {
		return nil, err
	}

	// Some backend handlers respond with plain text on success. Treat an
	// undecodable 2xx body as a soft failure: log and echo the payload back.
	var wire taskWire
	if jsonErr := json.Unmarshal(data, &wire); jsonErr != nil || wire.Text == "" {
		c.logger.Warn("task created but response body was not a task record",
			logging.KeyOperation, "tasks.create",
		)
		created := toTask(payload)
		return &created, nil
	}

	created := toTask(wire)
	return &created, nil
}

// UpdateTask replaces a task's content.
func (c *Client) UpdateTask(ctx context.Context, taskID string, in TaskInput) (*Task, error) {
	if taskID == "" {
		return nil, &Error{Op: "tasks.update", Err: fmt.Errorf("task id cannot be empty")}
	}

	payload := taskPayload(in, c.now())

	data, err := c.do(ctx, "tasks.update", http.MethodPut, "/api/tasks/"+url.PathEscape(taskID), nil, payload, "")
	if err != nil {
		return nil, err
	}

	var wire taskWire
	if jsonErr := json.Unmarshal(data, &wire); jsonErr != nil || wire.Text == "" {
		updated := toTask(payload)
		updated.ID = taskID
		return &updated, nil
	}

	updated := toTask(wire)
	if updated.ID == "" {
		updated.ID = taskID
	}
	return &updated, nil
}

// SetCompleted toggles a task's completion flag without touching its other
// fields.
func (c *Client) SetCompleted(ctx context.Context, taskID string, completed bool) error {
	if taskID == "" {
		return &Error{Op: "tasks.complete", Err: fmt.Errorf("task id cannot be empty")}
	}

	body := map[string]bool{"completed": completed}
	_, err := c.do(ctx, "tasks.complete", http.MethodPut, "/api/tasks/"+url.PathEscape(taskID), nil, body, "")
	return err
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	if taskID == "" {
		return &Error{Op: "tasks.delete", Err: fmt.Errorf("task id cannot be empty")}
	}

	_, err := c.do(ctx, "tasks.delete", http.MethodDelete, "/api/tasks/"+url.PathEscape(taskID), nil, nil, "")
	return err
}

// Goals lists all goals for the given user.
func (c *Client) Goals(ctx context.Context, userID string) ([]Goal, error) {
	query := url.Values{}
	if userID != "" {
		query.Set("userId", userID)
	}

	data, err := c.do(ctx, "goals.list", http.MethodGet, "/api/goals", query, nil, "")
	if err != nil {
		return nil, err
	}

	var wires []goalWire
	if err := decode("goals.list", data, &wires); err != nil {
		return nil, err
	}

	goals := make([]Goal, 0, len(wires))
	for _, w := range wires {
		goals = append(goals, toGoal(w))
	}
	return goals, nil
}

// CreateGoal creates a new goal.
func (c *Client) CreateGoal(ctx context.Context, in GoalInput) (*Goal, error) {
	if !in.Periodicity.Valid() {
		return nil, &Error{Op: "goals.create", Err: fmt.Errorf("unknown periodicity %q", in.Periodicity)}
	}

	payload := goalWire{
		Text:        in.Text,
		Periodicity: string(in.Periodicity),
		UserID:      in.UserID,
	}

	data, err := c.do(ctx, "goals.create", http.MethodPost, "/api/goals", nil, payload, "")
	if err != nil {
		return nil, err
	}

	var wire goalWire
	if jsonErr := json.Unmarshal(data, &wire); jsonErr != nil || wire.Text == "" {
		created := toGoal(payload)
		return &created, nil
	}

	created := toGoal(wire)
	return &created, nil
}

// DeleteGoal deletes a goal.
func (c *Client) DeleteGoal(ctx context.Context, goalID string) error {
	if goalID == "" {
		return &Error{Op: "goals.delete", Err: fmt.Errorf("goal id cannot be empty")}
	}

	_, err := c.do(ctx, "goals.delete", http.MethodDelete, "/api/goals/"+url.PathEscape(goalID), nil, nil, "")
	return err
}

// Phrase fetches the motivational phrase of the day.
func (c *Client) Phrase(ctx context.Context) (string, error) {
	data, err := c.do(ctx, "phrases.get", http.MethodGet, "/api/phrases", nil, nil, "")
	if err != nil {
		return "", err
	}

	var wire struct {
		Phrase string `json:"phrase"`
	}
	if err := decode("phrases.get", data, &wire); err != nil {
		return "", err
	}

	return wire.Phrase, nil
}
