// Package api is the typed client for the remote task/user/payment API. All
// endpoints speak JSON over HTTP relative to a configured base URL, with one
// fixed deadline per call; a call past its deadline is treated as failed.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chukwudi34/task-manager/internal/model"
)

// Client talks to the remote task API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewClient returns a client for the API at baseURL. Every call gets at most
// timeout before it is treated as failed.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// dataEnvelope is the {"data": ...} wrapper most endpoints respond with.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// errorBody covers both error response shapes the API uses: field-level
// errors and a bare message.
type errorBody struct {
	Errors  map[string]string `json:"errors"`
	Message string            `json:"message"`
}

// CreateUser registers a new identity. Field-level problems come back as
// FieldErrors; anything else is a RemoteError.
func (c *Client) CreateUser(ctx context.Context, fullName, email string) (model.Identity, error) {
	body := map[string]string{"full_name": fullName, "email": email}
	var out dataEnvelope[model.Identity]
	if err := c.do(ctx, "create user", http.MethodPost, "/user", nil, body, &out); err != nil {
		return model.Identity{}, err
	}
	return out.Data, nil
}

// ListQuery names the server-side task list filters.
type ListQuery struct {
	Search string
	Status model.Status
	Date   string // YYYY-MM-DD
	UserID string
}

// ListTasks fetches the task collection for a user. The response body has
// been observed both as a bare array and wrapped in {"data": [...]}; both are
// accepted.
func (c *Client) ListTasks(ctx context.Context, q ListQuery) ([]model.Task, error) {
	vals := url.Values{}
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	if q.Status != "" {
		vals.Set("status", string(q.Status))
	}
	if q.Date != "" {
		vals.Set("date", q.Date)
	}
	vals.Set("user_id", q.UserID)

	var raw json.RawMessage
	if err := c.do(ctx, "list tasks", http.MethodGet, "/tasks", vals, nil, &raw); err != nil {
		return nil, err
	}
	tasks, err := decodeTaskList(raw)
	if err != nil {
		return nil, &RemoteError{Op: "list tasks", Err: err}
	}
	return tasks, nil
}

func decodeTaskList(raw json.RawMessage) ([]model.Task, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tasks []model.Task
		if err := json.Unmarshal(trimmed, &tasks); err != nil {
			return nil, fmt.Errorf("decode task array: %w", err)
		}
		return tasks, nil
	}
	var env dataEnvelope[[]model.Task]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode task envelope: %w", err)
	}
	return env.Data, nil
}

// TaskInput is the writable portion of a task.
type TaskInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Status      model.Status `json:"status"`
	UserID      string       `json:"user_id,omitempty"`
}

// CreateTask creates a task owned by the given user.
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (model.Task, error) {
	var out model.Task
	if err := c.do(ctx, "create task", http.MethodPost, "/tasks", nil, in, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// GetTask fetches a single task by id.
func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var out dataEnvelope[model.Task]
	if err := c.do(ctx, "get task", http.MethodGet, "/tasks/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return model.Task{}, err
	}
	return out.Data, nil
}

// UpdateTask replaces the writable fields of a task.
func (c *Client) UpdateTask(ctx context.Context, id string, in TaskInput) (model.Task, error) {
	var out model.Task
	if err := c.do(ctx, "update task", http.MethodPut, "/tasks/"+url.PathEscape(id), nil, in, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// DeleteTask removes a task. The server answers 204 or a bare ok body; only
// the status matters.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, "delete task", http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}

// PaymentInit is the request body for payment initialization.
type PaymentInit struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Amount   int64  `json:"amount"`
	Plan     string `json:"plan"`
	UserID   string `json:"user_id"`
}

// InitializePayment obtains a server-side transaction id for an upgrade
// attempt. Verification is impossible without it.
func (c *Client) InitializePayment(ctx context.Context, in PaymentInit) (string, error) {
	var out dataEnvelope[struct {
		ID string `json:"id"`
	}]
	if err := c.do(ctx, "initialize payment", http.MethodPost, "/payment/initialize", nil, in, &out); err != nil {
		return "", err
	}
	if out.Data.ID == "" {
		return "", &RemoteError{Op: "initialize payment", Message: "no transaction id in response"}
	}
	return out.Data.ID, nil
}

// VerifyResult is the outcome of a successful payment verification.
type VerifyResult struct {
	Entitlement model.Entitlement
	Message     string
}

// VerifyPayment confirms a payment reference against the transaction id from
// a prior successful initialization.
func (c *Client) VerifyPayment(ctx context.Context, reference, tranID string) (VerifyResult, error) {
	body := map[string]string{"reference": reference, "tran_id": tranID}
	var out struct {
		Data    model.Entitlement `json:"data"`
		Message string            `json:"message"`
	}
	if err := c.do(ctx, "verify payment", http.MethodPost, "/payment/verify", nil, body, &out); err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Entitlement: out.Data, Message: out.Message}, nil
}

// do runs one request and decodes the response into out (when non-nil).
// Non-2xx responses with an {"errors": ...} body become FieldErrors so forms
// can show them next to the offending field; everything else becomes a
// RemoteError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &RemoteError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return &RemoteError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed",
			slog.String("op", op),
			slog.String("url", u),
			slog.String("error", err.Error()),
		)
		return &RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("non-2xx response",
			slog.String("op", op),
			slog.String("url", u),
			slog.Int("status", resp.StatusCode),
		)
		var eb errorBody
		if json.Unmarshal(payload, &eb) == nil {
			if len(eb.Errors) > 0 {
				return FieldErrors(eb.Errors)
			}
			if eb.Message != "" {
				return &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: eb.Message}
			}
		}
		return &RemoteError{Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
