// Package client talks to the taskboard REST API and implements the
// sequencer's Store over it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/sequencer"
)

const idempotencyKeyHeader = "Idempotency-Key"

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("taskboard: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("taskboard: %d %s", e.Status, e.Message)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out loginResponse
	status, body, err := c.do(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, nil)
	if err != nil {
		return "", err
	}
	if status/100 != 2 {
		return "", apiError(status, body)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	c.token = out.Token
	return out.Token, nil
}

type taskResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Sequence int    `json:"sequence"`
}

// ListProjectTasks returns a project's tasks in sequence order.
func (c *Client) ListProjectTasks(ctx context.Context, projectID int64) ([]sequencer.Row, error) {
	path := "/projects/" + strconv.FormatInt(projectID, 10) + "/tasks"
	status, body, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, apiError(status, body)
	}

	var tasks []taskResponse
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	rows := make([]sequencer.Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, sequencer.Row{ID: t.ID, Sequence: t.Sequence, Title: t.Title})
	}
	return rows, nil
}

type sequenceRequest struct {
	ProjectID int64 `json:"project_id"`
	Sequence  int   `json:"sequence"`
}

type sequenceRow struct {
	TaskID   int64  `json:"task_id"`
	Sequence int    `json:"sequence"`
	Title    string `json:"title"`
}

type sequenceResponse struct {
	Success           bool           `json:"success"`
	UpdatedCollection *[]sequenceRow `json:"updated_collection"`
	Error             string         `json:"error"`
}

// UpdateSequence implements sequencer.Store. Every call carries a fresh idempotency key.
func (c *Client) UpdateSequence(ctx context.Context, taskID, collectionID int64, newSequence int) (sequencer.Result, error) {
	key := uuid.NewString()
	path := "/tasks/" + strconv.FormatInt(taskID, 10) + "/sequence"
	status, body, err := c.do(ctx, http.MethodPut, path,
		sequenceRequest{ProjectID: collectionID, Sequence: newSequence},
		map[string]string{idempotencyKeyHeader: key},
	)
	if err != nil {
		return sequencer.Result{}, err
	}

	var resp sequenceResponse
	if jsonErr := json.Unmarshal(body, &resp); jsonErr != nil {
		if status/100 != 2 {
			return sequencer.Result{Success: false, Message: apiError(status, body).Error()}, nil
		}
		return sequencer.Result{}, fmt.Errorf("decode sequence response: %w", jsonErr)
	}

	if status/100 != 2 || !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = http.StatusText(status)
		}
		c.log.Debug("sequence update refused",
			zap.Int64("task_id", taskID), zap.Int("status", status), zap.String("error", msg))
		return sequencer.Result{Success: false, Message: msg}, nil
	}

	result := sequencer.Result{Success: true}
	if resp.UpdatedCollection != nil {
		result.UpdatedCollection = make([]sequencer.Row, 0, len(*resp.UpdatedCollection))
		for _, r := range *resp.UpdatedCollection {
			result.UpdatedCollection = append(result.UpdatedCollection,
				sequencer.Row{ID: r.TaskID, Sequence: r.Sequence, Title: r.Title})
		}
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in interface{}, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func apiError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	return &APIError{Status: status, Message: payload.Error}
}
