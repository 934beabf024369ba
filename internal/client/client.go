// Package client wraps the three task endpoints. Each method is a single
// outbound call: no retry, no timeout beyond the transport's, no reshaping of
// what the API returns.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/model"
)

type Client interface {
	// GetTasks fetches the incomplete-task window, newest first.
	GetTasks(ctx context.Context) ([]model.Task, error)

	// CreateTask registers a new task and returns it as stored.
	CreateTask(ctx context.Context, input model.CreateTaskInput) (model.Task, error)

	// CompleteTask marks a task done. The returned task is whatever snapshot
	// the API put in its envelope.
	CompleteTask(ctx context.Context, id int64) (model.Task, error)
}

// APIError is a non-2xx response decoded into something callers can match on.
type APIError struct {
	StatusCode  int
	Message     string
	FieldErrors map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) Client {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
}

func (c *client) GetTasks(ctx context.Context) ([]model.Task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var tasks []model.Task
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	return tasks, nil
}

func (c *client) CreateTask(ctx context.Context, input model.CreateTaskInput) (model.Task, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return model.Task{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tasks", bytes.NewReader(payload))
	if err != nil {
		return model.Task{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Task{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return model.Task{}, decodeError(resp)
	}

	var created model.Task
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return model.Task{}, fmt.Errorf("decode created task: %w", err)
	}
	return created, nil
}

func (c *client) CompleteTask(ctx context.Context, id int64) (model.Task, error) {
	url := fmt.Sprintf("%s/tasks/%d/complete", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return model.Task{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Task{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Task{}, decodeError(resp)
	}

	var envelope struct {
		Success bool       `json:"success"`
		Message string     `json:"message"`
		Data    model.Task `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return model.Task{}, fmt.Errorf("decode completion envelope: %w", err)
	}
	return envelope.Data, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}

	var parsed struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Message = parsed.Message
		apiErr.FieldErrors = parsed.Errors
	}
	return apiErr
}
