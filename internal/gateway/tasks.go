package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Task is the gateway-local task model decoded off the wire.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskInput is the mutable task subset sent on create and full update.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

// ListTasks fetches every task visible to the current user.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &raw); err != nil {
		return nil, mapTaskErr(err)
	}
	return decodeTaskList(raw)
}

// GetTask fetches one task by id.
func (c *Client) GetTask(ctx context.Context, id int64) (Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &raw); err != nil {
		return Task{}, mapTaskErr(err)
	}
	return decodeTask(raw)
}

// CreateTask creates a task and returns the backend's record of it.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/tasks", input, &raw); err != nil {
		return Task{}, mapTaskErr(err)
	}
	return decodeTask(raw)
}

// UpdateTask replaces a task's mutable fields.
func (c *Client) UpdateTask(ctx context.Context, id int64, input TaskInput) (Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, taskPath(id), input, &raw); err != nil {
		return Task{}, mapTaskErr(err)
	}
	return decodeTask(raw)
}

// UpdateTaskStatus sends a status-only update, the shape the dashboard's
// quick status toggle uses.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int64, status string) (Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, taskPath(id), taskStatusRequest{Status: status}, &raw); err != nil {
		return Task{}, mapTaskErr(err)
	}
	return decodeTask(raw)
}

// DeleteTask removes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil); err != nil {
		return mapTaskErr(err)
	}
	return nil
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

func mapTaskErr(err error) error {
	he, ok := asHTTPError(err)
	if !ok {
		return err
	}
	switch {
	case he.Status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, nonEmpty(he.Message, "token rejected"))
	case he.Status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, nonEmpty(he.Message, "task not found"))
	case len(he.Fields) > 0:
		return &ValidationError{Fields: he.Fields}
	default:
		return fmt.Errorf("%w: %v", ErrTransport, he)
	}
}

// decodeTaskList accepts the bare-array shape and the common wrapped shapes
// ({"tasks": [...]} or {"data": [...]}) interchangeably.
func decodeTaskList(raw json.RawMessage) ([]Task, error) {
	var list []Task
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Tasks []Task `json:"tasks"`
		Data  []Task `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: decode task list", ErrTransport)
	}
	if wrapped.Tasks != nil {
		return wrapped.Tasks, nil
	}
	return wrapped.Data, nil
}

// decodeTask accepts the bare-object shape and {"task": {...}} / {"data": {...}}.
func decodeTask(raw json.RawMessage) (Task, error) {
	if len(raw) == 0 {
		return Task{}, nil
	}

	var t Task
	if err := json.Unmarshal(raw, &t); err == nil && t.ID != 0 {
		return t, nil
	}

	var wrapped struct {
		Task *Task `json:"task"`
		Data *Task `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return Task{}, fmt.Errorf("%w: decode task", ErrTransport)
	}
	if wrapped.Task != nil {
		return *wrapped.Task, nil
	}
	if wrapped.Data != nil {
		return *wrapped.Data, nil
	}
	return Task{}, fmt.Errorf("%w: decode task", ErrTransport)
}
