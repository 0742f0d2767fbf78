package goTasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goTasks/internal/gateway"
)

// Tasks fetches every task visible to the current user.
func (c *Client) Tasks(ctx context.Context) ([]Task, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	raw, err := c.gateway.ListTasks(ctx)
	if err != nil {
		return nil, c.taskErr(ctx, err)
	}
	c.metricInc(MetricTaskList)

	tasks := make([]Task, 0, len(raw))
	for _, t := range raw {
		tasks = append(tasks, convertTask(t))
	}
	return tasks, nil
}

// Task fetches one task by id.
func (c *Client) Task(ctx context.Context, id int64) (Task, error) {
	if err := c.requireAuth(); err != nil {
		return Task{}, err
	}

	raw, err := c.gateway.GetTask(ctx, id)
	if err != nil {
		return Task{}, c.taskErr(ctx, err)
	}
	return convertTask(raw), nil
}

// CreateTask creates a task and returns the backend's record of it. An empty
// input status lets the backend default to pending.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (Task, error) {
	if err := c.requireAuth(); err != nil {
		return Task{}, err
	}
	if input.Status != "" && !input.Status.Valid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidTaskStatus, input.Status)
	}

	raw, err := c.gateway.CreateTask(ctx, convertInput(input))
	if err != nil {
		return Task{}, c.taskErr(ctx, err)
	}
	c.metricInc(MetricTaskCreate)
	return convertTask(raw), nil
}

// UpdateTask replaces a task's mutable fields.
func (c *Client) UpdateTask(ctx context.Context, id int64, input TaskInput) (Task, error) {
	if err := c.requireAuth(); err != nil {
		return Task{}, err
	}
	if input.Status != "" && !input.Status.Valid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidTaskStatus, input.Status)
	}

	raw, err := c.gateway.UpdateTask(ctx, id, convertInput(input))
	if err != nil {
		return Task{}, c.taskErr(ctx, err)
	}
	c.metricInc(MetricTaskUpdate)
	return convertTask(raw), nil
}

// UpdateTaskStatus changes only a task's workflow status, the dashboard's
// quick-toggle operation.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int64, status TaskStatus) (Task, error) {
	if err := c.requireAuth(); err != nil {
		return Task{}, err
	}
	if !status.Valid() {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidTaskStatus, status)
	}

	raw, err := c.gateway.UpdateTaskStatus(ctx, id, string(status))
	if err != nil {
		return Task{}, c.taskErr(ctx, err)
	}
	c.metricInc(MetricTaskUpdate)
	return convertTask(raw), nil
}

// DeleteTask removes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	if err := c.gateway.DeleteTask(ctx, id); err != nil {
		return c.taskErr(ctx, err)
	}
	c.metricInc(MetricTaskDelete)
	return nil
}

// requireAuth fails fast instead of sending a request the backend is certain
// to reject.
func (c *Client) requireAuth() error {
	if c == nil || c.closed.Load() {
		return ErrClientClosed
	}
	if c.Status() != StatusAuthenticated {
		return ErrNotAuthenticated
	}
	return nil
}

// taskErr maps a gateway failure and applies the implicit-teardown rule: an
// unauthorized verdict on any privileged call means the token is dead.
func (c *Client) taskErr(ctx context.Context, err error) error {
	c.metricInc(MetricTaskFailure)
	if errors.Is(err, gateway.ErrUnauthorized) {
		c.implicitTeardown(ctx, err)
	}
	return mapGatewayErr(err)
}

func convertTask(t gateway.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      TaskStatus(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func convertInput(in TaskInput) gateway.TaskInput {
	return gateway.TaskInput{
		Title:       in.Title,
		Description: in.Description,
		Status:      string(in.Status),
	}
}
