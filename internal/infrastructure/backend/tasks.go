package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// TaskAPI implements ports.TaskAPI over /tasks.
type TaskAPI struct {
	c *Client
}

func NewTaskAPI(c *Client) *TaskAPI {
	return &TaskAPI{c: c}
}

var _ ports.TaskAPI = (*TaskAPI)(nil)

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Done        bool   `json:"done"`
	PriorityID  int64  `json:"priority_id"`
	ProjectID   int64  `json:"project_id"`
	UserID      int64  `json:"user_id"`
}

func newTaskRequest(in ports.TaskInput) taskRequest {
	return taskRequest{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Done:        in.Done,
		PriorityID:  in.PriorityID,
		ProjectID:   in.ProjectID,
		UserID:      in.UserID,
	}
}

func (a *TaskAPI) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := a.c.Do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (a *TaskAPI) Create(ctx context.Context, in ports.TaskInput) (*domain.Task, error) {
	var t domain.Task
	if err := a.c.Do(ctx, http.MethodPost, "/tasks", newTaskRequest(in), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *TaskAPI) Update(ctx context.Context, id int64, in ports.TaskInput) error {
	return a.c.Do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), newTaskRequest(in), nil)
}

func (a *TaskAPI) Delete(ctx context.Context, id int64) error {
	return a.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}

type doneRequest struct {
	Done bool `json:"done"`
}

// MarkDone sets only the completion flag.
func (a *TaskAPI) MarkDone(ctx context.Context, id int64, done bool) error {
	return a.c.Do(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d/done", id), doneRequest{Done: done}, nil)
}
