package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/forms"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// DefaultRefreshInterval is how often open task views poll the backend.
const DefaultRefreshInterval = 30 * time.Second

const (
	msgToggleFailed = "Fehler beim Aktualisieren der Aufgabe"
	msgTaskCreated  = "Aufgabe erstellt"
	msgCreateFailed = "Fehler beim Erstellen"
	msgTaskUpdated  = "Aufgabe aktualisiert"
	msgUpdateFailed = "Fehler beim Speichern"
	msgTaskDeleted  = "Aufgabe gelöscht"
	msgDeleteFailed = "Fehler beim Löschen"
)

// Serializer runs fn so that calls sharing a key never overlap and keep
// their submission order.
type Serializer interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// TaskBoard owns the cached task collection and every write against it.
type TaskBoard struct {
	api      ports.TaskAPI
	tasks    *Query[[]domain.Task]
	validate *forms.Validator
	notify   Notifier
	log      zerolog.Logger
	serial   Serializer
}

func NewTaskBoard(api ports.TaskAPI, validate *forms.Validator, notify Notifier, log zerolog.Logger) *TaskBoard {
	return &TaskBoard{
		api:      api,
		tasks:    NewQuery("tasks", api.List, cloneSlice[domain.Task]),
		validate: validate,
		notify:   notify,
		log:      log,
	}
}

// SerializeWrites routes per-task backend writes through s, so a second
// toggle of a task is only sent once the first one has been answered. The
// cached value still changes at once.
func (b *TaskBoard) SerializeWrites(s Serializer) {
	b.serial = s
}

func (b *TaskBoard) write(ctx context.Context, id int64, fn func(ctx context.Context) error) error {
	if b.serial == nil {
		return fn(ctx)
	}
	return b.serial.Do(ctx, "task:"+strconv.FormatInt(id, 10), fn)
}

// Query exposes the task cache to views.
func (b *TaskBoard) Query() *Query[[]domain.Task] { return b.tasks }

// Tasks returns the cached collection, fetching when stale.
func (b *TaskBoard) Tasks(ctx context.Context) ([]domain.Task, error) {
	return b.tasks.Get(ctx)
}

// Task returns one task from the collection.
func (b *TaskBoard) Task(ctx context.Context, id int64) (*domain.Task, error) {
	tasks, err := b.tasks.Get(ctx)
	if err != nil {
		return nil, err
	}
	t, ok := FindTask(tasks, id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

// ToggleDone marks a task done or open. The cached value changes before
// the request is sent; on failure it is rolled back and a toast is shown.
func (b *TaskBoard) ToggleDone(ctx context.Context, id int64, done bool) error {
	err := Optimistic(ctx, b.tasks,
		func(tasks []domain.Task) []domain.Task {
			for i := range tasks {
				if tasks[i].ID == id {
					tasks[i].Done = done
				}
			}
			return tasks
		},
		func(ctx context.Context) error {
			return b.write(ctx, id, func(ctx context.Context) error { return b.api.MarkDone(ctx, id, done) })
		},
		b.notify, msgToggleFailed,
	)
	if err != nil {
		b.log.Warn().Err(err).Int64("task_id", id).Bool("done", done).Msg("toggle rolled back")
	}
	return err
}

// Create validates form and creates an open task.
func (b *TaskBoard) Create(ctx context.Context, form forms.NewTaskForm) (*domain.Task, error) {
	if err := b.validate.Validate(form); err != nil {
		return nil, err
	}
	task, err := b.api.Create(ctx, ports.TaskInput{
		Title:       form.Title,
		Description: form.Description,
		DueDate:     form.DueDate,
		UserID:      form.UserID,
		PriorityID:  form.PriorityID,
		ProjectID:   form.ProjectID,
	})
	if err != nil {
		b.notify.Error(msgCreateFailed)
		return nil, err
	}
	b.tasks.Invalidate()
	b.notify.Success(msgTaskCreated)
	return task, nil
}

// Update validates form and replaces the task's writable fields.
func (b *TaskBoard) Update(ctx context.Context, id int64, form forms.EditTaskForm) error {
	if err := b.validate.Validate(form); err != nil {
		return err
	}
	in := ports.TaskInput{
		Title:       form.Title,
		Description: form.Description,
		DueDate:     form.DueDate,
		Done:        form.Done,
		UserID:      form.UserID,
		PriorityID:  form.PriorityID,
		ProjectID:   form.ProjectID,
	}
	if err := b.write(ctx, id, func(ctx context.Context) error { return b.api.Update(ctx, id, in) }); err != nil {
		b.notify.Error(msgUpdateFailed)
		return err
	}
	b.tasks.Invalidate()
	b.notify.Success(msgTaskUpdated)
	return nil
}

// Delete removes a task.
func (b *TaskBoard) Delete(ctx context.Context, id int64) error {
	if err := b.write(ctx, id, func(ctx context.Context) error { return b.api.Delete(ctx, id) }); err != nil {
		b.notify.Error(msgDeleteFailed)
		return err
	}
	b.tasks.Invalidate()
	b.notify.Success(msgTaskDeleted)
	return nil
}
