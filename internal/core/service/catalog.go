package service

import (
	"context"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/forms"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// CatalogMessages are the toasts of one catalog.
type CatalogMessages struct {
	Created string
	Renamed string
	Deleted string
	Failed  string
}

var (
	ProjectMessages = CatalogMessages{
		Created: "Projekt erstellt",
		Renamed: "Projekt aktualisiert",
		Deleted: "Projekt gelöscht",
		Failed:  "Fehler",
	}
	PriorityMessages = CatalogMessages{
		Created: "Priorität erstellt",
		Renamed: "Priorität aktualisiert",
		Deleted: "Priorität gelöscht",
		Failed:  "Fehler",
	}
)

// Catalog manages a list of named resources (projects or priorities).
type Catalog[T ports.NamedResource] struct {
	api      ports.CatalogAPI[T]
	items    *Query[[]T]
	validate *forms.Validator
	notify   Notifier
	msgs     CatalogMessages
}

func NewCatalog[T ports.NamedResource](
	key string,
	api ports.CatalogAPI[T],
	validate *forms.Validator,
	notify Notifier,
	msgs CatalogMessages,
) *Catalog[T] {
	return &Catalog[T]{
		api:      api,
		items:    NewQuery(key, api.List, cloneSlice[T]),
		validate: validate,
		notify:   notify,
		msgs:     msgs,
	}
}

// NewProjects returns the project catalog.
func NewProjects(api ports.CatalogAPI[domain.Project], v *forms.Validator, n Notifier) *Catalog[domain.Project] {
	return NewCatalog("projects", api, v, n, ProjectMessages)
}

// NewPriorities returns the priority catalog.
func NewPriorities(api ports.CatalogAPI[domain.Priority], v *forms.Validator, n Notifier) *Catalog[domain.Priority] {
	return NewCatalog("priorities", api, v, n, PriorityMessages)
}

func (c *Catalog[T]) Query() *Query[[]T] { return c.items }

func (c *Catalog[T]) List(ctx context.Context) ([]T, error) {
	return c.items.Get(ctx)
}

func (c *Catalog[T]) Create(ctx context.Context, form forms.NameForm) (*T, error) {
	if err := c.validate.Validate(form); err != nil {
		return nil, err
	}
	item, err := c.api.Create(ctx, form.Name)
	return item, c.settle(err, c.msgs.Created)
}

func (c *Catalog[T]) Rename(ctx context.Context, id int64, form forms.NameForm) error {
	if err := c.validate.Validate(form); err != nil {
		return err
	}
	return c.settle(c.api.Rename(ctx, id, form.Name), c.msgs.Renamed)
}

func (c *Catalog[T]) Delete(ctx context.Context, id int64) error {
	return c.settle(c.api.Delete(ctx, id), c.msgs.Deleted)
}

func (c *Catalog[T]) settle(err error, success string) error {
	if err != nil {
		c.notify.Error(c.msgs.Failed)
		return err
	}
	c.items.Invalidate()
	c.notify.Success(success)
	return nil
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}
