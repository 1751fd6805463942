package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lf9/taskdesk/internal/core/domain"
	"github.com/lf9/taskdesk/internal/core/ports"
)

// CatalogAPI implements ports.CatalogAPI for one named-resource collection.
type CatalogAPI[T ports.NamedResource] struct {
	c    *Client
	path string
}

// NewProjectAPI returns the /projects adapter.
func NewProjectAPI(c *Client) *CatalogAPI[domain.Project] {
	return &CatalogAPI[domain.Project]{c: c, path: "/projects"}
}

// NewPriorityAPI returns the /priorities adapter.
func NewPriorityAPI(c *Client) *CatalogAPI[domain.Priority] {
	return &CatalogAPI[domain.Priority]{c: c, path: "/priorities"}
}

var (
	_ ports.CatalogAPI[domain.Project]  = (*CatalogAPI[domain.Project])(nil)
	_ ports.CatalogAPI[domain.Priority] = (*CatalogAPI[domain.Priority])(nil)
)

type nameRequest struct {
	Name string `json:"name"`
}

func (a *CatalogAPI[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := a.c.Do(ctx, http.MethodGet, a.path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (a *CatalogAPI[T]) Create(ctx context.Context, name string) (*T, error) {
	var item T
	if err := a.c.Do(ctx, http.MethodPost, a.path, nameRequest{Name: name}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (a *CatalogAPI[T]) Rename(ctx context.Context, id int64, name string) error {
	return a.c.Do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", a.path, id), nameRequest{Name: name}, nil)
}

func (a *CatalogAPI[T]) Delete(ctx context.Context, id int64) error {
	return a.c.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", a.path, id), nil, nil)
}
