package service

import (
	"sync"
	"time"
)

// Notifier surfaces transient messages (toasts) to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// ToastKind tells success toasts from error toasts.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Toast is one queued notification.
type Toast struct {
	Kind    ToastKind
	Message string
	At      time.Time
}

// Toasts is a Notifier that queues messages until a view drains them.
type Toasts struct {
	mu    sync.Mutex
	items []Toast
	now   func() time.Time
}

func NewToasts() *Toasts {
	return &Toasts{now: time.Now}
}

func (t *Toasts) Success(msg string) { t.push(ToastSuccess, msg) }
func (t *Toasts) Error(msg string)   { t.push(ToastError, msg) }

func (t *Toasts) push(kind ToastKind, msg string) {
	t.mu.Lock()
	t.items = append(t.items, Toast{Kind: kind, Message: msg, At: t.now()})
	t.mu.Unlock()
}

// Drain returns and forgets every queued toast, oldest first.
func (t *Toasts) Drain() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.items
	t.items = nil
	return out
}
