package service

import "sync"

// ForcedLogout is the process-wide "credential rejected" signal. The gateway
// raises it on a 401; the session store listens and clears itself. It
// carries no payload and never blocks the raiser on listener work beyond
// the listeners' own execution.
type ForcedLogout struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

func NewForcedLogout() *ForcedLogout {
	return &ForcedLogout{listeners: make(map[int]func())}
}

// Listen registers fn and returns a function that deregisters it. The
// returned cancel func is safe to call more than once.
func (f *ForcedLogout) Listen(fn func()) (cancel func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.listeners, id)
			f.mu.Unlock()
		})
	}
}

// Raise notifies every registered listener.
func (f *ForcedLogout) Raise() {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Listeners returns the number of registered listeners.
func (f *ForcedLogout) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}
