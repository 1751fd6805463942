package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrFetchSuperseded is returned by Query.Get when the fetch it waited on
// was cancelled or invalidated and there is no cached value to fall back to.
var ErrFetchSuperseded = errors.New("fetch superseded")

// Query caches the result of one backend read, such as the task list.
// Reads are served from cache until Invalidate marks the entry stale;
// concurrent reads of a stale entry share one fetch.
type Query[T any] struct {
	key   string
	fetch func(ctx context.Context) (T, error)
	clone func(T) T

	mu        sync.Mutex
	value     T
	has       bool
	stale     bool
	gen       uint64
	inflight  map[uint64]context.CancelFunc
	observers map[int]func()
	nextObs   int

	group singleflight.Group
}

// NewQuery returns an empty query. clone must return a copy of a value that
// shares no mutable state with it; nil means values are used as-is.
func NewQuery[T any](key string, fetch func(ctx context.Context) (T, error), clone func(T) T) *Query[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Query[T]{
		key:       key,
		fetch:     fetch,
		clone:     clone,
		inflight:  make(map[uint64]context.CancelFunc),
		observers: make(map[int]func()),
	}
}

// Key names the query.
func (q *Query[T]) Key() string { return q.key }

// Get returns the cached value, fetching first when the cache is empty or
// stale.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	q.mu.Lock()
	if q.has && !q.stale {
		v := q.clone(q.value)
		q.mu.Unlock()
		return v, nil
	}
	gen := q.gen
	q.mu.Unlock()

	ch := q.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		return q.load(ctx, gen)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return q.clone(res.Val.(T)), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Refetch marks the entry stale and reads it again.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	q.Invalidate()
	return q.Get(ctx)
}

func (q *Query[T]) load(ctx context.Context, gen uint64) (T, error) {
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	q.mu.Lock()
	q.inflight[gen] = cancel
	q.mu.Unlock()

	v, err := q.fetch(fetchCtx)

	q.mu.Lock()
	delete(q.inflight, gen)
	if gen != q.gen {
		// Suspended or invalidated while in flight: the result may predate
		// a local write, so it must not land in the cache.
		cur, has := q.value, q.has
		q.mu.Unlock()
		if has {
			return cur, nil
		}
		var zero T
		return zero, ErrFetchSuperseded
	}
	if err != nil {
		q.mu.Unlock()
		var zero T
		return zero, err
	}
	q.value, q.has, q.stale = q.clone(v), true, false
	q.mu.Unlock()

	q.notify()
	return v, nil
}

// Peek returns the cached value without fetching.
func (q *Query[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.has {
		var zero T
		return zero, false
	}
	return q.clone(q.value), true
}

// Set replaces the cached value synchronously.
func (q *Query[T]) Set(v T) {
	q.mu.Lock()
	q.value, q.has, q.stale = q.clone(v), true, false
	q.mu.Unlock()
	q.notify()
}

// Stale reports whether the next Get will fetch.
func (q *Query[T]) Stale() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.has || q.stale
}

// Invalidate marks the value stale so the next Get re-fetches. Fetches
// already in flight finish but their results are discarded.
func (q *Query[T]) Invalidate() {
	q.mu.Lock()
	q.stale = true
	q.gen++
	q.mu.Unlock()
	q.notify()
}

// CancelFetches suspends in-flight refreshes: their contexts are cancelled
// and whatever they return is dropped.
func (q *Query[T]) CancelFetches() {
	q.mu.Lock()
	q.gen++
	for g, cancel := range q.inflight {
		cancel()
		delete(q.inflight, g)
	}
	q.mu.Unlock()
}

// Subscribe registers fn to run after every cache change.
func (q *Query[T]) Subscribe(fn func()) (unsubscribe func()) {
	q.mu.Lock()
	id := q.nextObs
	q.nextObs++
	q.observers[id] = fn
	q.mu.Unlock()
	return func() {
		q.mu.Lock()
		delete(q.observers, id)
		q.mu.Unlock()
	}
}

func (q *Query[T]) notify() {
	q.mu.Lock()
	fns := make([]func(), 0, len(q.observers))
	for _, fn := range q.observers {
		fns = append(fns, fn)
	}
	q.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Optimistic runs a mutation against q as one transaction:
//
//  1. suspend in-flight fetches of q
//  2. snapshot the cached value
//  3. apply the speculative change synchronously
//  4. commit to the backend
//  5. on failure restore the snapshot and report failureMsg through notify
//  6. invalidate q whatever the outcome
//
// When q holds no value yet nothing is applied or restored. The commit
// error is returned unchanged.
func Optimistic[T any](
	ctx context.Context,
	q *Query[T],
	apply func(T) T,
	commit func(ctx context.Context) error,
	notify Notifier,
	failureMsg string,
) error {
	q.CancelFetches()
	defer q.Invalidate()

	snapshot, had := q.Peek()
	if had {
		q.Set(apply(q.clone(snapshot)))
	}

	if err := commit(ctx); err != nil {
		if had {
			q.Set(snapshot)
		}
		if notify != nil {
			notify.Error(failureMsg)
		}
		return err
	}
	return nil
}
