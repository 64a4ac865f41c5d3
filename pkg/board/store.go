// Package board owns the client-side task collection. Every mutation goes
// through a remote call first; only when that call succeeds is a pure
// transition applied to local state and announced on the change bus.
package board

import (
	"context"
	"errors"
	"slices"
	"sync"

	"todoboard/pkg/client"
	"todoboard/pkg/logger"
	"todoboard/pkg/task"
)

// ErrEmptySelection is returned when a delete is requested with no ids.
var ErrEmptySelection = errors.New("no tasks selected")

// Op names one store operation. Each has its own error indicator.
type Op string

const (
	OpList   Op = "list"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpStatus Op = "status"
	OpDelete Op = "delete"
)

// Remote is the backend the store talks to. *client.Client implements it.
type Remote interface {
	List(ctx context.Context) ([]task.Task, error)
	Get(ctx context.Context, id task.ID) (task.Task, error)
	Create(ctx context.Context, d task.Draft) (task.Task, error)
	Update(ctx context.Context, id task.ID, d task.Draft) (task.Task, error)
	AttachImages(ctx context.Context, id task.ID, uploads []client.Upload) ([]string, error)
	MarkCompleted(ctx context.Context, id task.ID) error
	Delete(ctx context.Context, ids []task.ID) error
}

var _ Remote = (*client.Client)(nil)

// Store is the state container. It is safe for concurrent use; when two
// mutations race, the one whose remote call completes last wins.
type Store struct {
	remote Remote
	log    logger.Logger
	bus    *bus

	mu    sync.RWMutex
	tasks []task.Task
	errs  map[Op]error
}

func NewStore(remote Remote, log logger.Logger) *Store {
	if log == nil {
		log = logger.Default()
	}
	return &Store{
		remote: remote,
		log:    log,
		bus:    newBus(),
		tasks:  []task.Task{},
		errs:   make(map[Op]error),
	}
}

// Tasks returns a snapshot of the local collection.
func (s *Store) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Find looks a task up in the local collection.
func (s *Store) Find(id task.ID) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// Err reports the last failure of op, or nil once op has succeeded again.
func (s *Store) Err(op Op) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errs[op]
}

// List reloads the collection from the backend. On failure it returns an
// empty slice, records the error under OpList and keeps local state.
func (s *Store) List(ctx context.Context) []task.Task {
	fetched, err := s.remote.List(ctx)
	if err != nil {
		s.fail(OpList, err)
		return []task.Task{}
	}
	next := []task.Task{}
	for _, t := range fetched {
		next = withTask(next, t)
	}
	s.apply(OpList, nil, func([]task.Task) []task.Task { return next })
	return slices.Clone(next)
}

// Get fetches one task without touching the local collection.
func (s *Store) Get(ctx context.Context, id task.ID) (task.Task, error) {
	t, err := s.remote.Get(ctx, id)
	if err != nil {
		s.fail(OpGet, err)
		return task.Task{}, err
	}
	s.clear(OpGet)
	return t, nil
}

// Create validates d, creates the task remotely, attaches uploads to it and
// only then appends the result to local state.
func (s *Store) Create(ctx context.Context, d task.Draft, uploads []client.Upload) (task.Task, error) {
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}
	created, err := s.remote.Create(ctx, d)
	if err != nil {
		s.fail(OpCreate, err)
		return task.Task{}, err
	}
	if created, err = s.attach(ctx, created, uploads); err != nil {
		s.fail(OpCreate, err)
		return task.Task{}, err
	}
	s.apply(OpCreate, []task.ID{created.ID}, func(ts []task.Task) []task.Task {
		return withTask(ts, created)
	})
	return created, nil
}

// Update submits edited fields for id, attaches uploads, and replaces the
// matching local task with the merged record.
func (s *Store) Update(ctx context.Context, id task.ID, d task.Draft, uploads []client.Upload) (task.Task, error) {
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}
	updated, err := s.remote.Update(ctx, id, d)
	if err != nil {
		s.fail(OpUpdate, err)
		return task.Task{}, err
	}
	if updated.ID == "" {
		updated.ID = id
	}
	if updated, err = s.attach(ctx, updated, uploads); err != nil {
		s.fail(OpUpdate, err)
		return task.Task{}, err
	}
	s.apply(OpUpdate, []task.ID{updated.ID}, func(ts []task.Task) []task.Task {
		return withReplaced(ts, updated)
	})
	return updated, nil
}

// UpdateStatus marks id completed. No other field is touched.
func (s *Store) UpdateStatus(ctx context.Context, id task.ID) error {
	if err := s.remote.MarkCompleted(ctx, id); err != nil {
		s.fail(OpStatus, err)
		return err
	}
	s.apply(OpStatus, []task.ID{id}, func(ts []task.Task) []task.Task {
		return withCompleted(ts, id)
	})
	return nil
}

// Delete removes ids in a single remote call. Local state changes only if
// the call as a whole succeeds.
func (s *Store) Delete(ctx context.Context, ids []task.ID) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	if err := s.remote.Delete(ctx, ids); err != nil {
		s.fail(OpDelete, err)
		return err
	}
	s.apply(OpDelete, ids, func(ts []task.Task) []task.Task {
		return without(ts, ids)
	})
	return nil
}

func (s *Store) attach(ctx context.Context, t task.Task, uploads []client.Upload) (task.Task, error) {
	if len(uploads) == 0 {
		return t, nil
	}
	urls, err := s.remote.AttachImages(ctx, t.ID, uploads)
	if err != nil {
		return task.Task{}, err
	}
	t.Images = mergeImages(t.Images, urls)
	return t, nil
}

func (s *Store) apply(op Op, ids []task.ID, transition func([]task.Task) []task.Task) {
	s.mu.Lock()
	s.tasks = transition(s.tasks)
	delete(s.errs, op)
	s.mu.Unlock()
	s.bus.publish(Change{Op: op, IDs: ids})
}

func (s *Store) fail(op Op, err error) {
	s.log.Error("task operation failed", "op", string(op), "error", err)
	s.mu.Lock()
	s.errs[op] = err
	s.mu.Unlock()
	s.bus.publish(Change{Op: op})
}

func (s *Store) clear(op Op) {
	s.mu.Lock()
	delete(s.errs, op)
	s.mu.Unlock()
}
