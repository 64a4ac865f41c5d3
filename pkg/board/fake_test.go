package board

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"todoboard/pkg/client"
	"todoboard/pkg/logger"
	"todoboard/pkg/task"
)

var errUnavailable = errors.New("backend unavailable")

// fakeRemote is an in-memory backend that records every call.
type fakeRemote struct {
	mu     sync.Mutex
	tasks  []task.Task
	nextID int
	calls  []string
	fail   map[string]error
	urls   []string
}

func newFakeRemote(tasks ...task.Task) *fakeRemote {
	return &fakeRemote{tasks: tasks, nextID: 100, fail: map[string]error{}}
}

func (f *fakeRemote) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.fail[call]
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) List(ctx context.Context) ([]task.Task, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return append([]task.Task(nil), f.tasks...), nil
}

func (f *fakeRemote) Get(ctx context.Context, id task.ID) (task.Task, error) {
	if err := f.record("get"); err != nil {
		return task.Task{}, err
	}
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

func (f *fakeRemote) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	if err := f.record("create"); err != nil {
		return task.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := task.Task{
		ID:          task.ID(strconv.Itoa(f.nextID)),
		Title:       d.Title,
		Description: d.Description,
		Bullets:     d.Bullets,
		Images:      []string{},
		Deadline:    d.Deadline,
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeRemote) Update(ctx context.Context, id task.ID, d task.Draft) (task.Task, error) {
	if err := f.record("update"); err != nil {
		return task.Task{}, err
	}
	for _, t := range f.tasks {
		if t.ID == id {
			t.Title, t.Description, t.Bullets, t.Deadline = d.Title, d.Description, d.Bullets, d.Deadline
			return t, nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

func (f *fakeRemote) AttachImages(ctx context.Context, id task.ID, uploads []client.Upload) ([]string, error) {
	if err := f.record("attach"); err != nil {
		return nil, err
	}
	return f.urls, nil
}

func (f *fakeRemote) MarkCompleted(ctx context.Context, id task.ID) error {
	return f.record("status")
}

func (f *fakeRemote) Delete(ctx context.Context, ids []task.ID) error {
	return f.record("delete")
}

func seeded(remote *fakeRemote) *Store {
	s := NewStore(remote, logger.Discard())
	s.List(context.Background())
	return s
}

func sample() []task.Task {
	mk := func(id, title string) task.Task {
		return task.Task{ID: task.ID(id), Title: title, Bullets: []string{}, Images: []string{}}
	}
	return []task.Task{mk("1", "one"), mk("3", "three"), mk("4", "four"), mk("5", "five"), mk("7", "seven")}
}
