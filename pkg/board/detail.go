package board

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"todoboard/pkg/client"
	"todoboard/pkg/task"
)

// State is the load state of a single-task view.
type State int

const (
	Loading State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// DetailView shows one task read-only.
type DetailView struct {
	store *Store

	mu    sync.Mutex
	state State
	task  task.Task
	err   error
}

func NewDetailView(store *Store) *DetailView {
	return &DetailView{store: store}
}

// Activate fetches id and settles into Loaded or Failed.
func (v *DetailView) Activate(ctx context.Context, id task.ID) {
	v.mu.Lock()
	v.state, v.task, v.err = Loading, task.Task{}, nil
	v.mu.Unlock()

	t, err := v.store.Get(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.state, v.err = Failed, err
		return
	}
	v.state, v.task = Loaded, t
}

func (v *DetailView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *DetailView) Task() task.Task {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.task
}

func (v *DetailView) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Form holds the editable fields shared by the add and edit screens.
// It is not safe for concurrent use.
type Form struct {
	Title       string
	Description string
	Bullets     []string
	Deadline    task.Deadline
	Uploads     []client.Upload
}

// AddBullet appends text unless it is blank.
func (f *Form) AddBullet(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	f.Bullets = append(f.Bullets, text)
}

// RemoveBullet drops the bullet at i. Out of range indices are ignored.
func (f *Form) RemoveBullet(i int) {
	if i < 0 || i >= len(f.Bullets) {
		return
	}
	f.Bullets = append(f.Bullets[:i:i], f.Bullets[i+1:]...)
}

func (f *Form) AttachImage(u client.Upload) {
	f.Uploads = append(f.Uploads, u)
}

// AttachFiles opens each path and attaches it under its base name. On
// success the caller closes the files with closeAll once the form has been
// submitted. On error nothing is attached and nothing is left open.
func (f *Form) AttachFiles(paths []string) (closeAll func(), err error) {
	var files []*os.File
	closeAll = func() {
		for _, fh := range files {
			fh.Close()
		}
	}
	uploads := make([]client.Upload, 0, len(paths))
	for _, p := range paths {
		fh, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("open image: %w", err)
		}
		files = append(files, fh)
		uploads = append(uploads, client.Upload{Filename: filepath.Base(p), Reader: fh})
	}
	f.Uploads = append(f.Uploads, uploads...)
	return closeAll, nil
}

func (f *Form) Draft() task.Draft {
	return task.Draft{
		Title:       f.Title,
		Description: f.Description,
		Bullets:     append([]string{}, f.Bullets...),
		Deadline:    f.Deadline,
	}
}

func (f *Form) Reset() { *f = Form{} }

// AddView creates new tasks.
type AddView struct {
	Form
	store *Store
}

func NewAddView(store *Store) *AddView {
	return &AddView{store: store}
}

// Submit creates the task and clears the form on success. An empty title
// returns task.ErrEmptyTitle without contacting the backend.
func (v *AddView) Submit(ctx context.Context) (task.Task, error) {
	t, err := v.store.Create(ctx, v.Draft(), v.Uploads)
	if err != nil {
		return task.Task{}, err
	}
	v.Reset()
	return t, nil
}

// EditView edits an existing task.
type EditView struct {
	Form
	store *Store
	id    task.ID
	state State
	err   error
}

func NewEditView(store *Store) *EditView {
	return &EditView{store: store}
}

// Activate fetches id and prefills the form.
func (v *EditView) Activate(ctx context.Context, id task.ID) error {
	v.id, v.state, v.err = id, Loading, nil
	v.Reset()
	t, err := v.store.Get(ctx, id)
	if err != nil {
		v.state, v.err = Failed, err
		return err
	}
	v.state = Loaded
	v.Title = t.Title
	v.Description = t.Description
	v.Bullets = append([]string{}, t.Bullets...)
	v.Deadline = t.Deadline
	return nil
}

func (v *EditView) ID() task.ID  { return v.id }
func (v *EditView) State() State { return v.state }
func (v *EditView) Err() error   { return v.err }

// Submit saves the edits. The form keeps its values so a failed save can be
// retried by the user.
func (v *EditView) Submit(ctx context.Context) (task.Task, error) {
	t, err := v.store.Update(ctx, v.id, v.Draft(), v.Uploads)
	if err != nil {
		return task.Task{}, err
	}
	v.Uploads = nil
	return t, nil
}
