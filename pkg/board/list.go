package board

import (
	"context"
	"slices"
	"sync"
	"time"

	"todoboard/pkg/task"
)

// ListView drives the task list screen: the collection, multi-delete mode
// and the current selection.
type ListView struct {
	store *Store
	now   func() time.Time

	mu          sync.Mutex
	multiDelete bool
	selected    []task.ID
}

type ListOption func(*ListView)

// WithClock overrides the clock used by IsOverdue.
func WithClock(now func() time.Time) ListOption {
	return func(v *ListView) { v.now = now }
}

func NewListView(store *Store, opts ...ListOption) *ListView {
	v := &ListView{store: store, now: time.Now}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *ListView) Tasks() []task.Task { return v.store.Tasks() }

// Refresh reloads the collection. Failures are reported through Err.
func (v *ListView) Refresh(ctx context.Context) []task.Task {
	return v.store.List(ctx)
}

// Err returns the most recent list failure, if any.
func (v *ListView) Err() error { return v.store.Err(OpList) }

func (v *ListView) EnterMultiDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.multiDelete = true
	v.selected = nil
}

func (v *ListView) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.multiDelete = false
	v.selected = nil
}

func (v *ListView) MultiDelete() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.multiDelete
}

// Toggle adds id to the selection, or removes it if already selected.
// Outside multi-delete mode it does nothing.
func (v *ListView) Toggle(id task.ID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.multiDelete {
		return
	}
	if i := slices.Index(v.selected, id); i >= 0 {
		v.selected = slices.Delete(v.selected, i, i+1)
		return
	}
	v.selected = append(v.selected, id)
}

func (v *ListView) IsSelected(id task.ID) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Contains(v.selected, id)
}

// Selected returns the selected ids in the order they were picked.
func (v *ListView) Selected() []task.ID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.selected)
}

// DeleteSelected deletes the selection in one call and leaves multi-delete
// mode on success. An empty selection returns ErrEmptySelection.
func (v *ListView) DeleteSelected(ctx context.Context) error {
	ids := v.Selected()
	if len(ids) == 0 {
		return ErrEmptySelection
	}
	if err := v.store.Delete(ctx, ids); err != nil {
		return err
	}
	v.Cancel()
	return nil
}

// MarkComplete marks id completed.
func (v *ListView) MarkComplete(ctx context.Context, id task.ID) error {
	return v.store.UpdateStatus(ctx, id)
}

// IsOverdue is evaluated against the view's clock on every call.
func (v *ListView) IsOverdue(t task.Task) bool {
	return t.Overdue(v.now())
}
