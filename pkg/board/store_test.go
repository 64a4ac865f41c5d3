package board

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoboard/pkg/client"
	"todoboard/pkg/logger"
	"todoboard/pkg/task"
)

func ids(tasks []task.Task) []task.ID {
	out := make([]task.ID, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestListLoadsCollection(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := NewStore(remote, logger.Discard())

	got := s.List(context.Background())
	assert.Equal(t, []task.ID{"1", "3", "4", "5", "7"}, ids(got))
	assert.Equal(t, got, s.Tasks())
	assert.NoError(t, s.Err(OpList))
}

func TestListCollapsesDuplicateIDs(t *testing.T) {
	remote := newFakeRemote(task.Task{ID: "1", Title: "old"}, task.Task{ID: "2"}, task.Task{ID: "1", Title: "new"})
	s := NewStore(remote, logger.Discard())

	got := s.List(context.Background())
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Title)
}

func TestListFailureKeepsState(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)
	remote.fail["list"] = errUnavailable

	got := s.List(context.Background())
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.ErrorIs(t, s.Err(OpList), errUnavailable)
	assert.Len(t, s.Tasks(), 5)

	delete(remote.fail, "list")
	s.List(context.Background())
	assert.NoError(t, s.Err(OpList))
}

func TestListUnknownShapeKeepsState(t *testing.T) {
	var broken atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if broken.Load() {
			io.WriteString(w, `{"error":"boom"}`)
			return
		}
		io.WriteString(w, `[{"id":1,"title":"a"},{"id":2,"title":"b"}]`)
	}))
	defer srv.Close()

	s := NewStore(client.New(client.Config{BaseURL: srv.URL}, logger.Discard()), logger.Discard())
	require.Len(t, s.List(context.Background()), 2)

	broken.Store(true)
	assert.Empty(t, s.List(context.Background()))
	assert.ErrorIs(t, s.Err(OpList), client.ErrUnexpectedResponse)
	assert.Equal(t, []task.ID{"1", "2"}, ids(s.Tasks()))
}

func TestCreateRejectsBlankTitleWithoutRemoteCall(t *testing.T) {
	for _, title := range []string{"", "   ", "\t"} {
		remote := newFakeRemote(sample()...)
		s := seeded(remote)
		before := s.Tasks()

		_, err := s.Create(context.Background(), task.Draft{Title: title}, nil)
		assert.ErrorIs(t, err, task.ErrEmptyTitle)
		assert.Equal(t, []string{"list"}, remote.Calls())
		assert.Equal(t, before, s.Tasks())
	}
}

func TestCreateAppendsAfterSuccess(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)

	created, err := s.Create(context.Background(), task.Draft{Title: "  new  ", Bullets: []string{"a"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "new", created.Title)
	assert.Equal(t, []string{"list", "create"}, remote.Calls())

	local := s.Tasks()
	require.Len(t, local, 6)
	assert.Equal(t, created, local[5])
}

func TestCreateAcceptsLongTitle(t *testing.T) {
	remote := newFakeRemote()
	s := NewStore(remote, logger.Discard())

	title := strings.Repeat("x", 501)
	created, err := s.Create(context.Background(), task.Draft{Title: title}, nil)
	require.NoError(t, err)
	assert.Equal(t, title, created.Title)
	assert.Equal(t, []string{"create"}, remote.Calls())
}

func TestCreateMergesAttachedImages(t *testing.T) {
	remote := newFakeRemote()
	remote.urls = []string{"https://img/1.png", "https://img/2.png"}
	s := NewStore(remote, logger.Discard())

	created, err := s.Create(context.Background(), task.Draft{Title: "pics"}, []client.Upload{
		{Filename: "1.png", Reader: strings.NewReader("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "attach"}, remote.Calls())
	assert.Equal(t, remote.urls, created.Images)
	assert.Equal(t, remote.urls, s.Tasks()[0].Images)
}

func TestCreateAttachFailureLeavesStateUnchanged(t *testing.T) {
	remote := newFakeRemote()
	remote.fail["attach"] = errUnavailable
	s := NewStore(remote, logger.Discard())

	_, err := s.Create(context.Background(), task.Draft{Title: "pics"}, []client.Upload{
		{Filename: "1.png", Reader: strings.NewReader("x")},
	})
	assert.ErrorIs(t, err, errUnavailable)
	assert.Empty(t, s.Tasks())
	assert.ErrorIs(t, s.Err(OpCreate), errUnavailable)
}

func TestUpdateStatusTouchesOnlyMatchingTask(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)
	before := s.Tasks()

	require.NoError(t, s.UpdateStatus(context.Background(), "4"))
	after := s.Tasks()
	for i := range after {
		if after[i].ID == "4" {
			assert.True(t, after[i].Completed)
			after[i].Completed = false
		}
	}
	assert.Equal(t, before, after)
}

func TestUpdateStatusFailure(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)
	remote.fail["status"] = errUnavailable

	assert.Error(t, s.UpdateStatus(context.Background(), "4"))
	got, _ := s.Find("4")
	assert.False(t, got.Completed)
	assert.ErrorIs(t, s.Err(OpStatus), errUnavailable)
}

func TestDeleteRemovesExactlyGivenIDs(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)

	require.NoError(t, s.Delete(context.Background(), []task.ID{"3", "5"}))
	assert.Equal(t, []task.ID{"1", "4", "7"}, ids(s.Tasks()))
}

func TestDeleteIsAtomic(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)
	remote.fail["delete"] = errUnavailable

	assert.ErrorIs(t, s.Delete(context.Background(), []task.ID{"3", "5"}), errUnavailable)
	assert.Len(t, s.Tasks(), 5)
	assert.ErrorIs(t, s.Err(OpDelete), errUnavailable)
}

func TestDeleteEmptySelection(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)

	assert.ErrorIs(t, s.Delete(context.Background(), nil), ErrEmptySelection)
	assert.ErrorIs(t, s.Delete(context.Background(), []task.ID{""}), ErrEmptySelection)
	assert.Equal(t, []string{"list"}, remote.Calls())
}

func TestUpdateReplacesMatchingTask(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)

	updated, err := s.Update(context.Background(), "3", task.Draft{Title: "renamed", Bullets: []string{"x"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	got, ok := s.Find("3")
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, []string{"x"}, got.Bullets)
	assert.Equal(t, []task.ID{"1", "3", "4", "5", "7"}, ids(s.Tasks()))
}

func TestUpdateRejectsBlankTitle(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)

	_, err := s.Update(context.Background(), "3", task.Draft{Title: " "}, nil)
	assert.ErrorIs(t, err, task.ErrEmptyTitle)
	assert.Equal(t, []string{"list"}, remote.Calls())
}

func TestSubscribersSeeAppliedChanges(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	require.NoError(t, s.Delete(context.Background(), []task.ID{"3"}))
	c := <-ch
	assert.Equal(t, OpDelete, c.Op)
	assert.Equal(t, []task.ID{"3"}, c.IDs)
}

func TestSubscribersSeeFailures(t *testing.T) {
	remote := newFakeRemote(sample()...)
	s := seeded(remote)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	remote.fail["delete"] = errUnavailable
	require.Error(t, s.Delete(context.Background(), []task.ID{"3"}))
	c := <-ch
	assert.Equal(t, OpDelete, c.Op)
	assert.Empty(t, c.IDs)
	assert.ErrorIs(t, s.Err(OpDelete), errUnavailable)
}

func TestUnsubscribeTwice(t *testing.T) {
	s := seeded(newFakeRemote(sample()...))
	ch := s.Subscribe()

	s.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
	assert.NotPanics(t, func() { s.Unsubscribe(ch) })

	require.NoError(t, s.Delete(context.Background(), []task.ID{"3"}))
}
