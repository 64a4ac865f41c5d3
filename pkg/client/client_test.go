package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoboard/pkg/logger"
	"todoboard/pkg/task"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL}, logger.Discard())
}

func TestListToleratesResponseShapes(t *testing.T) {
	for name, body := range map[string]string{
		"bare array": `[{"id":1,"title":"a","bullets":"[\"x\",\"y\"]","images":null,"deadline":null},{"title":"no id"}]`,
		"wrapped":    `{"data":[{"id":1,"title":"a","bullets":"[\"x\",\"y\"]","images":null,"deadline":null},{"title":"no id"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/data", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, body)
			})

			tasks, err := c.List(context.Background())
			require.NoError(t, err)
			require.Len(t, tasks, 1)
			assert.Equal(t, task.ID("1"), tasks[0].ID)
			assert.Equal(t, []string{"x", "y"}, tasks[0].Bullets)
			assert.Equal(t, []string{}, tasks[0].Images)
			assert.True(t, tasks[0].Deadline.IsZero())
		})
	}
}

func TestListRejectsUnknownShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"error":"boom"}`)
	})

	tasks, err := c.List(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
	assert.Nil(t, tasks)
}

func TestCreateSendsDraft(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/add", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":12,"title":"Write report","bullets":"[\"intro\"]","deadline":"2024-09-01","completed":false,"images":[]}`)
	})

	created, err := c.Create(context.Background(), task.Draft{Title: "Write report", Bullets: []string{"intro"}, Deadline: "2024-09-01"})
	require.NoError(t, err)

	assert.Equal(t, "Write report", got["title"])
	assert.Equal(t, []any{"intro"}, got["bullets"])
	assert.Equal(t, "2024-09-01", got["deadline"])
	assert.Equal(t, false, got["completed"])
	assert.Equal(t, task.ID("12"), created.ID)
	assert.Equal(t, []string{"intro"}, created.Bullets)
}

func TestCreateWithoutDeadlineSendsNull(t *testing.T) {
	var raw map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		io.WriteString(w, `{"id":1,"title":"t"}`)
	})
	_, err := c.Create(context.Background(), task.Draft{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw["deadline"]))
	assert.Equal(t, "[]", string(raw["bullets"]))
}

func TestUpdateUnwrapsTask(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tasks/7", r.URL.Path)
		io.WriteString(w, `{"task":{"id":7,"title":"renamed","bullets":"{a,b}"}}`)
	})
	updated, err := c.Update(context.Background(), "7", task.Draft{Title: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, []string{"a", "b"}, updated.Bullets)
}

func TestAttachImagesUsesConfiguredField(t *testing.T) {
	var files []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/todo/3/images", r.URL.Path)
		if assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			for _, fh := range r.MultipartForm.File["image_url"] {
				files = append(files, fh.Filename)
			}
		}
		io.WriteString(w, `{"images":["https://h/a.png","not-a-url","https://h/b.png"]}`)
	}))
	defer srv.Close()
	c := New(Config{BaseURL: srv.URL, ImageField: "image_url"}, logger.Discard())

	urls, err := c.AttachImages(context.Background(), "3", []Upload{
		{Filename: "a.png", Reader: strings.NewReader("a")},
		{Filename: "b.png", Reader: strings.NewReader("b")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, files)
	assert.Equal(t, []string{"https://h/a.png", "https://h/b.png"}, urls)
}

func TestMarkCompletedAndDeleteBodies(t *testing.T) {
	var bodies []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, r.Method+" "+r.URL.Path+" "+strings.TrimSpace(string(b)))
		io.WriteString(w, `{"ok":true}`)
	})

	require.NoError(t, c.MarkCompleted(context.Background(), "4"))
	require.NoError(t, c.Delete(context.Background(), []task.ID{"3", "5"}))
	assert.Equal(t, []string{
		`PUT /todo/status {"id":4}`,
		`POST /delete {"ids":[3,5]}`,
	}, bodies)
}

func TestZeroPaddedIDsStayStrings(t *testing.T) {
	var bodies []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, strings.TrimSpace(string(b)))
		io.WriteString(w, `{"ok":true}`)
	})

	require.NoError(t, c.MarkCompleted(context.Background(), "007"))
	require.NoError(t, c.Delete(context.Background(), []task.ID{"007", "+5", "3"}))
	assert.Equal(t, []string{
		`{"id":"007"}`,
		`{"ids":["007","+5",3]}`,
	}, bodies)
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"database unavailable"}`)
	})

	_, err := c.List(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestGetMissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"title":"ghost"}`)
	})
	_, err := c.Get(context.Background(), "1")
	assert.ErrorIs(t, err, task.ErrMissingID)
}
