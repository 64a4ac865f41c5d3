// Package client talks to the task backend over HTTP and returns normalized
// tasks. It holds no local state; see package board for that.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"todoboard/pkg/logger"
	"todoboard/pkg/task"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// ImageField is the multipart field name files are sent under:
	// "images" or "image_url", depending on the backend revision.
	ImageField string
	Debug      bool
}

// Upload is one image file to attach to a task.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// ErrUnexpectedResponse is returned when a 2xx list response is neither an
// array nor an object wrapping one under "data".
var ErrUnexpectedResponse = errors.New("unexpected response shape")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	msg := gjson.Get(e.Body, "error").String()
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Code, msg)
}

// Client is the remote side of the task store. No call is retried.
type Client struct {
	http       *resty.Client
	imageField string
	log        logger.Logger
}

func New(cfg Config, log logger.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ImageField == "" {
		cfg.ImageField = "images"
	}
	if log == nil {
		log = logger.Default()
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if cfg.Debug {
		hc.SetDebug(true)
	}
	return &Client{http: hc, imageField: cfg.ImageField, log: log}
}

// List fetches every task. Records without an id are dropped.
func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	body, err := c.do("list tasks", c.http.R().SetContext(ctx), http.MethodGet, "/data")
	if err != nil {
		return nil, err
	}
	records, ok := task.Records(body)
	if !ok {
		return nil, fmt.Errorf("list tasks: %w", ErrUnexpectedResponse)
	}
	tasks := make([]task.Task, 0, len(records))
	for _, r := range records {
		t, ok := task.NormalizeResult(r)
		if !ok {
			c.log.Warn("skipping task record without id", "title", t.Title)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Get fetches a single task.
func (c *Client) Get(ctx context.Context, id task.ID) (task.Task, error) {
	req := c.http.R().SetContext(ctx).SetPathParam("id", string(id))
	body, err := c.do("get task", req, http.MethodGet, "/todo/{id}")
	if err != nil {
		return task.Task{}, err
	}
	return single(body, "")
}

type createRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Bullets     []string      `json:"bullets"`
	Deadline    task.Deadline `json:"deadline"`
	Completed   bool          `json:"completed"`
}

// Create submits a new task and returns the record the server saved.
func (c *Client) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	req := c.http.R().SetContext(ctx).SetBody(createRequest{
		Title:       d.Title,
		Description: d.Description,
		Bullets:     nonNil(d.Bullets),
		Deadline:    d.Deadline,
	})
	body, err := c.do("create task", req, http.MethodPost, "/add")
	if err != nil {
		return task.Task{}, err
	}
	return single(body, "")
}

// Update submits edited fields and returns the updated record.
func (c *Client) Update(ctx context.Context, id task.ID, d task.Draft) (task.Task, error) {
	req := c.http.R().SetContext(ctx).SetPathParam("id", string(id)).SetBody(task.Draft{
		Title:       d.Title,
		Description: d.Description,
		Bullets:     nonNil(d.Bullets),
		Deadline:    d.Deadline,
	})
	body, err := c.do("update task", req, http.MethodPut, "/tasks/{id}")
	if err != nil {
		return task.Task{}, err
	}
	return single(body, "task")
}

// AttachImages uploads files for an existing task and returns the image URLs
// the server reports back.
func (c *Client) AttachImages(ctx context.Context, id task.ID, uploads []Upload) ([]string, error) {
	req := c.http.R().SetContext(ctx).SetPathParam("id", string(id))
	for _, u := range uploads {
		req.SetFileReader(c.imageField, u.Filename, u.Reader)
	}
	body, err := c.do("attach images", req, http.MethodPost, "/todo/{id}/images")
	if err != nil {
		return nil, err
	}
	return task.NormalizeImages(gjson.GetBytes(body, "images")), nil
}

// MarkCompleted marks one task completed.
func (c *Client) MarkCompleted(ctx context.Context, id task.ID) error {
	req := c.http.R().SetContext(ctx).SetBody(map[string]task.ID{"id": id})
	_, err := c.do("update status", req, http.MethodPut, "/todo/status")
	return err
}

// Delete removes the given tasks in one call.
func (c *Client) Delete(ctx context.Context, ids []task.ID) error {
	req := c.http.R().SetContext(ctx).SetBody(map[string][]task.ID{"ids": ids})
	_, err := c.do("delete tasks", req, http.MethodPost, "/delete")
	return err
}

func (c *Client) do(op string, req *resty.Request, method, url string) ([]byte, error) {
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return nil, &StatusError{Op: op, Code: resp.StatusCode(), Body: resp.String()}
	}
	c.log.Debug("remote call", "op", op, "status", resp.StatusCode(), "took", resp.Time())
	return resp.Body(), nil
}

// single normalizes a one-record response, optionally wrapped under key.
func single(body []byte, key string) (task.Task, error) {
	r := gjson.ParseBytes(body)
	if key != "" {
		if inner := r.Get(key); inner.IsObject() {
			r = inner
		}
	}
	t, ok := task.NormalizeResult(r)
	if !ok {
		return task.Task{}, task.ErrMissingID
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
