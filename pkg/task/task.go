package task

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// UntitledTitle is shown for records that arrive without a title.
const UntitledTitle = "Untitled Task"

var (
	ErrEmptyTitle = errors.New("title is required")
	ErrNotFound   = errors.New("task not found")
	ErrMissingID  = errors.New("task record has no id")
)

// ID is an opaque task key. Numeric ids keep their decimal text.
type ID string

// MarshalJSON writes canonical decimal ids as JSON numbers so the backend
// sees the same type it assigned. Anything else, "007" included, stays a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Int64 returns the numeric form of the id, if it has one.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// Task is the canonical in-memory to-do item. Bullets and Images are never nil
// once a Task has been through Normalize.
type Task struct {
	ID          ID       `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets"`
	Images      []string `json:"images"`
	Deadline    Deadline `json:"deadline"`
	Completed   bool     `json:"completed"`
}

// Overdue reports whether the deadline has passed at now and the task is still open.
func (t Task) Overdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	at, ok := t.Deadline.Time()
	return ok && at.Before(now)
}

// Draft carries the user-editable fields submitted on create and update.
type Draft struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Bullets     []string `json:"bullets"`
	Deadline    Deadline `json:"deadline"`
}

var validate = validator.New()

// Validate trims the title and rejects drafts without one.
func (d *Draft) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Bullets == nil {
		d.Bullets = []string{}
	}
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Title" && verrs[0].Tag() == "required" {
			return ErrEmptyTitle
		}
		return err
	}
	return nil
}

// Record is a row of the todo_data table as the backend stores and serves it.
// Bullets hold the JSON text they were saved as.
type Record struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Bullets     string     `db:"bullets" json:"bullets"`
	Deadline    *time.Time `db:"deadline" json:"-"`
	Completed   bool       `db:"completed" json:"completed"`
	Images      []string   `db:"images" json:"images"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// MarshalJSON renders the deadline as a bare date or null.
func (r Record) MarshalJSON() ([]byte, error) {
	type plain Record
	var deadline *string
	if r.Deadline != nil {
		s := r.Deadline.Format(time.DateOnly)
		deadline = &s
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	return json.Marshal(struct {
		plain
		Deadline *string `json:"deadline"`
	}{plain(r), deadline})
}

// Store is the contract for task persistence.
type Store interface {
	Create(ctx context.Context, d Draft) (*Record, error)
	Get(ctx context.Context, id int64) (*Record, error)
	List(ctx context.Context) ([]Record, error)
	Update(ctx context.Context, id int64, d Draft) (*Record, error)
	Complete(ctx context.Context, id int64) (*Record, error)
	AppendImages(ctx context.Context, id int64, urls []string) ([]string, error)
	Delete(ctx context.Context, ids []int64) (int64, error)
	EnsureTable(ctx context.Context) error
}
