package task

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadlineDisplay(t *testing.T) {
	assert.Equal(t, "15 Jan 2023", Deadline("2023-01-15").Display())
	assert.Equal(t, "15 Jan 2023", Deadline("2023-01-15T10:30:00Z").Display())
	assert.Equal(t, "", Deadline("").Display())
	assert.Equal(t, "", Deadline("someday").Display())
}

func TestDeadlineJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		D Deadline `json:"d"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":null}`, string(b))

	var got struct {
		D Deadline `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-05-01"}`), &got))
	assert.Equal(t, Deadline("2024-05-01"), got.D)
	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &got))
	assert.True(t, got.D.IsZero())
}

func TestOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	past := Task{Deadline: "2024-05-31"}
	assert.True(t, past.Overdue(now))

	past.Completed = true
	assert.False(t, past.Overdue(now), "completed tasks are never overdue")

	assert.False(t, Task{Deadline: "2024-06-02"}.Overdue(now))
	assert.False(t, Task{}.Overdue(now))
	assert.False(t, Task{Deadline: "garbage"}.Overdue(now))
	assert.False(t, Task{Deadline: "2024-06-01T12:00:00Z"}.Overdue(now), "equal instant is not before now")
}

func TestIDJSON(t *testing.T) {
	b, err := json.Marshal([]ID{"3", "abc", "-4", "007", "+5", "00", "0"})
	require.NoError(t, err)
	assert.Equal(t, `[3,"abc",-4,"007","+5","00",0]`, string(b))

	b, err = json.Marshal(map[string]ID{"id": "007"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"007"}`, string(b))

	var ids []ID
	require.NoError(t, json.Unmarshal([]byte(`[5,"x"]`), &ids))
	assert.Equal(t, []ID{"5", "x"}, ids)

	n, ok := ID("42").Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)
	_, ok = ID("x").Int64()
	assert.False(t, ok)
}

func TestDraftValidate(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		d := Draft{Title: title}
		assert.ErrorIs(t, d.Validate(), ErrEmptyTitle, "title %q", title)
	}

	long := Draft{Title: strings.Repeat("x", 5000)}
	require.NoError(t, long.Validate())
	assert.Len(t, long.Title, 5000)

	d := Draft{Title: "  ship it  "}
	require.NoError(t, d.Validate())
	assert.Equal(t, "ship it", d.Title)
	assert.Equal(t, []string{}, d.Bullets)
}

func TestRecordJSON(t *testing.T) {
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	b, err := json.Marshal(Record{ID: 7, Title: "t", Bullets: `["a"]`, Deadline: &day})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "2024-02-29", out["deadline"])
	assert.Equal(t, `["a"]`, out["bullets"])
	assert.Equal(t, []any{}, out["images"])

	b, err = json.Marshal(Record{ID: 8})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Nil(t, out["deadline"])
}
