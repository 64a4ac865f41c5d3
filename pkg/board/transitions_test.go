package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"todoboard/pkg/task"
)

func TestWithoutPreservesOrderAndInput(t *testing.T) {
	in := sample()
	out := without(in, []task.ID{"3", "5", "42"})
	assert.Equal(t, []task.ID{"1", "4", "7"}, ids(out))
	assert.Len(t, in, 5)
}

func TestWithTaskIsKeyedByID(t *testing.T) {
	in := sample()
	out := withTask(in, task.Task{ID: "3", Title: "again"})
	assert.Len(t, out, 5)
	assert.Equal(t, "again", out[1].Title)
	assert.Equal(t, "three", in[1].Title)

	out = withTask(in, task.Task{ID: "9"})
	assert.Len(t, out, 6)
}

func TestWithReplacedIgnoresUnknownID(t *testing.T) {
	in := sample()
	assert.Equal(t, in, withReplaced(in, task.Task{ID: "99", Title: "ghost"}))
}

func TestMergeImages(t *testing.T) {
	assert.Equal(t,
		[]string{"https://a", "https://b", "https://c"},
		mergeImages([]string{"https://a", "https://b"}, []string{"https://b", "https://c"}))
	assert.Equal(t, []string{}, mergeImages(nil, nil))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []task.ID{"3", "5"}, dedupe([]task.ID{"3", "5", "3", ""}))
}
