package board

import (
	"slices"

	"todoboard/pkg/task"
)

// The functions below are the local state transitions applied after a remote
// call succeeds. They never mutate their input.

// withTask appends t, or replaces the task that already has its id.
func withTask(tasks []task.Task, t task.Task) []task.Task {
	out := slices.Clone(tasks)
	for i := range out {
		if out[i].ID == t.ID {
			out[i] = t
			return out
		}
	}
	return append(out, t)
}

// withReplaced swaps in t for the task with the same id. Unknown ids are ignored.
func withReplaced(tasks []task.Task, t task.Task) []task.Task {
	out := slices.Clone(tasks)
	for i := range out {
		if out[i].ID == t.ID {
			out[i] = t
		}
	}
	return out
}

// withCompleted flips Completed on the matching task only.
func withCompleted(tasks []task.Task, id task.ID) []task.Task {
	out := slices.Clone(tasks)
	for i := range out {
		if out[i].ID == id {
			out[i].Completed = true
		}
	}
	return out
}

// without drops the given ids, keeping survivors in order.
func without(tasks []task.Task, ids []task.ID) []task.Task {
	drop := make(map[task.ID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := drop[t.ID]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// mergeImages appends the URLs in added that existing lacks.
func mergeImages(existing, added []string) []string {
	out := make([]string, 0, len(existing)+len(added))
	out = append(out, existing...)
	for _, u := range added {
		if !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

// dedupe keeps the first occurrence of each id.
func dedupe(ids []task.ID) []task.ID {
	seen := make(map[task.ID]struct{}, len(ids))
	out := make([]task.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
