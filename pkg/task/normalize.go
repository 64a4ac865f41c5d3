package task

import (
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tidwall/gjson"
)

// Raw field names accepted for the id and images of a record, in priority order.
var (
	idFields    = []string{"id", "task_id"}
	imageFields = []string{"images", "image"}
)

// Normalize converts one raw task record into a canonical Task. It never
// fails; ok is false when the record has no usable id and so must not be
// inserted into a keyed collection.
func Normalize(raw []byte) (t Task, ok bool) {
	return NormalizeResult(gjson.ParseBytes(raw))
}

// NormalizeResult is Normalize for an already parsed record.
func NormalizeResult(r gjson.Result) (Task, bool) {
	t := Task{
		ID:          NormalizeID(r),
		Title:       r.Get("title").String(),
		Description: r.Get("description").String(),
		Bullets:     NormalizeBullets(r.Get("bullets")),
		Images:      NormalizeImages(firstPresent(r, imageFields)),
		Deadline:    NormalizeDeadline(r.Get("deadline")),
		Completed:   r.Get("completed").Bool(),
	}
	if t.Title == "" {
		t.Title = UntitledTitle
	}
	return t, t.ID != ""
}

// Records returns the task records of a list response shaped either as a bare
// array or as an object wrapping the array under "data". ok is false for any
// other shape.
func Records(body []byte) (records []gjson.Result, ok bool) {
	r := gjson.ParseBytes(body)
	if r.IsArray() {
		return r.Array(), true
	}
	if data := r.Get("data"); data.IsArray() {
		return data.Array(), true
	}
	return nil, false
}

// NormalizeID coalesces the record id from its primary or alternate field.
func NormalizeID(r gjson.Result) ID {
	for _, name := range idFields {
		v := r.Get(name)
		switch v.Type {
		case gjson.Number:
			return ID(v.Raw)
		case gjson.String:
			if s := strings.TrimSpace(v.Str); s != "" {
				return ID(s)
			}
		}
	}
	return ""
}

// NormalizeDeadline keeps a string deadline as-is and maps anything else to no deadline.
func NormalizeDeadline(v gjson.Result) Deadline {
	if v.Type != gjson.String {
		return ""
	}
	return Deadline(strings.TrimSpace(v.Str))
}

// NormalizeBullets turns a bullets field into a sequence of strings. The
// value may be a native array, a JSON-encoded array, a Postgres array literal
// or a lone string. Anything else yields an empty sequence.
func NormalizeBullets(v gjson.Result) []string {
	return looseList(v, true)
}

// NormalizeImages reads an images field with the same tolerance as bullets and
// keeps only absolute http(s) URLs, in their original order.
func NormalizeImages(v gjson.Result) []string {
	urls := []string{}
	for _, s := range looseList(v, false) {
		if strings.HasPrefix(s, "http") {
			urls = append(urls, s)
		}
	}
	return urls
}

func firstPresent(r gjson.Result, names []string) gjson.Result {
	for _, name := range names {
		if v := r.Get(name); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func looseList(v gjson.Result, scalars bool) []string {
	switch {
	case v.IsArray():
		return elements(v.Array(), scalars)
	case v.Type == gjson.String:
		return fromString(v.Str, scalars)
	}
	return []string{}
}

func fromString(s string, scalars bool) []string {
	trimmed := strings.TrimSpace(s)
	if gjson.Valid(trimmed) {
		switch parsed := gjson.Parse(trimmed); {
		case parsed.IsArray():
			return elements(parsed.Array(), scalars)
		case parsed.Type == gjson.String:
			// double-encoded; each pass strips one layer of quoting
			return fromString(parsed.Str, scalars)
		}
	}
	if items, ok := parseArrayLiteral(trimmed); ok {
		return items
	}
	if trimmed != "" {
		return []string{trimmed}
	}
	return []string{}
}

func elements(items []gjson.Result, scalars bool) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case gjson.String:
			out = append(out, item.Str)
		case gjson.Number, gjson.True, gjson.False:
			if scalars {
				out = append(out, item.Raw)
			}
		}
	}
	return out
}

// pgtype.Map caches scan plans and is not safe for concurrent use.
var (
	literalMu    sync.Mutex
	literalTypes = pgtype.NewMap()
)

// parseArrayLiteral reads "{a,b,c}". Quoted and escaped elements go through
// pgx's array text codec; input it rejects is split on commas instead.
func parseArrayLiteral(s string) ([]string, bool) {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, false
	}

	var elems []pgtype.Text
	literalMu.Lock()
	err := literalTypes.Scan(pgtype.TextArrayOID, pgtype.TextFormatCode, []byte(s), &elems)
	literalMu.Unlock()
	if err == nil {
		out := make([]string, 0, len(elems))
		for _, e := range elems {
			if v := strings.TrimSpace(e.String); e.Valid && v != "" {
				out = append(out, v)
			}
		}
		return out, true
	}

	out := []string{}
	for _, part := range strings.Split(s[1:len(s)-1], ",") {
		part = strings.TrimSpace(strings.Trim(strings.TrimSpace(part), `"'`))
		if part != "" {
			out = append(out, part)
		}
	}
	return out, true
}
