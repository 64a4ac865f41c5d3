package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"todoboard/pkg/imagehost"
	"todoboard/pkg/task"
)

// Multipart parts beyond maxUploadMemory spill to temp files; the whole
// request body is capped by the server's upload limit.
const maxUploadMemory = 32 << 20

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	records, err := s.tasks.List(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if records == nil {
		records = []task.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rec, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	d, ok := readDraft(w, r)
	if !ok {
		return
	}
	rec, err := s.tasks.Create(r.Context(), d)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, ok := readDraft(w, r)
	if !ok {
		return
	}
	rec, err := s.tasks.Update(r.Context(), id, d)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": rec})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	id, ok := task.NormalizeID(body).Int64()
	if !ok {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if _, err := s.tasks.Complete(r.Context(), id); err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var ids []int64
	for _, v := range body.Get("ids").Array() {
		id, ok := task.ID(v.String()).Int64()
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid id: "+v.Raw)
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}
	n, err := s.tasks.Delete(r.Context(), ids)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// handleTaskImages uploads every file under the images or image_url field
// to the image host and appends the resulting URLs to the task.
func (s *Server) handleTaskImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()
	files := append(r.MultipartForm.File["images"], r.MultipartForm.File["image_url"]...)
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no images uploaded")
		return
	}
	if _, err := s.tasks.Get(r.Context(), id); err != nil {
		s.storeError(w, r, err)
		return
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "open upload: "+err.Error())
			return
		}
		url, err := s.images.Upload(r.Context(), fh.Filename, f)
		f.Close()
		if errors.Is(err, imagehost.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		if err != nil {
			s.log.Error("image upload failed", "task", id, "file", fh.Filename, "error", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		urls = append(urls, url)
	}

	images, err := s.tasks.AppendImages(r.Context(), id, urls)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"images": images})
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, task.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.internalError(w, r, err)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id: "+r.PathValue("id"))
		return 0, false
	}
	return id, true
}

func readBody(w http.ResponseWriter, r *http.Request) (gjson.Result, bool) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return gjson.Result{}, false
	}
	if !gjson.ValidBytes(b) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(b), true
}

// readDraft accepts bullets in any of the shapes clients have sent over
// time and writes a 400 if the title is missing or the deadline is not a date.
func readDraft(w http.ResponseWriter, r *http.Request) (task.Draft, bool) {
	body, ok := readBody(w, r)
	if !ok {
		return task.Draft{}, false
	}
	d := task.Draft{
		Title:       body.Get("title").String(),
		Description: strings.TrimSpace(body.Get("description").String()),
		Bullets:     task.NormalizeBullets(body.Get("bullets")),
		Deadline:    task.NormalizeDeadline(body.Get("deadline")),
	}
	if err := d.Validate(); err != nil {
		if errors.Is(err, task.ErrEmptyTitle) {
			writeError(w, http.StatusBadRequest, "title is required")
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return task.Draft{}, false
	}
	if _, ok := d.Deadline.Time(); !d.Deadline.IsZero() && !ok {
		writeError(w, http.StatusBadRequest, "invalid deadline: "+string(d.Deadline))
		return task.Draft{}, false
	}
	return d, true
}
