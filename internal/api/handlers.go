package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tmackey/docsection/internal/pipeline"
)

// handleDecompose accepts either an uploaded document ("file", a PDF or
// DOCX) or a web page ("url") and queues a decomposition job.
func (s *Server) handleDecompose(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with extra headroom for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	maxDepth := s.cfg.DefaultMaxDepth
	if v := r.FormValue("max_depth"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxDepth = n
		}
	}
	maxTokens := s.cfg.DefaultMaxTokens
	if v := r.FormValue("max_tokens"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxTokens = n
		}
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        pipeline.NewJobID(),
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		MaxDepth:  maxDepth,
		MaxTokens: maxTokens,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if rawURL := r.FormValue("url"); rawURL != "" {
		u, err := url.Parse(rawURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			jsonError(w, "url must be an absolute http(s) URL", http.StatusBadRequest)
			return
		}
		job.Source = pipeline.SourceURL
		job.URL = rawURL
		job.DocID = pipeline.ContentHashHex([]byte(rawURL))[:16]
	} else {
		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file or url is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		source, ok := sourceForFilename(filename)
		if !ok {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}

		job.Source = source
		job.Filename = filename
		job.DocID = pipeline.ContentHashHex(data)[:16]
		job.SetFileData(data)
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/decompose/%s/status", job.ID),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id": snap.ID,
		"doc_id": snap.DocID,
		"source": snap.Source,
		"status": snap.Status,
		"phase":  snap.Phase,
		"errors": snap.Errors,
	})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	if snap.Status != pipeline.StatusCompleted {
		jsonError(w, fmt.Sprintf("job not completed (status %s)", snap.Status), http.StatusConflict)
		return
	}
	res := job.Result()
	if res == nil {
		jsonError(w, "result unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id": snap.ID,
		"doc_id": snap.DocID,
		"source": snap.Source,
		"result": res,
	})
}

func sourceForFilename(name string) (pipeline.SourceType, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return pipeline.SourcePDF, true
	case ".docx":
		return pipeline.SourceDOCX, true
	default:
		return "", false
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
