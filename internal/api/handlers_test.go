package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tmackey/docsection/internal/config"
	"github.com/tmackey/docsection/internal/pipeline"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:           "test-key",
		MaxQueueSize:     8,
		MaxUploadBytes:   1 << 20,
		DefaultMaxDepth:  1,
		DefaultMaxTokens: 24000,
		JobTTL:           time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	// The orchestrator is never started, so submitted jobs stay queued.
	orch := pipeline.NewOrchestrator(cfg, nil, log)
	return NewServer(orch, log, cfg)
}

func authedRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer test-key")
	return req
}

func TestHealth_NoAuthRequired(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/decompose/abc/status", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_WrongKey(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/decompose/abc/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestStatus_NotFound(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/decompose/missing/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func multipartBody(t *testing.T, fields map[string]string, filename string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(fileData)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestDecompose_URLAccepted(t *testing.T) {
	s := testServer(t)
	body, ct := multipartBody(t, map[string]string{"url": "https://example.com/article"}, "", nil)
	req := authedRequest(http.MethodPost, "/api/decompose", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	jobID, _ := resp["job_id"].(string)
	if len(jobID) != 26 {
		t.Errorf("expected 26-char job ID, got %q", jobID)
	}
	pollURL, _ := resp["poll_url"].(string)
	if pollURL != "/api/decompose/"+jobID+"/status" {
		t.Errorf("unexpected poll_url %q", pollURL)
	}

	// Status endpoint sees the queued job.
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, pollURL, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status["status"] != string(pipeline.StatusQueued) {
		t.Errorf("expected queued status, got %v", status["status"])
	}
}

func TestDecompose_BadURL(t *testing.T) {
	s := testServer(t)
	body, ct := multipartBody(t, map[string]string{"url": "ftp://example.com/file"}, "", nil)
	req := authedRequest(http.MethodPost, "/api/decompose", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDecompose_UnsupportedFileType(t *testing.T) {
	s := testServer(t)
	body, ct := multipartBody(t, nil, "notes.txt", []byte("plain text"))
	req := authedRequest(http.MethodPost, "/api/decompose", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unsupported file type") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestDecompose_MissingFileAndURL(t *testing.T) {
	s := testServer(t)
	body, ct := multipartBody(t, map[string]string{"max_depth": "2"}, "", nil)
	req := authedRequest(http.MethodPost, "/api/decompose", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestResult_NotCompleted(t *testing.T) {
	s := testServer(t)
	body, ct := multipartBody(t, map[string]string{"url": "https://example.com/doc"}, "", nil)
	req := authedRequest(http.MethodPost, "/api/decompose", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	jobID, _ := resp["job_id"].(string)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/decompose/"+jobID+"/result", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for queued job, got %d", rec.Code)
	}
}

func TestSourceForFilename(t *testing.T) {
	cases := []struct {
		name   string
		source pipeline.SourceType
		ok     bool
	}{
		{"report.pdf", pipeline.SourcePDF, true},
		{"REPORT.PDF", pipeline.SourcePDF, true},
		{"notes.docx", pipeline.SourceDOCX, true},
		{"notes.doc", "", false},
		{"readme.md", "", false},
		{"noext", "", false},
	}
	for _, c := range cases {
		src, ok := sourceForFilename(c.name)
		if ok != c.ok || src != c.source {
			t.Errorf("sourceForFilename(%q) = (%q, %v), want (%q, %v)", c.name, src, ok, c.source, c.ok)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"report.pdf":       "report.pdf",
		".":                "unnamed",
		"":                 "unnamed",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
