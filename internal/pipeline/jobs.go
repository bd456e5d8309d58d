package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/tmackey/docsection/internal/outline"
	"github.com/tmackey/docsection/internal/webdoc"
)

// JobStatus represents the state of a decomposition job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusOpening    JobStatus = "opening"
	StatusOutlining  JobStatus = "outlining"
	StatusSectioning JobStatus = "sectioning"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// SourceType is the kind of document a job decomposes.
type SourceType string

const (
	SourcePDF  SourceType = "pdf"
	SourceDOCX SourceType = "docx"
	SourceURL  SourceType = "url"
)

// Result is the final output of a decomposition job. PDF jobs produce
// page-range sections plus the content range diagnostics; webpage and DOCX
// jobs produce markdown sections.
type Result struct {
	TotalPages  int                   `json:"total_pages,omitempty"`
	Sections    []outline.Section     `json:"sections,omitempty"`
	Range       *outline.ContentRange `json:"content_range,omitempty"`
	WebSections []webdoc.Section      `json:"web_sections,omitempty"`
}

// Job tracks the state of a single document decomposition.
type Job struct {
	mu sync.Mutex

	ID       string     `json:"job_id"`
	DocID    string     `json:"doc_id"`
	Source   SourceType `json:"source"`
	Filename string     `json:"filename,omitempty"`
	URL      string     `json:"url,omitempty"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	// Per-job decomposition parameters.
	MaxDepth  int `json:"max_depth"`
	MaxTokens int `json:"max_tokens"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *Result
	errors   []string
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error message.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw upload bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw upload bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetResult stores the finished decomposition and releases the upload bytes.
func (j *Job) SetResult(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Result returns the finished decomposition, or nil while the job runs.
func (j *Job) Result() *Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string     `json:"job_id"`
	DocID    string     `json:"doc_id"`
	Source   SourceType `json:"source"`
	Filename string     `json:"filename,omitempty"`
	URL      string     `json:"url,omitempty"`
	Status   JobStatus  `json:"status"`
	Phase    string     `json:"phase"`
	Errors   []string   `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		DocID:    j.DocID,
		Source:   j.Source,
		Filename: j.Filename,
		URL:      j.URL,
		Status:   j.Status,
		Phase:    j.Phase,
		Errors:   errs,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// ContentHashHex computes SHA-256 of content and returns a hex string. Used
// as a document identity for deduplication and the inference cache.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
