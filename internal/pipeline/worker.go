package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tmackey/docsection/internal/config"
	"github.com/tmackey/docsection/internal/infer"
	"github.com/tmackey/docsection/internal/outline"
	"github.com/tmackey/docsection/internal/pdfdoc"
	"github.com/tmackey/docsection/internal/webdoc"
)

// Worker processes a single decomposition job.
type Worker struct {
	ai      *infer.Client
	cache   *infer.Cache
	fetcher *webdoc.Fetcher
	engine  *outline.Engine
	log     *slog.Logger
	cfg     config.Config
}

func NewWorker(ai *infer.Client, cache *infer.Cache, fetcher *webdoc.Fetcher, engine *outline.Engine, log *slog.Logger, cfg config.Config) *Worker {
	return &Worker{
		ai:      ai,
		cache:   cache,
		fetcher: fetcher,
		engine:  engine,
		log:     log,
		cfg:     cfg,
	}
}

// Process runs the full decomposition pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "source", job.Source)

	switch job.Source {
	case SourcePDF:
		w.processPDF(ctx, job, log)
	case SourceDOCX:
		w.processDocx(job, log)
	case SourceURL:
		w.processURL(ctx, job, log)
	default:
		job.AddError(fmt.Sprintf("unknown source type: %s", job.Source))
		job.SetStatus(StatusFailed, "dispatch")
	}
}

func (w *Worker) processPDF(ctx context.Context, job *Job, log *slog.Logger) {
	job.SetStatus(StatusOpening, "opening")

	tmp, err := os.CreateTemp("", "docsection-*.pdf")
	if err != nil {
		log.Error("temp file failed", "error", err)
		job.AddError(fmt.Sprintf("temp file: %s", err))
		job.SetStatus(StatusFailed, "opening")
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(job.FileData()); err != nil {
		tmp.Close()
		log.Error("temp write failed", "error", err)
		job.AddError(fmt.Sprintf("temp write: %s", err))
		job.SetStatus(StatusFailed, "opening")
		return
	}
	tmp.Close()

	doc, err := pdfdoc.Open(tmp.Name())
	if err != nil {
		log.Error("open failed", "error", err)
		job.AddError(fmt.Sprintf("open: %s", err))
		job.SetStatus(StatusFailed, "opening")
		return
	}
	defer doc.Close()

	totalPages := doc.PageCount()
	log.Info("document opened", "pages", totalPages)

	job.SetStatus(StatusOutlining, "outlining")
	src := &pdfSource{doc: doc, w: w, docID: job.DocID, log: log}
	res, err := w.engine.Decompose(ctx, src, pdfdoc.NewEstimator(doc), totalPages, outline.Options{
		MaxDepth:    job.MaxDepth,
		MaxTokens:   job.MaxTokens,
		MinCoverage: w.cfg.MinCoverage,
	})
	if err != nil {
		log.Error("decompose failed", "error", err)
		job.AddError(fmt.Sprintf("decompose: %s", err))
		job.SetStatus(StatusFailed, "outlining")
		return
	}

	job.SetResult(&Result{
		TotalPages: totalPages,
		Sections:   res.Sections,
		Range:      &res.Range,
	})
	job.SetStatus(StatusCompleted, "done")
	log.Info("decomposition complete", "sections", len(res.Sections))
}

func (w *Worker) processDocx(job *Job, log *slog.Logger) {
	job.SetStatus(StatusOpening, "opening")

	md, err := webdoc.DocxToMarkdown(bytes.NewReader(job.FileData()))
	if err != nil {
		log.Error("docx conversion failed", "error", err)
		job.AddError(fmt.Sprintf("docx: %s", err))
		job.SetStatus(StatusFailed, "opening")
		return
	}

	job.SetStatus(StatusSectioning, "sectioning")
	sections := webdoc.SplitByHeadings(md, w.cfg.WebSplitLevel)
	job.SetResult(&Result{WebSections: sections})
	job.SetStatus(StatusCompleted, "done")
	log.Info("decomposition complete", "sections", len(sections))
}

func (w *Worker) processURL(ctx context.Context, job *Job, log *slog.Logger) {
	job.SetStatus(StatusOpening, "opening")

	page, err := w.fetcher.Fetch(ctx, job.URL)
	if err != nil {
		log.Error("fetch failed", "url", job.URL, "error", err)
		job.AddError(fmt.Sprintf("fetch: %s", err))
		job.SetStatus(StatusFailed, "opening")
		return
	}

	job.SetStatus(StatusSectioning, "sectioning")
	sections := webdoc.SplitByHeadings(page.Markdown, w.cfg.WebSplitLevel)
	job.SetResult(&Result{WebSections: sections})
	job.SetStatus(StatusCompleted, "done")
	log.Info("decomposition complete", "title", page.Title, "sections", len(sections))
}

// pdfSource adapts an open PDF to the outline engine's source interface.
// Inference results are cached by content hash so repeat submissions of
// the same document skip the API call.
type pdfSource struct {
	doc   *pdfdoc.Document
	w     *Worker
	docID string
	log   *slog.Logger
}

func (s *pdfSource) EmbeddedOutline(ctx context.Context) ([]outline.Entry, error) {
	return s.doc.EmbeddedOutline(ctx)
}

func (s *pdfSource) InferOutline(ctx context.Context) ([]outline.Entry, error) {
	if entries, ok := s.w.cache.Get(s.docID); ok {
		s.log.Info("inference cache hit")
		return entries, nil
	}
	if s.w.ai == nil {
		s.log.Warn("no inference client configured, proceeding without outline")
		return nil, nil
	}

	pages := make([]string, s.doc.PageCount())
	for i := range pages {
		text, err := s.doc.PageText(i)
		if err != nil {
			return nil, fmt.Errorf("page %d text: %w", i, err)
		}
		pages[i] = text
	}

	var entries []outline.Entry
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		entries, lastErr = s.w.ai.InferOutline(ctx, pages)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		s.log.Warn("retryable inference error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	s.w.cache.Put(s.docID, entries)
	return entries, nil
}
