package outline

import (
	"context"
	"fmt"
	"log/slog"
)

// Options controls one decomposition run.
type Options struct {
	MaxDepth    int     // outline depth used for initial sectioning; default 1
	MaxTokens   int     // per-section token budget; <= 0 disables
	MinCoverage float64 // embedded outline trust threshold; default 0.3
}

// Result is the output of a decomposition: the final ordered section list and
// the resolved content range with its skip diagnostics.
type Result struct {
	Sections []Section    `json:"sections"`
	Range    ContentRange `json:"content_range"`
}

// Engine decomposes documents into bounded, labeled sections. It holds no
// per-document state; one Engine may be used concurrently across documents.
type Engine struct {
	log *slog.Logger
}

func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{log: log}
}

// Decompose runs the full pipeline: outline selection, classification,
// content range resolution, section building, and budget enforcement.
//
// With no usable outline the whole document becomes a single section. A
// degenerate outline-derived range (start past end) is discarded in favor of
// the full page span.
func (e *Engine) Decompose(ctx context.Context, src OutlineSource, est SizeEstimator, totalPages int, opts Options) (Result, error) {
	if totalPages <= 0 {
		return Result{}, fmt.Errorf("document has no pages")
	}

	embedded, err := src.EmbeddedOutline(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("embedded outline: %w", err)
	}
	entries, err := SelectOutline(ctx, embedded, src.InferOutline, totalPages, opts.MinCoverage)
	if err != nil {
		return Result{}, fmt.Errorf("outline: %w", err)
	}

	fullRange := ContentRange{StartPage: 0, EndPage: totalPages - 1, TotalPages: totalPages}
	if len(entries) == 0 {
		e.log.Info("no outline available, using full document", "pages", totalPages)
		return Result{
			Sections: []Section{{Title: FullDocumentTitle, Level: 1, StartPage: 0, EndPage: totalPages - 1}},
			Range:    fullRange,
		}, nil
	}

	ClassifyAll(entries)
	cr := ResolveContentRange(totalPages, entries)
	if cr.StartPage > cr.EndPage {
		e.log.Warn("degenerate content range, falling back to full span",
			"start_page", cr.StartPage, "end_page", cr.EndPage)
		cr.StartPage = 0
		cr.EndPage = totalPages - 1
	}
	e.log.Info("resolved content range",
		"start_page", cr.StartPage, "end_page", cr.EndPage,
		"skipped_front", len(cr.SkippedFront), "skipped_back", len(cr.SkippedBack))

	sections := BuildSections(cr, entries, opts.MaxDepth)
	sections, err = EnforceBudget(ctx, sections, entries, est, opts.MaxTokens)
	if err != nil {
		return Result{}, err
	}

	return Result{Sections: sections, Range: cr}, nil
}
