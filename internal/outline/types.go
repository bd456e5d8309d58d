package outline

import "context"

// Kind classifies a top-level outline entry for content boundary detection.
type Kind string

const (
	KindUnclassified Kind = ""
	KindFront        Kind = "front"
	KindBack         Kind = "back"
	KindPreamble     Kind = "preamble"
	KindContent      Kind = "content"
)

// Entry is one structural marker in a document outline.
type Entry struct {
	Level int    `json:"level"` // 1 = top-level, increasing = deeper
	Title string `json:"title"`
	Page  int    `json:"page"` // 0-indexed absolute page
	Kind  Kind   `json:"kind,omitempty"`
}

// ContentRange is the resolved page span holding actual content.
// SkippedFront/SkippedBack are human-readable diagnostics only.
type ContentRange struct {
	StartPage    int      `json:"start_page"` // inclusive, 0-indexed
	EndPage      int      `json:"end_page"`   // inclusive, 0-indexed
	TotalPages   int      `json:"total_pages"`
	SkippedFront []string `json:"skipped_front,omitempty"`
	SkippedBack  []string `json:"skipped_back,omitempty"`
}

// Section is a contiguous, labeled unit of content. Any produced section list
// is sorted by StartPage, non-overlapping, and covers the content range exactly.
type Section struct {
	Title     string `json:"title"`
	Level     int    `json:"level"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
}

// OutlineSource supplies outline entries for one document. EmbeddedOutline
// reads native structural metadata and returns an empty slice if there is
// none. InferOutline derives entries from layout analysis; it is expensive
// and is only called when the embedded outline is missing or too sparse.
type OutlineSource interface {
	EmbeddedOutline(ctx context.Context) ([]Entry, error)
	InferOutline(ctx context.Context) ([]Entry, error)
}

// SizeEstimator reports the approximate token count of an inclusive page
// range. Implementations may do I/O; they should keep the underlying
// document open across repeated calls.
type SizeEstimator interface {
	EstimateTokens(ctx context.Context, startPage, endPage int) (int, error)
}
