package outline

import "context"

// DefaultMinCoverage is the fraction of a document's pages an embedded
// outline must span to be trusted over inference.
const DefaultMinCoverage = 0.3

// InferFunc lazily produces an inferred outline. It is only invoked when the
// embedded outline cannot be trusted.
type InferFunc func(ctx context.Context) ([]Entry, error)

// SelectOutline chooses between an embedded outline and lazy inference.
//
// A sparse embedded outline (say, a single preface bookmark) is worse than no
// outline: it would misclassify the bulk of the document as skipped matter.
// So the embedded entries are trusted only when their maximum page reaches at
// least minCoverage of the document; otherwise infer is called.
func SelectOutline(ctx context.Context, embedded []Entry, infer InferFunc, totalPages int, minCoverage float64) ([]Entry, error) {
	if minCoverage <= 0 {
		minCoverage = DefaultMinCoverage
	}
	if len(embedded) > 0 {
		maxPage := 0
		for _, e := range embedded {
			if e.Page > maxPage {
				maxPage = e.Page
			}
		}
		if float64(maxPage) >= float64(totalPages)*minCoverage {
			return embedded, nil
		}
	}
	return infer(ctx)
}
