package outline

import (
	"fmt"
	"sort"
)

// ResolveContentRange finds the page range of actual content from a
// classified outline. Leading top-level entries before the first preamble or
// content entry are skipped as front matter; a trailing run of back-matter
// entries is trimmed off the end. Skipped entries are recorded as
// diagnostics in forward page order.
//
// A pathological outline (everything classified front, or a back entry at
// page 0) can yield StartPage > EndPage; callers are expected to treat that
// as a degenerate document and fall back to the full span.
func ResolveContentRange(totalPages int, entries []Entry) ContentRange {
	cr := ContentRange{
		StartPage:  0,
		EndPage:    totalPages - 1,
		TotalPages: totalPages,
	}
	if len(entries) == 0 {
		return cr
	}

	// Only top-level entries participate in boundary detection.
	var top []Entry
	for _, e := range entries {
		if e.Level == 1 {
			top = append(top, e)
		}
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Page < top[j].Page })

	for _, e := range top {
		if isContentKind(e.Kind) {
			cr.StartPage = e.Page
			break
		}
		cr.SkippedFront = append(cr.SkippedFront, skipNote(e))
	}

	for i := len(top) - 1; i >= 0; i-- {
		e := top[i]
		if e.Kind != KindBack {
			break
		}
		cr.EndPage = e.Page - 1
		cr.SkippedBack = append(cr.SkippedBack, skipNote(e))
	}

	// Collected back-to-front above; report in ascending page order.
	for i, j := 0, len(cr.SkippedBack)-1; i < j; i, j = i+1, j-1 {
		cr.SkippedBack[i], cr.SkippedBack[j] = cr.SkippedBack[j], cr.SkippedBack[i]
	}

	return cr
}

func skipNote(e Entry) string {
	return fmt.Sprintf("p.%d: %s [%s]", e.Page, e.Title, e.Kind)
}
