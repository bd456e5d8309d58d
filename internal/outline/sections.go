package outline

import "sort"

// FullDocumentTitle labels the single fallback section used when no usable
// outline entries exist.
const FullDocumentTitle = "Full Document"

// BuildSections converts a classified outline into contiguous,
// non-overlapping page-range sections covering the content range exactly.
// Only preamble/content entries at or above maxDepth and inside the content
// range are used; each section runs from its entry's page to just before the
// next entry, with the last section extending to the end of the range.
func BuildSections(cr ContentRange, entries []Entry, maxDepth int) []Section {
	if maxDepth <= 0 {
		maxDepth = 1
	}

	var picked []Entry
	for _, e := range entries {
		if e.Level <= maxDepth && isContentKind(e.Kind) &&
			e.Page >= cr.StartPage && e.Page <= cr.EndPage {
			picked = append(picked, e)
		}
	}
	if len(picked) == 0 {
		return []Section{{
			Title:     FullDocumentTitle,
			Level:     1,
			StartPage: cr.StartPage,
			EndPage:   cr.EndPage,
		}}
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].Page < picked[j].Page })

	sections := make([]Section, 0, len(picked))
	for i, e := range picked {
		end := cr.EndPage
		if i+1 < len(picked) {
			// Guard against two entries sharing a page: never let a
			// section end before it starts.
			end = picked[i+1].Page - 1
			if end < e.Page {
				end = e.Page
			}
		}
		sections = append(sections, Section{
			Title:     e.Title,
			Level:     e.Level,
			StartPage: e.Page,
			EndPage:   end,
		})
	}
	return sections
}
