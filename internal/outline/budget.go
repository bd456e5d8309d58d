package outline

import (
	"context"
	"fmt"
	"sort"
)

// EnforceBudget subdivides any section whose estimated token count exceeds
// maxTokens, preferring outline entries one level deeper than the section,
// and falling back to raw page chunking when the outline has nothing deeper.
// It repeats until a fixed point: every returned section either fits the
// budget or is a single page that inherently exceeds it. maxTokens <= 0
// disables the budget and returns the input unchanged.
//
// Estimator errors propagate immediately; a partial section list is never
// returned.
func EnforceBudget(ctx context.Context, sections []Section, entries []Entry, est SizeEstimator, maxTokens int) ([]Section, error) {
	if maxTokens <= 0 || len(sections) == 0 {
		return sections, nil
	}
	deepest := deepestLevel(entries)

	for changed := true; changed; {
		changed = false
		next := make([]Section, 0, len(sections))

		for _, sec := range sections {
			tokens, err := est.EstimateTokens(ctx, sec.StartPage, sec.EndPage)
			if err != nil {
				return nil, fmt.Errorf("estimate pages %d-%d: %w", sec.StartPage, sec.EndPage, err)
			}
			if tokens <= maxTokens {
				next = append(next, sec)
				continue
			}

			children := childEntries(entries, sec)

			if len(children) == 0 && sec.Level >= deepest {
				// No deeper outline anywhere, so chunk by raw pages.
				chunks, split, err := chunkPages(ctx, sec, est, maxTokens)
				if err != nil {
					return nil, err
				}
				next = append(next, chunks...)
				if split {
					changed = true
				}
				continue
			}
			if len(children) == 0 {
				// Deeper levels exist elsewhere in the outline but not
				// inside this section; nothing more to do with it.
				next = append(next, sec)
				continue
			}

			// Keep a short leading sub-section for pages before the
			// first child.
			if children[0].Page > sec.StartPage {
				next = append(next, Section{
					Title:     sec.Title,
					Level:     sec.Level,
					StartPage: sec.StartPage,
					EndPage:   children[0].Page - 1,
				})
			}
			for i, child := range children {
				end := sec.EndPage
				if i+1 < len(children) {
					end = children[i+1].Page - 1
					if end < child.Page {
						end = child.Page
					}
				}
				next = append(next, Section{
					Title:     child.Title,
					Level:     child.Level,
					StartPage: child.Page,
					EndPage:   end,
				})
			}
			changed = true
		}

		sections = next
	}
	return sections, nil
}

// chunkPages splits an oversized leaf section into consecutive page runs
// that each fit the budget. Chunk titles carry a "(part N)" suffix, omitted
// when the whole section ends up as a single chunk.
func chunkPages(ctx context.Context, sec Section, est SizeEstimator, maxTokens int) ([]Section, bool, error) {
	var out []Section
	chunkStart := sec.StartPage
	part := 1

	for pg := sec.StartPage; pg <= sec.EndPage; pg++ {
		tokens, err := est.EstimateTokens(ctx, chunkStart, pg)
		if err != nil {
			return nil, false, fmt.Errorf("estimate pages %d-%d: %w", chunkStart, pg, err)
		}
		// Close the chunk before this page overflows it, but only once
		// the chunk holds at least one page.
		if tokens > maxTokens && pg > chunkStart {
			out = append(out, Section{
				Title:     fmt.Sprintf("%s (part %d)", sec.Title, part),
				Level:     sec.Level,
				StartPage: chunkStart,
				EndPage:   pg - 1,
			})
			chunkStart = pg
			part++
		}
	}

	title := sec.Title
	if part > 1 {
		title = fmt.Sprintf("%s (part %d)", sec.Title, part)
	}
	out = append(out, Section{
		Title:     title,
		Level:     sec.Level,
		StartPage: chunkStart,
		EndPage:   sec.EndPage,
	})
	return out, part > 1, nil
}

// childEntries returns preamble/content entries exactly one level deeper
// than sec and inside its page span, in page order.
func childEntries(entries []Entry, sec Section) []Entry {
	var children []Entry
	for _, e := range entries {
		if e.Level == sec.Level+1 && isContentKind(e.Kind) &&
			e.Page >= sec.StartPage && e.Page <= sec.EndPage {
			children = append(children, e)
		}
	}
	sort.SliceStable(children, func(i, j int) bool { return children[i].Page < children[j].Page })
	return children
}

func deepestLevel(entries []Entry) int {
	deepest := 0
	for _, e := range entries {
		if e.Level > deepest {
			deepest = e.Level
		}
	}
	return deepest
}
