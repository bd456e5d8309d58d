package infer

import (
	"regexp"
	"strings"

	"github.com/tmackey/docsection/internal/outline"
)

// Heading is a raw heading candidate proposed by layout analysis.
type Heading struct {
	Title string `json:"title"`
	Page  int    `json:"page"` // 0-indexed
}

// Math/axis labels like "x(2)" or "f(x)" that layout analysis misreads as
// headings.
var mathLabelRe = regexp.MustCompile(`^[a-z]\(.+\)$`)

// Leading section numbering like "3.1.2 Title".
var sectionNumRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s`)

// maxRepeats is the occurrence count above which a title is treated as a
// running header or footer.
const maxRepeats = 2

// FilterHeadings removes noise from raw heading candidates: very short
// titles, math labels, running headers (titles repeated more than twice),
// and duplicates (first occurrence kept).
func FilterHeadings(raw []Heading) []Heading {
	counts := make(map[string]int, len(raw))
	for _, h := range raw {
		counts[h.Title]++
	}

	seen := make(map[string]bool, len(raw))
	var out []Heading
	for _, h := range raw {
		title := strings.TrimSpace(h.Title)
		if len(title) < 3 {
			continue
		}
		if mathLabelRe.MatchString(title) {
			continue
		}
		if counts[h.Title] > maxRepeats {
			continue
		}
		if seen[title] {
			continue
		}
		seen[title] = true
		out = append(out, Heading{Title: title, Page: h.Page})
	}
	return out
}

// AssignLevels turns filtered headings into outline entries. When the
// majority of headings carry section numbering, the nesting level is the
// dot count plus one and unnumbered headings ("Preface") sit at level 1.
// Without majority numbering there is no reliable depth signal in text, so
// every heading becomes level 1.
func AssignLevels(headings []Heading) []outline.Entry {
	if len(headings) == 0 {
		return nil
	}

	numbered := 0
	for _, h := range headings {
		if sectionNumRe.MatchString(h.Title) {
			numbered++
		}
	}
	useNumbering := numbered*2 > len(headings)

	entries := make([]outline.Entry, 0, len(headings))
	for _, h := range headings {
		level := 1
		if useNumbering {
			if m := sectionNumRe.FindStringSubmatch(h.Title); m != nil {
				level = strings.Count(m[1], ".") + 1
			}
		}
		entries = append(entries, outline.Entry{
			Level: level,
			Title: h.Title,
			Page:  h.Page,
		})
	}
	return entries
}
