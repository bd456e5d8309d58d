package pdfdoc

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tmackey/docsection/internal/outline"
)

// The PDF library exposes bookmark titles but not their destination pages,
// so the embedded outline comes from the printed contents pages instead:
// scan the opening pages for ToC-shaped lines and parse them.

// Contents-line forms: "1.2 Title 34", "IV Title 120", "Appendix A Title 200".
var (
	tocNumRe      = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)\s+(.+?)\s+(\d+)\s*$`)
	tocRomanRe    = regexp.MustCompile(`^\s*([IVXLCDM]+)\s+(.+?)\s+(\d+)\s*$`)
	tocAppendixRe = regexp.MustCompile(`(?i)^\s*appendix\s+([A-Z](?:\.[0-9]+)*)\s+(.+?)\s+(\d+)\s*$`)
)

// tocScanPages bounds how far into the document the contents scan looks.
const tocScanPages = 25

// minTocLines is how many ToC-shaped lines a page needs before it is
// treated as a contents page.
const minTocLines = 3

type tocLine struct {
	title string
	page  int // printed page number, as it appears in the ToC
	level int
}

// EmbeddedOutline parses the printed table of contents into outline entries.
// Returns an empty slice when no contents page is found. Entries whose page
// falls outside the document are dropped.
func (d *Document) EmbeddedOutline(ctx context.Context) ([]outline.Entry, error) {
	limit := d.PageCount()
	if limit > tocScanPages {
		limit = tocScanPages
	}

	var lines []tocLine
	inToc := false
	for page := 0; page < limit; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := d.PageText(page)
		if err != nil {
			return nil, err
		}
		parsed := parseContentsLines(strings.Split(text, "\n"))
		if len(parsed) >= minTocLines {
			lines = append(lines, parsed...)
			inToc = true
		} else if inToc {
			// The contents ran out; stop scanning.
			break
		}
	}
	if len(lines) == 0 {
		return nil, nil
	}

	offset := d.pageOffset(lines)
	total := d.PageCount()
	entries := make([]outline.Entry, 0, len(lines))
	for _, ln := range lines {
		page := ln.page + offset
		if page < 0 || page >= total {
			continue
		}
		entries = append(entries, outline.Entry{
			Level: ln.level,
			Title: ln.title,
			Page:  page,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Page < entries[j].Page })
	return entries, nil
}

// pageOffset maps printed page numbers to absolute 0-indexed pages by
// locating the first parsed entry's title in the document body. Falls back
// to -1 (printed numbers taken as 1-based) when the title cannot be found.
func (d *Document) pageOffset(lines []tocLine) int {
	first := lines[0]
	needle := strings.ToLower(first.title)
	total := d.PageCount()

	// The body page can only be at or after the printed number minus one.
	from := first.page - 1
	if from < 0 {
		from = 0
	}
	for page := from; page < total && page < from+tocScanPages; page++ {
		text, err := d.PageText(page)
		if err != nil {
			break
		}
		if strings.Contains(strings.ToLower(text), needle) {
			return page - first.page
		}
	}
	return -1
}

func parseContentsLines(rawLines []string) []tocLine {
	var out []tocLine
	for _, line := range rawLines {
		if ln, ok := matchContentsLine(normalizeLeaders(line)); ok {
			out = append(out, ln)
		}
	}
	return out
}

func matchContentsLine(line string) (tocLine, bool) {
	if m := tocAppendixRe.FindStringSubmatch(line); len(m) == 4 {
		page, _ := strconv.Atoi(m[3])
		return tocLine{
			title: "Appendix " + m[1] + " " + strings.TrimSpace(m[2]),
			page:  page,
			level: strings.Count(m[1], ".") + 1,
		}, true
	}
	if m := tocNumRe.FindStringSubmatch(line); len(m) == 4 {
		page, _ := strconv.Atoi(m[3])
		return tocLine{
			title: m[1] + " " + strings.TrimSpace(m[2]),
			page:  page,
			level: strings.Count(m[1], ".") + 1,
		}, true
	}
	if m := tocRomanRe.FindStringSubmatch(line); len(m) == 4 {
		page, _ := strconv.Atoi(m[3])
		return tocLine{
			title: m[1] + " " + strings.TrimSpace(m[2]),
			page:  page,
			level: 1,
		}, true
	}
	return tocLine{}, false
}

// normalizeLeaders strips dot leaders and collapses whitespace so the line
// regexes see "1.2 Title 34" instead of "1.2  Title ...... 34".
func normalizeLeaders(s string) string {
	s = strings.ReplaceAll(s, "•", " ")
	s = strings.ReplaceAll(s, "·", " ")
	s = strings.ReplaceAll(s, "…", " ")
	for strings.Contains(s, ". .") {
		s = strings.ReplaceAll(s, ". .", "  ")
	}
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", " ")
	}
	return strings.Join(strings.Fields(s), " ")
}
