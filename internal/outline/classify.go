package outline

import (
	"regexp"
	"strings"
)

// Title patterns that identify non-content pages (case-insensitive). Matched
// in order: front matter, then back matter, then preamble. First hit wins.
var frontPatterns = compilePatterns([]string{
	`^cover$`,
	`^half\s*title`,
	`^title\s*page`,
	`^copyright`,
	`^table\s*of\s*contents$`,
	`^contents$`,
	`^list\s*of\s*(figures|tables|illustrations)`,
	`^dedication`,
	`^epigraph`,
	`^praise\b`,
	`^endorsements?$`,
	`^also\s*by\b`,
	`^about\s*the\s*cover`,
})

var backPatterns = compilePatterns([]string{
	`^index$`,
	`^glossary$`,
	`^bibliography$`,
	`^references$`,
	`^about\s*the\s*authors?$`,
	`^colophon$`,
	`^appendix`,
})

// Preamble titles are content even though they appear before chapter 1.
var preamblePatterns = compilePatterns([]string{
	`^foreword`,
	`^preface`,
	`^introduction$`,
	`^acknowledgments?$`,
})

func compilePatterns(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// Classify buckets an outline entry by its title. Pure function of the
// trimmed title text; callers record the result in the entry's Kind field.
func Classify(e Entry) Kind {
	title := strings.TrimSpace(e.Title)
	for _, pat := range frontPatterns {
		if pat.MatchString(title) {
			return KindFront
		}
	}
	for _, pat := range backPatterns {
		if pat.MatchString(title) {
			return KindBack
		}
	}
	for _, pat := range preamblePatterns {
		if pat.MatchString(title) {
			return KindPreamble
		}
	}
	return KindContent
}

// ClassifyAll assigns a Kind to every entry in place.
func ClassifyAll(entries []Entry) {
	for i := range entries {
		entries[i].Kind = Classify(entries[i])
	}
}

func isContentKind(k Kind) bool {
	return k == KindPreamble || k == KindContent
}
