package webdoc

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is a titled block of markdown content, the web-path analog of a
// page-range section.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// FullArticleTitle labels the single section returned when the markdown has
// no headings at all.
const FullArticleTitle = "Full article"

// IntroductionTitle labels body text that appears before the first heading.
const IntroductionTitle = "Introduction"

// DefaultSplitLevel is the default maximum heading level used for splitting.
const DefaultSplitLevel = 2

// SplitByHeadings splits markdown into sections at headings up to maxLevel.
// maxLevel 1 splits on "#" only, 2 on "#" and "##", and so on. Deeper
// headings stay inside their section's body. With no headings the whole
// text becomes one "Full article" section.
func SplitByHeadings(markdown string, maxLevel int) []Section {
	if maxLevel <= 0 {
		maxLevel = DefaultSplitLevel
	}

	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var sections []Section
	title := IntroductionTitle
	var body strings.Builder

	flush := func() {
		content := strings.TrimSpace(body.String())
		if content != "" {
			sections = append(sections, Section{Title: title, Content: content})
		}
		body.Reset()
	}

	sawHeading := false
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level <= maxLevel {
			flush()
			title = string(h.Text(src))
			sawHeading = true
			continue
		}
		if t := blockMarkdown(n, src); t != "" {
			if body.Len() > 0 {
				body.WriteString("\n\n")
			}
			body.WriteString(t)
		}
	}
	flush()

	if !sawHeading {
		return []Section{{Title: FullArticleTitle, Content: strings.TrimSpace(markdown)}}
	}
	return sections
}

// blockMarkdown reconstructs the markdown text of a block node. Headings
// deeper than the split level come back with their hash prefix so the body
// keeps its sub-structure.
func blockMarkdown(n ast.Node, src []byte) string {
	if h, ok := n.(*ast.Heading); ok {
		return strings.Repeat("#", h.Level) + " " + string(h.Text(src))
	}

	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
	}
	if buf.Len() == 0 {
		// Container blocks (lists, quotes) carry text on their children.
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t := blockMarkdown(c, src); t != "" {
				if buf.Len() > 0 {
					buf.WriteByte('\n')
				}
				buf.WriteString(t)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
