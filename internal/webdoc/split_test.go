package webdoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByHeadings_Basic(t *testing.T) {
	md := `# First Chapter

Body of the first chapter.

# Second Chapter

Body of the second chapter.`

	sections := SplitByHeadings(md, 1)
	require.Len(t, sections, 2)
	assert.Equal(t, "First Chapter", sections[0].Title)
	assert.Contains(t, sections[0].Content, "Body of the first chapter.")
	assert.Equal(t, "Second Chapter", sections[1].Title)
}

func TestSplitByHeadings_NoHeadings(t *testing.T) {
	md := "Just a plain article with no structure.\n\nSecond paragraph."

	sections := SplitByHeadings(md, 2)
	require.Len(t, sections, 1)
	assert.Equal(t, FullArticleTitle, sections[0].Title)
	assert.Contains(t, sections[0].Content, "Second paragraph.")
}

func TestSplitByHeadings_PreambleBecomesIntroduction(t *testing.T) {
	md := `Some opening remarks before any heading.

# Real Content

The body.`

	sections := SplitByHeadings(md, 1)
	require.Len(t, sections, 2)
	assert.Equal(t, IntroductionTitle, sections[0].Title)
	assert.Contains(t, sections[0].Content, "opening remarks")
	assert.Equal(t, "Real Content", sections[1].Title)
}

func TestSplitByHeadings_MaxLevel(t *testing.T) {
	md := `# Top

Intro text.

## Subsection

Sub text.

### Deep

Deep text.`

	// maxLevel 1: only "#" splits; deeper headings stay in the body.
	sections := SplitByHeadings(md, 1)
	require.Len(t, sections, 1)
	assert.Equal(t, "Top", sections[0].Title)
	assert.Contains(t, sections[0].Content, "## Subsection")
	assert.Contains(t, sections[0].Content, "### Deep")

	// maxLevel 2: "#" and "##" split.
	sections = SplitByHeadings(md, 2)
	require.Len(t, sections, 2)
	assert.Equal(t, "Subsection", sections[1].Title)
	assert.Contains(t, sections[1].Content, "### Deep")
}

func TestSplitByHeadings_SkipsEmptyBodies(t *testing.T) {
	md := `# Empty Heading

# Full Heading

Content here.`

	sections := SplitByHeadings(md, 1)
	require.Len(t, sections, 1)
	assert.Equal(t, "Full Heading", sections[0].Title)
}

func TestExtractMarkdown(t *testing.T) {
	htmlDoc := `<html><head><title>My Article</title><style>.x{}</style></head>
<body>
<nav>Home | About</nav>
<h1>My Article</h1>
<p>First paragraph.</p>
<h2>Details</h2>
<p>Second paragraph.</p>
<ul><li>one</li><li>two</li></ul>
<script>alert(1)</script>
<footer>copyright</footer>
</body></html>`

	page, err := ExtractMarkdown(strings.NewReader(htmlDoc))
	require.NoError(t, err)
	assert.Equal(t, "My Article", page.Title)
	assert.Contains(t, page.Markdown, "# My Article")
	assert.Contains(t, page.Markdown, "## Details")
	assert.Contains(t, page.Markdown, "- one")
	assert.NotContains(t, page.Markdown, "alert")
	assert.NotContains(t, page.Markdown, "Home | About")
	assert.NotContains(t, page.Markdown, "copyright")

	sections := SplitByHeadings(page.Markdown, 2)
	require.Len(t, sections, 2)
	assert.Equal(t, "My Article", sections[0].Title)
	assert.Equal(t, "Details", sections[1].Title)
}
