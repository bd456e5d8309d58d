package outline

import "testing"

func TestClassify_FrontMatter(t *testing.T) {
	titles := []string{
		"Cover",
		"cover",
		"Half Title",
		"Title Page",
		"Copyright",
		"Table of Contents",
		"Contents",
		"List of Figures",
		"List of Tables",
		"Dedication",
		"Epigraph",
		"Praise for the Book",
		"Endorsements",
		"Also by Author",
		"About the Cover",
	}
	for _, title := range titles {
		got := Classify(Entry{Level: 1, Title: title, Page: 0})
		if got != KindFront {
			t.Errorf("Classify(%q) = %q, want %q", title, got, KindFront)
		}
	}
}

func TestClassify_BackMatter(t *testing.T) {
	titles := []string{
		"Index",
		"Glossary",
		"Bibliography",
		"References",
		"About the Author",
		"About the Authors",
		"Colophon",
		"Appendix A",
	}
	for _, title := range titles {
		got := Classify(Entry{Level: 1, Title: title, Page: 100})
		if got != KindBack {
			t.Errorf("Classify(%q) = %q, want %q", title, got, KindBack)
		}
	}
}

func TestClassify_Preamble(t *testing.T) {
	titles := []string{
		"Foreword",
		"Preface",
		"Introduction",
		"Acknowledgments",
	}
	for _, title := range titles {
		got := Classify(Entry{Level: 1, Title: title, Page: 5})
		if got != KindPreamble {
			t.Errorf("Classify(%q) = %q, want %q", title, got, KindPreamble)
		}
	}
}

func TestClassify_Content(t *testing.T) {
	titles := []string{
		"Chapter 1: Getting Started",
		"1. Foundations",
		"Part I",
		"Data Pipelines",
		"Advanced Topics",
		// "Introduction to Go" is not an exact "Introduction" match.
		"Introduction to Go",
	}
	for _, title := range titles {
		got := Classify(Entry{Level: 1, Title: title, Page: 10})
		if got != KindContent {
			t.Errorf("Classify(%q) = %q, want %q", title, got, KindContent)
		}
	}
}

func TestClassify_IgnoresPageAndLevel(t *testing.T) {
	// Classification depends only on the title text.
	a := Classify(Entry{Level: 1, Title: "Glossary", Page: 3})
	b := Classify(Entry{Level: 4, Title: "Glossary", Page: 900})
	if a != b {
		t.Errorf("same title classified differently: %q vs %q", a, b)
	}
}

func TestClassifyAll(t *testing.T) {
	entries := []Entry{
		{Level: 1, Title: "Cover", Page: 0},
		{Level: 1, Title: "Chapter 1", Page: 5},
		{Level: 1, Title: "Index", Page: 40},
	}
	ClassifyAll(entries)

	want := []Kind{KindFront, KindContent, KindBack}
	for i, e := range entries {
		if e.Kind != want[i] {
			t.Errorf("entry %d (%q): kind = %q, want %q", i, e.Title, e.Kind, want[i])
		}
	}
}
