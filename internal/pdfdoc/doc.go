package pdfdoc

import (
	"context"
	"fmt"
	"os"

	pdflib "github.com/ledongthuc/pdf"
)

// Document wraps an open PDF for page-oriented access. The underlying file
// stays open until Close so that repeated page reads during budget
// enforcement do not reopen the document. Page text is cached after first
// extraction.
type Document struct {
	f      *os.File
	reader *pdflib.Reader
	pages  []*string
}

// Open opens a PDF at path. The caller must Close the document.
func Open(path string) (*Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &Document{
		f:      f,
		reader: reader,
		pages:  make([]*string, reader.NumPage()),
	}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of a 0-indexed page. Pages the library
// cannot decode yield empty text rather than an error, matching how sparse
// or image-only pages behave.
func (d *Document) PageText(page int) (string, error) {
	if page < 0 || page >= len(d.pages) {
		return "", fmt.Errorf("page %d out of range [0, %d)", page, len(d.pages))
	}
	if d.pages[page] != nil {
		return *d.pages[page], nil
	}

	text := ""
	p := d.reader.Page(page + 1) // library pages are 1-based
	if !p.V.IsNull() {
		if t, err := p.GetPlainText(nil); err == nil {
			text = t
		}
	}
	d.pages[page] = &text
	return text, nil
}

func (d *Document) Close() error {
	return d.f.Close()
}

// charsPerToken is the rough chars-to-token ratio for English text.
const charsPerToken = 4

// Estimator reports approximate token counts for page ranges of an open
// Document. It implements outline.SizeEstimator.
type Estimator struct {
	doc *Document
}

func NewEstimator(doc *Document) *Estimator {
	return &Estimator{doc: doc}
}

func (e *Estimator) EstimateTokens(ctx context.Context, startPage, endPage int) (int, error) {
	chars := 0
	for page := startPage; page <= endPage; page++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		text, err := e.doc.PageText(page)
		if err != nil {
			return 0, err
		}
		chars += len(text)
	}
	return chars / charsPerToken, nil
}
