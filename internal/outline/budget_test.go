package outline

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// pageEstimator charges a fixed token count per page. Pure and monotonic in
// range length, like a real text-based estimator.
type pageEstimator struct {
	perPage int
}

func (e pageEstimator) EstimateTokens(_ context.Context, startPage, endPage int) (int, error) {
	return (endPage - startPage + 1) * e.perPage, nil
}

type failingEstimator struct {
	err error
}

func (e failingEstimator) EstimateTokens(context.Context, int, int) (int, error) {
	return 0, e.err
}

func TestEnforceBudget_Disabled(t *testing.T) {
	sections := []Section{{Title: "Big", Level: 1, StartPage: 0, EndPage: 99}}

	got, err := EnforceBudget(context.Background(), sections, nil, pageEstimator{perPage: 1000}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, sections) {
		t.Errorf("budget disabled: sections changed: %+v", got)
	}
}

func TestEnforceBudget_WithinBudgetUnchanged(t *testing.T) {
	sections := []Section{
		{Title: "Ch1", Level: 1, StartPage: 0, EndPage: 9},
		{Title: "Ch2", Level: 1, StartPage: 10, EndPage: 19},
	}

	got, err := EnforceBudget(context.Background(), sections, nil, pageEstimator{perPage: 100}, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, sections) {
		t.Errorf("sections within budget changed: %+v", got)
	}
}

func TestEnforceBudget_SubdividesWithChildren(t *testing.T) {
	entries := []Entry{
		{Level: 1, Title: "Part I", Page: 0, Kind: KindContent},
		{Level: 2, Title: "Chapter 1", Page: 2, Kind: KindContent},
		{Level: 2, Title: "Chapter 2", Page: 10, Kind: KindContent},
	}
	sections := []Section{{Title: "Part I", Level: 1, StartPage: 0, EndPage: 19}}

	// 20 pages * 100 = 2000 tokens for the part; each chapter fits alone.
	got, err := EnforceBudget(context.Background(), sections, entries, pageEstimator{perPage: 100}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Leading intro (pages before Chapter 1), then the two chapters.
	if len(got) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(got), got)
	}
	checkCoverage(t, got, 0, 19)
	if got[0].Title != "Part I" || got[0].EndPage != 1 {
		t.Errorf("expected leading intro section, got %+v", got[0])
	}
	if got[1].Title != "Chapter 1" || got[1].Level != 2 {
		t.Errorf("unexpected second section: %+v", got[1])
	}
	if got[2].Title != "Chapter 2" || got[2].EndPage != 19 {
		t.Errorf("unexpected last section: %+v", got[2])
	}
}

func TestEnforceBudget_PageChunkFallback(t *testing.T) {
	// A level-1 section spanning pages 5-39 with no deeper outline; 800
	// tokens per page puts 12 pages under the 10k budget and 13 over.
	entries := []Entry{
		{Level: 1, Title: "The Long Chapter", Page: 5, Kind: KindContent},
	}
	sections := []Section{{Title: "The Long Chapter", Level: 1, StartPage: 5, EndPage: 39}}

	got, err := EnforceBudget(context.Background(), sections, entries, pageEstimator{perPage: 800}, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(got), got)
	}
	checkCoverage(t, got, 5, 39)
	wantTitles := []string{
		"The Long Chapter (part 1)",
		"The Long Chapter (part 2)",
		"The Long Chapter (part 3)",
	}
	for i, s := range got {
		if s.Title != wantTitles[i] {
			t.Errorf("chunk %d title = %q, want %q", i, s.Title, wantTitles[i])
		}
		if tokens := (s.EndPage - s.StartPage + 1) * 800; tokens > 10000 {
			t.Errorf("chunk %d exceeds budget: %d tokens", i, tokens)
		}
		if s.Level != 1 {
			t.Errorf("chunk %d level = %d, want 1", i, s.Level)
		}
	}
}

func TestEnforceBudget_SinglePageOverBudgetIrreducible(t *testing.T) {
	entries := []Entry{{Level: 1, Title: "Dense", Page: 0, Kind: KindContent}}
	sections := []Section{{Title: "Dense", Level: 1, StartPage: 0, EndPage: 0}}

	got, err := EnforceBudget(context.Background(), sections, entries, pageEstimator{perPage: 50000}, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One page cannot be split further; the title keeps no part suffix.
	if len(got) != 1 || got[0].Title != "Dense" {
		t.Errorf("expected single irreducible section, got %+v", got)
	}
}

func TestEnforceBudget_Idempotent(t *testing.T) {
	entries := []Entry{
		{Level: 1, Title: "Part I", Page: 0, Kind: KindContent},
		{Level: 2, Title: "Chapter 1", Page: 0, Kind: KindContent},
		{Level: 2, Title: "Chapter 2", Page: 30, Kind: KindContent},
	}
	sections := []Section{{Title: "Part I", Level: 1, StartPage: 0, EndPage: 59}}
	est := pageEstimator{perPage: 200}

	once, err := EnforceBudget(context.Background(), sections, entries, est, 8000)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	twice, err := EnforceBudget(context.Background(), once, entries, est, 8000)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second application changed the result:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestEnforceBudget_AllSectionsFitAfterwards(t *testing.T) {
	entries := []Entry{
		{Level: 1, Title: "Part I", Page: 0, Kind: KindContent},
		{Level: 2, Title: "Chapter 1", Page: 3, Kind: KindContent},
		{Level: 2, Title: "Chapter 2", Page: 40, Kind: KindContent},
		{Level: 1, Title: "Part II", Page: 80, Kind: KindContent},
		{Level: 2, Title: "Chapter 3", Page: 85, Kind: KindContent},
	}
	sections := BuildSections(ContentRange{StartPage: 0, EndPage: 119, TotalPages: 120}, entries, 1)
	est := pageEstimator{perPage: 500}
	const budget = 6000

	got, err := EnforceBudget(context.Background(), sections, entries, est, budget)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkCoverage(t, got, 0, 119)
	for i, s := range got {
		tokens, _ := est.EstimateTokens(context.Background(), s.StartPage, s.EndPage)
		if tokens > budget && s.StartPage != s.EndPage {
			t.Errorf("section %d (%q) over budget and reducible: %d tokens over %d pages",
				i, s.Title, tokens, s.EndPage-s.StartPage+1)
		}
	}
}

func TestEnforceBudget_EstimatorErrorPropagates(t *testing.T) {
	wantErr := errors.New("document unreadable")
	sections := []Section{{Title: "Ch1", Level: 1, StartPage: 0, EndPage: 9}}

	_, err := EnforceBudget(context.Background(), sections, nil, failingEstimator{err: wantErr}, 1000)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected estimator error to propagate, got %v", err)
	}
}
