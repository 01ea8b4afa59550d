package service

import (
	"errors"
	"testing"

	"github.com/kitbuilder587/research-mcp/internal/search"
)

func payload(urls ...string) *search.Response {
	results := make([]search.Result, len(urls))
	for i, u := range urls {
		results[i] = search.Result{Title: "t-" + u, URL: u, Content: "c"}
	}
	return &search.Response{Results: results}
}

func TestCombine_DeduplicatesByURL(t *testing.T) {
	combined, err := Combine([]*search.Response{payload("a", "a", "b")}, 0, 0)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}

	if len(combined.Results) != 2 {
		t.Fatalf("unique results = %d, want 2", len(combined.Results))
	}
	if combined.Results[0].URL != "a" || combined.Results[1].URL != "b" {
		t.Errorf("order = [%s, %s], want [a, b]",
			combined.Results[0].URL, combined.Results[1].URL)
	}
}

func TestCombine_FirstOccurrenceWinsAcrossPayloads(t *testing.T) {
	first := payload("a", "b")
	first.Results[0].Title = "from-first"
	second := payload("a", "c")
	second.Results[0].Title = "from-second"

	combined, err := Combine([]*search.Response{first, second}, 0, 0)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}

	if len(combined.Results) != 3 {
		t.Fatalf("unique results = %d, want 3", len(combined.Results))
	}
	if combined.Results[0].Title != "from-first" {
		t.Errorf("dedup kept %q, want first occurrence", combined.Results[0].Title)
	}
}

func TestCombine_EnforcesMinimum(t *testing.T) {
	_, err := Combine([]*search.Response{payload("a", "b", "c")}, 8, 0)
	if !errors.Is(err, ErrInsufficientResults) {
		t.Errorf("Combine() error = %v, want ErrInsufficientResults", err)
	}
}

func TestCombine_CapsCombinedSize(t *testing.T) {
	combined, err := Combine([]*search.Response{
		payload("a", "b", "c"),
		payload("d", "e"),
	}, 0, 3)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if len(combined.Results) != 3 {
		t.Errorf("results = %d, want cap of 3", len(combined.Results))
	}
}

func TestCombine_SkipsMalformedPayloads(t *testing.T) {
	combined, err := Combine([]*search.Response{
		nil,
		{Results: nil},
		payload("a"),
	}, 0, 0)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if len(combined.Results) != 1 {
		t.Errorf("results = %d, want 1", len(combined.Results))
	}
}

func TestCombine_SkipsEmptyURLs(t *testing.T) {
	p := &search.Response{Results: []search.Result{
		{Title: "no url here"},
		{Title: "ok", URL: "https://example.com"},
	}}

	combined, err := Combine([]*search.Response{p}, 0, 0)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if len(combined.Results) != 1 {
		t.Errorf("results = %d, want 1", len(combined.Results))
	}
}

func TestCombine_NothingSurvives(t *testing.T) {
	_, err := Combine([]*search.Response{nil, {Results: nil}}, 0, 0)
	if !errors.Is(err, ErrNoValidResults) {
		t.Errorf("Combine() error = %v, want ErrNoValidResults", err)
	}

	_, err = Combine(nil, 0, 0)
	if !errors.Is(err, ErrNoValidResults) {
		t.Errorf("Combine(nil) error = %v, want ErrNoValidResults", err)
	}
}

func TestCombine_ConcatenatesAnswers(t *testing.T) {
	a := payload("a")
	a.Answer = "first answer"
	b := payload("b")
	b.Answer = "" // пустые ответы не попадают в сводку
	c := payload("c")
	c.Answer = "third answer"

	combined, err := Combine([]*search.Response{a, b, c}, 0, 0)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}

	want := "first answer\n\nthird answer"
	if combined.Answer != want {
		t.Errorf("Answer = %q, want %q", combined.Answer, want)
	}
}
