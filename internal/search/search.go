package search

import (
	"context"
	"errors"
)

var (
	ErrEmptyQuery      = errors.New("empty query")
	ErrUnauthorized    = errors.New("invalid API key")
	ErrRateLimit       = errors.New("rate limit exceeded")
	ErrSearchFailed    = errors.New("search request failed")
	ErrInvalidResponse = errors.New("response missing results")
)

type Client interface {
	Search(ctx context.Context, req Request) (*Response, error)
}

type Request struct {
	Query             string
	SearchDepth       string
	Topic             string
	Days              int
	MaxResults        int
	IncludeAnswer     bool
	IncludeImages     bool
	IncludeRawContent bool
}

type Response struct {
	Query        string
	Results      []Result
	Answer       string
	Images       []Image
	ResponseTime float64
}

type Result struct {
	Title         string
	URL           string
	Content       string
	Score         float64
	PublishedDate string
}

type Image struct {
	URL         string
	Description string
}

// CombinedResponse - результат слияния нескольких поисков (fan-out).
// Results без дублей по URL, порядок = первое вхождение.
type CombinedResponse struct {
	Results []Result
	Answer  string
}
