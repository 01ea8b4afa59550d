package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-mcp/internal/search"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration // таймаут на одну попытку, ретраи живут уровнем выше
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.tavily.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth,omitempty"`
	Topic             string `json:"topic,omitempty"`
	Days              int    `json:"days,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeImages     bool   `json:"include_images"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Query        string         `json:"query"`
	Results      []tavilyResult `json:"results"`
	Answer       string         `json:"answer"`
	Images       []tavilyImage  `json:"images"`
	ResponseTime float64        `json:"response_time"`
}

type tavilyResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

type tavilyImage struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Search делает один запрос к Tavily. Никаких ретраев внутри -
// за повторы и backoff отвечает retry.Executor.
func (c *Client) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	if req.MaxResults == 0 {
		req.MaxResults = 5
	}
	if req.SearchDepth == "" {
		req.SearchDepth = "basic"
	}

	tavilyReq := tavilyRequest{
		APIKey:            c.apiKey,
		Query:             req.Query,
		SearchDepth:       req.SearchDepth,
		Topic:             req.Topic,
		Days:              req.Days,
		MaxResults:        req.MaxResults,
		IncludeAnswer:     req.IncludeAnswer,
		IncludeImages:     req.IncludeImages,
		IncludeRawContent: req.IncludeRawContent,
	}

	body, err := json.Marshal(tavilyReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var tavilyResp tavilyResponse
		if err := json.Unmarshal(respBody, &tavilyResp); err != nil {
			return nil, fmt.Errorf("%w: %v", search.ErrInvalidResponse, err)
		}

		// nil означает что ключа results вообще не было в ответе;
		// пустой массив - валидный ответ без результатов
		if tavilyResp.Results == nil {
			return nil, search.ErrInvalidResponse
		}

		return c.toSearchResponse(&tavilyResp), nil

	case http.StatusUnauthorized:
		return nil, search.ErrUnauthorized

	case http.StatusTooManyRequests:
		return nil, search.ErrRateLimit

	default:
		c.logger.Warn("tavily request failed",
			zap.Int("status", resp.StatusCode),
			zap.Int("body_length", len(respBody)),
		)
		return nil, fmt.Errorf("%w: status %d", search.ErrSearchFailed, resp.StatusCode)
	}
}

func (c *Client) toSearchResponse(resp *tavilyResponse) *search.Response {
	results := make([]search.Result, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = search.Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		}
	}

	images := make([]search.Image, len(resp.Images))
	for i, img := range resp.Images {
		images[i] = search.Image{URL: img.URL, Description: img.Description}
	}

	return &search.Response{
		Query:        resp.Query,
		Results:      results,
		Answer:       resp.Answer,
		Images:       images,
		ResponseTime: resp.ResponseTime,
	}
}
