package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/research-mcp/internal/search"
)

// Client - конфигурируемый клиент для тестов
type Client struct {
	Response *search.Response
	Error    error
	Delay    time.Duration

	// ErrorsBeforeSuccess > 0: первые N вызовов падают, дальше успех
	ErrorsBeforeSuccess int

	CallCount   int
	LastRequest search.Request
	AllRequests []search.Request

	mu sync.Mutex
}

func New() *Client {
	return &Client{}
}

func (c *Client) WithResponse(resp *search.Response) *Client {
	c.Response = resp
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	c.mu.Lock()
	c.CallCount++
	call := c.CallCount
	c.LastRequest = req
	c.AllRequests = append(c.AllRequests, req)
	delay := c.Delay
	err := c.Error
	resp := c.Response
	flakyBudget := c.ErrorsBeforeSuccess
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if flakyBudget > 0 && call <= flakyBudget {
		if err != nil {
			return nil, err
		}
		return nil, search.ErrSearchFailed
	}
	if flakyBudget == 0 && err != nil {
		return nil, err
	}

	if resp != nil {
		return resp, nil
	}
	return &search.Response{
		Query: req.Query,
		Results: []search.Result{
			{Title: "Mock Result", URL: "https://example.com/mock", Content: "mock content", Score: 0.9},
		},
	}, nil
}

func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CallCount
}
