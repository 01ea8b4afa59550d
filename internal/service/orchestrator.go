package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/research-mcp/internal/cache/memory"
	"github.com/kitbuilder587/research-mcp/internal/health"
	"github.com/kitbuilder587/research-mcp/internal/metrics"
	"github.com/kitbuilder587/research-mcp/internal/retry"
	"github.com/kitbuilder587/research-mcp/internal/scheduler"
	"github.com/kitbuilder587/research-mcp/internal/search"
)

var ErrOperationTimeout = errors.New("search operation timed out")

type Config struct {
	// OverallTimeout - бюджет на весь поиск, включая все ретраи.
	// Должен быть больше таймаута одной попытки транспорта.
	OverallTimeout     time.Duration
	MinCombinedResults int
	MaxCombinedResults int
	Topics             []search.TopicConfig
}

type Deps struct {
	Search  search.Client
	Queue   *scheduler.Queue
	Retrier *retry.Executor
	Tracker *health.Tracker
	Cache   *memory.Cache
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Config  Config
}

// Orchestrator проводит поисковый запрос через очередь, ретраи и health tracking
type Orchestrator struct {
	search  search.Client
	queue   *scheduler.Queue
	retrier *retry.Executor
	tracker *health.Tracker
	cache   *memory.Cache
	logger  *zap.Logger
	metrics *metrics.Metrics
	config  Config
}

func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.Config.OverallTimeout == 0 {
		deps.Config.OverallTimeout = 60 * time.Second
	}
	if deps.Config.MinCombinedResults == 0 {
		deps.Config.MinCombinedResults = 8
	}
	if len(deps.Config.Topics) == 0 {
		deps.Config.Topics = search.DefaultTopicConfigs()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Orchestrator{
		search:  deps.Search,
		queue:   deps.Queue,
		retrier: deps.Retrier,
		tracker: deps.Tracker,
		cache:   deps.Cache,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		config:  deps.Config,
	}
}

// Search выполняет один поиск: очередь -> ретраи -> транспорт.
// Исход всегда записывается в health tracker.
func (o *Orchestrator) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, search.ErrEmptyQuery
	}

	if o.metrics != nil {
		o.metrics.IncRequestsInFlight()
		defer o.metrics.DecRequestsInFlight()
	}

	key := cacheKey(req)
	if o.cache != nil {
		if cached, ok := o.cache.Get(key); ok {
			if o.metrics != nil {
				o.metrics.RecordCacheHit()
			}
			return cached, nil
		}
		if o.metrics != nil {
			o.metrics.RecordCacheMiss()
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, o.config.OverallTimeout)
	defer cancel()

	start := time.Now()

	var resp *search.Response
	done := make(chan error, 1)

	_, err := o.queue.Submit(opCtx, "tavily-search", func(ctx context.Context) error {
		err := o.retrier.Do(ctx, "tavily-search", func(ctx context.Context) error {
			r, searchErr := o.search.Search(ctx, req)
			if searchErr != nil {
				return searchErr
			}
			resp = r
			return nil
		})
		done <- err
		return err
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			o.recordFailure(start, "timeout")
			return nil, fmt.Errorf("%w: admission wait exceeded budget", ErrOperationTimeout)
		}
		return nil, err
	}

	select {
	case <-opCtx.Done():
		// отмена opCtx каскадом останавливает и саму операцию
		if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			o.recordFailure(start, "timeout")
			return nil, ErrOperationTimeout
		}
		return nil, opCtx.Err()

	case opErr := <-done:
		if opErr != nil {
			// операция могла сама догадаться о дедлайне раньше нашего select
			if errors.Is(opErr, context.DeadlineExceeded) && opCtx.Err() != nil {
				o.recordFailure(start, "timeout")
				return nil, ErrOperationTimeout
			}
			o.recordFailure(start, "error")
			o.logger.Warn("search failed",
				zap.String("query", req.Query),
				zap.Error(opErr),
			)
			return nil, opErr
		}
	}

	o.tracker.RecordSuccess()
	if o.metrics != nil {
		o.metrics.RecordSearchRequest("success", time.Since(start))
	}
	if o.cache != nil {
		o.cache.Set(key, resp)
	}

	o.logger.Debug("search completed",
		zap.String("query", req.Query),
		zap.Int("results", len(resp.Results)),
	)

	return resp, nil
}

// ComprehensiveSearch разворачивает запрос в параллельные поиски по тематикам.
// Упавшая тематика отбрасывается и не мешает остальным.
func (o *Orchestrator) ComprehensiveSearch(ctx context.Context, query string) (*search.CombinedResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, search.ErrEmptyQuery
	}

	topics := o.config.Topics
	payloads := make([]*search.Response, len(topics))

	g, gctx := errgroup.WithContext(ctx)
	for i, tc := range topics {
		g.Go(func() error {
			resp, err := o.Search(gctx, tc.Request(query))
			if err != nil {
				o.logger.Warn("topic variant failed",
					zap.String("topic", tc.Label),
					zap.Error(err),
				)
				return nil // вариант выбывает, соседей не трогаем
			}
			payloads[i] = resp
			return nil
		})
	}
	g.Wait()

	combined, err := Combine(payloads, o.config.MinCombinedResults, o.config.MaxCombinedResults)
	if err != nil {
		return nil, err
	}

	if o.metrics != nil {
		o.metrics.ObserveCombinedResults(len(combined.Results))
	}
	if o.tracker != nil && o.metrics != nil {
		o.metrics.SetHealthState(float64(o.tracker.State()))
	}

	o.logger.Info("comprehensive search completed",
		zap.String("query", query),
		zap.Int("topics", len(topics)),
		zap.Int("unique_results", len(combined.Results)),
	)

	return combined, nil
}

func (o *Orchestrator) recordFailure(start time.Time, status string) {
	o.tracker.RecordError()
	if o.metrics != nil {
		o.metrics.RecordSearchRequest(status, time.Since(start))
		o.metrics.HealthErrors.Inc()
		o.metrics.SetHealthState(float64(o.tracker.State()))
	}
}

func cacheKey(req search.Request) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(req.Query)), " ")
	data := fmt.Sprintf("%s|%s|%s|%d|%d|%t",
		normalized, req.SearchDepth, req.Topic, req.Days, req.MaxResults, req.IncludeAnswer)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("search:%x", hash[:8])
}
