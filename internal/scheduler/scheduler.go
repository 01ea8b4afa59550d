package scheduler

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/kitbuilder587/research-mcp/internal/metrics"
	"github.com/kitbuilder587/research-mcp/internal/ratelimit"
)

var (
	ErrShuttingDown = errors.New("scheduler is shutting down")
	ErrQueueFull    = errors.New("too many active operations")
)

// Queue пропускает операции через token bucket, следит за активными
// и умеет разом отменить все при остановке.
type Queue struct {
	bucket  *ratelimit.TokenBucket
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu            sync.Mutex
	active        map[uint64]context.CancelFunc
	nextID        uint64
	maxConcurrent int
	closed        bool

	wg sync.WaitGroup
}

type Config struct {
	// MaxConcurrent ограничивает активное множество сверх пропускной
	// способности ведра; 0 = без ограничения. Лишние заявки отклоняются.
	MaxConcurrent int
}

func New(cfg Config, bucket *ratelimit.TokenBucket, logger *zap.Logger, m *metrics.Metrics) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Queue{
		bucket:        bucket,
		logger:        logger,
		metrics:       m,
		active:        make(map[uint64]context.CancelFunc),
		maxConcurrent: cfg.MaxConcurrent,
	}
}

// Submit ждет токены (без таймаута на этом уровне), запускает op в горутине
// и возвращает ее handle. Ошибка op логируется при завершении.
func (q *Queue) Submit(ctx context.Context, name string, op func(context.Context) error) (uint64, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0, ErrShuttingDown
	}
	q.mu.Unlock()

	if !q.bucket.HasCapacity() && q.metrics != nil {
		q.metrics.RecordRateLimitWait()
	}
	if err := q.bucket.Acquire(ctx); err != nil {
		return 0, err
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0, ErrShuttingDown
	}
	if q.maxConcurrent > 0 && len(q.active) >= q.maxConcurrent {
		q.mu.Unlock()
		return 0, ErrQueueFull
	}

	q.nextID++
	id := q.nextID
	opCtx, cancel := context.WithCancel(ctx)
	q.active[id] = cancel
	q.wg.Add(1)
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.IncActiveOperations()
	}

	go func() {
		defer q.wg.Done()
		defer q.remove(id)

		if err := op(opCtx); err != nil && !errors.Is(err, context.Canceled) {
			q.logger.Warn("scheduled operation failed",
				zap.String("operation", name),
				zap.Uint64("id", id),
				zap.Error(err),
			)
		}
	}()

	return id, nil
}

// Active - размер активного множества
func (q *Queue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.active)
}

// Shutdown отменяет все активные операции и ждет, пока они завершатся.
// Повторный вызов безопасен.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.wg.Wait()
		return
	}
	q.closed = true

	count := len(q.active)
	for _, cancel := range q.active {
		cancel()
	}
	q.mu.Unlock()

	if count > 0 {
		q.logger.Info("cancelling active operations", zap.Int("count", count))
	}

	q.wg.Wait()
}

func (q *Queue) remove(id uint64) {
	q.mu.Lock()
	cancel, ok := q.active[id]
	delete(q.active, id)
	q.mu.Unlock()

	if ok {
		cancel() // освобождаем ресурсы контекста
		if q.metrics != nil {
			q.metrics.DecActiveOperations()
		}
	}
}
