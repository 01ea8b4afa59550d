package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

var ErrExhausted = errors.New("retry attempts exhausted")

// Executor повторяет операцию с экспоненциальным backoff.
// Каждый неудачный заход уходит в лог и в onFailure - health tracker
// реагирует на это отдельно от функционального результата.
type Executor struct {
	maxAttempts  int
	baseBackoff  time.Duration
	growthFactor float64
	logger       *zap.Logger
	onFailure    func(attempt int, err error)
}

type Config struct {
	MaxAttempts  int
	BaseBackoff  time.Duration
	GrowthFactor float64
}

func New(cfg Config, logger *zap.Logger) *Executor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.GrowthFactor < 1 {
		cfg.GrowthFactor = 2.0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{
		maxAttempts:  cfg.MaxAttempts,
		baseBackoff:  cfg.BaseBackoff,
		growthFactor: cfg.GrowthFactor,
		logger:       logger,
	}
}

// WithOnFailure устанавливает колбек на каждую неудачную попытку
func (e *Executor) WithOnFailure(fn func(attempt int, err error)) *Executor {
	e.onFailure = fn
	return e
}

// Do выполняет op до первого успеха. После maxAttempts неудач возвращает
// ErrExhausted, оборачивающий последнюю причину (errors.Is находит обе).
func (e *Executor) Do(ctx context.Context, name string, op func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.backoff(attempt - 1)):
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		e.logger.Warn("operation attempt failed",
			zap.String("operation", name),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", e.maxAttempts),
			zap.Error(lastErr),
		)
		if e.onFailure != nil {
			e.onFailure(attempt+1, lastErr)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, e.maxAttempts, lastErr)
}

func (e *Executor) backoff(attempt int) time.Duration {
	return time.Duration(float64(e.baseBackoff) * math.Pow(e.growthFactor, float64(attempt)))
}
