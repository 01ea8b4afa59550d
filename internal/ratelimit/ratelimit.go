package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket - rate limiter с непрерывным пополнением.
// Каждый исходящий запрос к API забирает minTokens токенов.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // токенов в секунду
	minTokens  float64
	lastRefill time.Time

	pollInterval time.Duration
}

type Config struct {
	Capacity     float64
	RefillRate   float64
	MinTokens    float64
	PollInterval time.Duration
}

func New(cfg Config) *TokenBucket {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10
	}
	if cfg.RefillRate <= 0 {
		cfg.RefillRate = 1
	}
	if cfg.MinTokens <= 0 {
		cfg.MinTokens = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	return &TokenBucket{
		capacity:     cfg.Capacity,
		tokens:       cfg.Capacity, // стартуем с полным ведром
		refillRate:   cfg.RefillRate,
		minTokens:    cfg.MinTokens,
		lastRefill:   time.Now(),
		pollInterval: cfg.PollInterval,
	}
}

// HasCapacity пополняет ведро по прошедшему времени и говорит,
// хватает ли токенов на один запрос
func (b *TokenBucket) HasCapacity() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return b.tokens >= b.minTokens
}

// Acquire блокируется, пока не появятся токены, потом списывает их.
// Честность между ожидающими не гарантируется - кто первый опросил, тот и взял.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	for {
		if b.tryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.pollInterval):
		}
	}
}

func (b *TokenBucket) tryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if b.tokens < b.minTokens {
		return false
	}
	b.tokens -= b.minTokens
	return true
}

// Available - текущий запас токенов (после пополнения)
func (b *TokenBucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return b.tokens
}

// refill вызывается под мьютексом
func (b *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.lastRefill = now

	b.tokens += elapsed * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
}
