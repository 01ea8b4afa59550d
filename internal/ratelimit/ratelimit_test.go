package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestTokenBucket_HasCapacity(t *testing.T) {
	bucket := New(Config{
		Capacity:   3,
		RefillRate: 1,
		MinTokens:  1,
	})

	if !bucket.HasCapacity() {
		t.Error("Fresh bucket should have capacity")
	}
}

func TestTokenBucket_AcquireDecrements(t *testing.T) {
	bucket := New(Config{
		Capacity:   5,
		RefillRate: 0.001, // практически без пополнения в рамках теста
		MinTokens:  2,
	})

	before := bucket.Available()

	if err := bucket.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	after := bucket.Available()
	spent := before - after

	// небольшой допуск на пополнение между замерами
	if spent < 1.9 || spent > 2.1 {
		t.Errorf("Acquire() spent %.3f tokens, want ~2", spent)
	}
}

func TestTokenBucket_RefillRestoresCapacity(t *testing.T) {
	bucket := New(Config{
		Capacity:     2,
		RefillRate:   20, // capacity/rate = 100ms до полного восстановления
		MinTokens:    1,
		PollInterval: 10 * time.Millisecond,
	})

	// опустошаем
	for bucket.HasCapacity() {
		if !bucket.tryAcquire() {
			break
		}
	}

	if bucket.HasCapacity() {
		t.Fatal("Bucket should be empty after draining")
	}

	time.Sleep(150 * time.Millisecond)

	if !bucket.HasCapacity() {
		t.Error("Bucket should refill after capacity/rate seconds")
	}
}

func TestTokenBucket_NeverExceedsCapacity(t *testing.T) {
	bucket := New(Config{
		Capacity:   3,
		RefillRate: 1000,
		MinTokens:  1,
	})

	time.Sleep(20 * time.Millisecond)

	if got := bucket.Available(); got > 3 {
		t.Errorf("Available() = %.2f, must not exceed capacity 3", got)
	}
}

func TestTokenBucket_AcquireRespectsContext(t *testing.T) {
	bucket := New(Config{
		Capacity:     1,
		RefillRate:   0.001,
		MinTokens:    1,
		PollInterval: 10 * time.Millisecond,
	})

	if err := bucket.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := bucket.Acquire(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("Acquire() on empty bucket = %v, want context.DeadlineExceeded", err)
	}
}

func TestTokenBucket_ConcurrentAcquire(t *testing.T) {
	bucket := New(Config{
		Capacity:     4,
		RefillRate:   0.001,
		MinTokens:    1,
		PollInterval: 5 * time.Millisecond,
	})

	var wg sync.WaitGroup
	acquired := make(chan struct{}, 4)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bucket.Acquire(context.Background()); err == nil {
				acquired <- struct{}{}
			}
		}()
	}

	wg.Wait()
	close(acquired)

	count := 0
	for range acquired {
		count++
	}
	if count != 4 {
		t.Errorf("acquired = %d, want 4", count)
	}

	if got := bucket.Available(); got >= 1 {
		t.Errorf("Available() = %.2f after draining, want < 1", got)
	}
}
