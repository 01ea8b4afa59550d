package memory

import (
	"sync"
	"time"

	"github.com/kitbuilder587/research-mcp/internal/search"
)

type item struct {
	value     *search.Response
	expiresAt time.Time
}

// Cache - in-memory кеш поисковых ответов с TTL.
// Живет только в памяти процесса, никакой персистентности.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]item
	ttl      time.Duration
	stopChan chan struct{}
	stopped  bool
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}

	c := &Cache{
		items:    make(map[string]item),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *Cache) Get(key string) (*search.Response, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || time.Now().After(it.expiresAt) {
		return nil, false
	}
	return it.value, true
}

func (c *Cache) Set(key string, value *search.Response) {
	c.mu.Lock()
	c.items[key] = item{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *Cache) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.stopChan)
	}
	c.mu.Unlock()
}

// cleanup чистит просроченные записи раз в 5 минут
func (c *Cache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, k)
		}
	}
}
