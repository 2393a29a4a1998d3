package prefetch

import (
	"strings"
	"sync"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	gocache "github.com/patrickmn/go-cache"
)

const DefaultTTL = 300 * time.Second

// Entry is a question computed ahead of time for a (session, dimension) pair
type Entry struct {
	Payload   *entity.QuestionPayload
	CreatedAt time.Time
}

// Cache holds prefetched questions. Hits are consumed; expired entries are evicted on lookup.
// Every pair carries a generation bumped by Invalidate, so a computation started
// before an invalidation cannot store its result afterwards.
type Cache struct {
	mu    sync.Mutex
	items *gocache.Cache
	ttl   time.Duration
	gens  map[string]uint64
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	// no janitor goroutine, expiry is handled on access
	return &Cache{
		items: gocache.New(ttl, 0),
		ttl:   ttl,
		gens:  make(map[string]uint64),
	}
}

func key(sessionID, dim string) string {
	return sessionID + "/" + dim
}

// Put stores a payload, replacing any previous entry for the pair
func (c *Cache) Put(sessionID, dim string, payload *entity.QuestionPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items.DeleteExpired()
	c.items.Set(key(sessionID, dim), Entry{Payload: payload, CreatedAt: time.Now()}, c.ttl)
}

// Begin returns the current generation of the pair. Pass it to PutIfCurrent once the payload is ready.
func (c *Cache) Begin(sessionID, dim string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(sessionID, dim)
	gen, ok := c.gens[k]
	if !ok {
		c.gens[k] = 0
	}
	return gen
}

// PutIfCurrent stores the payload only if the pair was not invalidated since Begin returned gen
func (c *Cache) PutIfCurrent(sessionID, dim string, gen uint64, payload *entity.QuestionPayload) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(sessionID, dim)
	if c.gens[k] != gen {
		return false
	}
	c.items.DeleteExpired()
	c.items.Set(k, Entry{Payload: payload, CreatedAt: time.Now()}, c.ttl)
	return true
}

// Get returns and removes the entry for the pair
func (c *Cache) Get(sessionID, dim string) (*entity.QuestionPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(sessionID, dim)
	v, ok := c.items.Get(k)
	c.items.Delete(k)
	if !ok {
		return nil, false
	}
	return v.(Entry).Payload, true
}

// HasValid reports whether an unexpired entry exists without consuming it
func (c *Cache) HasValid(sessionID, dim string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(sessionID, dim)
	if _, ok := c.items.Get(k); ok {
		return true
	}
	c.items.Delete(k)
	return false
}

// Invalidate drops the entry for the pair, or every entry of the session when dim is empty
func (c *Cache) Invalidate(sessionID, dim string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dim != "" {
		k := key(sessionID, dim)
		c.items.Delete(k)
		c.gens[k]++
		return
	}

	prefix := sessionID + "/"
	for k := range c.gens {
		if strings.HasPrefix(k, prefix) {
			c.gens[k]++
		}
	}
	for k := range c.items.Items() {
		if strings.HasPrefix(k, prefix) {
			c.items.Delete(k)
		}
	}
	c.items.DeleteExpired()
}

// Len counts unexpired entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items.Items())
}
