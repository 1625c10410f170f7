package realm

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"realmgov/internal/governance/models"
	"realmgov/internal/governance/ports"
	"realmgov/pkg/domain"
	"realmgov/pkg/platform/sentinel"
)

type cachedMint struct {
	cfg      *models.MintConfig // nil caches an unknown mint
	storedAt time.Time
}

// CachedRegistry keeps lookups from next for ttl. Concurrent misses for the
// same mint share one upstream call.
type CachedRegistry struct {
	next  ports.RealmRegistry
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[mintKey]cachedMint
}

func NewCached(next ports.RealmRegistry, ttl time.Duration) *CachedRegistry {
	return &CachedRegistry{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[mintKey]cachedMint),
	}
}

func (c *CachedRegistry) MintConfig(ctx context.Context, realm domain.RealmID, mint domain.MintID) (*models.MintConfig, error) {
	key := mintKey{realm: realm, mint: mint}
	if cfg, ok := c.lookup(key); ok {
		if cfg == nil {
			return nil, sentinel.ErrNotFound
		}
		out := *cfg
		return &out, nil
	}

	v, err, _ := c.group.Do(realm.String()+"/"+mint.String(), func() (any, error) {
		cfg, err := c.next.MintConfig(ctx, realm, mint)
		switch {
		case err == nil:
			c.store(key, cfg)
		case errors.Is(err, sentinel.ErrNotFound):
			c.store(key, nil)
		}
		return cfg, err
	})
	if err != nil {
		return nil, err
	}
	out := *v.(*models.MintConfig)
	return &out, nil
}

// Invalidate drops every cached entry.
func (c *CachedRegistry) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[mintKey]cachedMint)
}

func (c *CachedRegistry) lookup(key mintKey) (*models.MintConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.cfg, true
}

func (c *CachedRegistry) store(key mintKey, cfg *models.MintConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedMint{cfg: cfg, storedAt: c.now()}
}
