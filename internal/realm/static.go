// Package realm resolves realm governing mint configuration for the
// governance service.
package realm

import (
	"context"
	"fmt"
	"sync"

	"realmgov/internal/governance/models"
	"realmgov/internal/platform/config"
	"realmgov/pkg/domain"
	"realmgov/pkg/platform/sentinel"
)

type mintKey struct {
	realm domain.RealmID
	mint  domain.MintID
}

// StaticRegistry serves mint configuration loaded at startup, typically from
// the registry section of the config file.
type StaticRegistry struct {
	mu    sync.RWMutex
	mints map[mintKey]models.MintConfig
}

func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{mints: make(map[mintKey]models.MintConfig)}
}

// FromConfig parses the configured realms. A realm may declare at most one
// community and one council mint.
func FromConfig(entries []config.RealmEntry) (*StaticRegistry, error) {
	r := NewStaticRegistry()
	for _, entry := range entries {
		cfgs, err := ParseEntry(entry)
		if err != nil {
			return nil, err
		}
		for _, cfg := range cfgs {
			r.Put(cfg)
		}
	}
	return r, nil
}

// ParseEntry converts one configured realm into mint configurations.
func ParseEntry(entry config.RealmEntry) ([]models.MintConfig, error) {
	realmID, err := domain.ParseRealmID(entry.Realm)
	if err != nil {
		return nil, fmt.Errorf("registry realm %q: %w", entry.Realm, err)
	}
	seen := make(map[models.MintRole]bool, 2)
	out := make([]models.MintConfig, 0, len(entry.Mints))
	for _, m := range entry.Mints {
		mint, err := domain.ParseMintID(m.Mint)
		if err != nil {
			return nil, fmt.Errorf("registry realm %s mint %q: %w", entry.Realm, m.Mint, err)
		}
		role, err := models.ParseMintRole(m.Role)
		if err != nil {
			return nil, fmt.Errorf("registry realm %s mint %s: %w", entry.Realm, m.Mint, err)
		}
		if seen[role] {
			return nil, fmt.Errorf("registry realm %s declares more than one %s mint", entry.Realm, role)
		}
		seen[role] = true
		tokenType, err := models.ParseTokenType(m.TokenType)
		if err != nil {
			return nil, fmt.Errorf("registry realm %s mint %s: %w", entry.Realm, m.Mint, err)
		}
		out = append(out, models.MintConfig{Realm: realmID, Mint: mint, Role: role, TokenType: tokenType})
	}
	return out, nil
}

// Put adds or replaces a mint configuration.
func (r *StaticRegistry) Put(cfg models.MintConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mints[mintKey{realm: cfg.Realm, mint: cfg.Mint}] = cfg
}

func (r *StaticRegistry) MintConfig(_ context.Context, realm domain.RealmID, mint domain.MintID) (*models.MintConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.mints[mintKey{realm: realm, mint: mint}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &cfg, nil
}

// All returns every configured mint.
func (r *StaticRegistry) All() []models.MintConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.MintConfig, 0, len(r.mints))
	for _, cfg := range r.mints {
		out = append(out, cfg)
	}
	return out
}
