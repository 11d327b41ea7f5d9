package clientconfig

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"subscribe-payflow/internal/config"
	"subscribe-payflow/internal/domain/model"
	"subscribe-payflow/internal/domain/ports/adapter"
	"subscribe-payflow/internal/infra/logging"
	"subscribe-payflow/internal/infra/metrics"
)

// Cache is the subset of the redis client the manager needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

var _ adapter.ClientConfigManager = (*Manager)(nil)

// Manager resolves the client configuration of one publication from the
// configured defaults and per-publication overrides, caching the result.
type Manager struct {
	publicationID string
	section       config.ClientConfigSection
	cache         Cache
	prefix        string
	log           *zerolog.Logger
}

// NewManager builds a manager. cache may be nil.
func NewManager(publicationID string, section config.ClientConfigSection, cache Cache, prefix string, logger *zerolog.Logger) *Manager {
	return &Manager{
		publicationID: publicationID,
		section:       section,
		cache:         cache,
		prefix:        prefix,
		log:           logger,
	}
}

func (m *Manager) GetClientConfig(ctx context.Context) (model.ClientConfig, error) {
	if m.cache == nil {
		return m.resolve(), nil
	}
	key := m.prefix + ":client_config:" + m.publicationID
	if val, err := m.cache.Get(ctx, key); err == nil {
		var cc model.ClientConfig
		if json.Unmarshal([]byte(val), &cc) == nil {
			metrics.IncCacheRequest("client_config", "hit")
			return cc, nil
		}
	}
	metrics.IncCacheRequest("client_config", "miss")

	cc := m.resolve()
	if b, err := json.Marshal(cc); err == nil {
		if err := m.cache.Set(ctx, key, b, m.section.CacheTTL); err != nil {
			logging.With(ctx, m.log).Warn().Err(err).Msg("client config cache write failed")
		}
	}
	return cc, nil
}

func (m *Manager) ShouldForceLangInIframes() bool { return m.section.ForceLang }

func (m *Manager) GetLanguage() string { return m.section.Language }

func (m *Manager) resolve() model.ClientConfig {
	if cc, ok := m.section.PerPublication[m.publicationID]; ok {
		return cc
	}
	return m.section.Defaults
}
