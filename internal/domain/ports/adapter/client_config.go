package adapter

import (
	"context"

	"subscribe-payflow/internal/domain/model"
)

// ClientConfigManager resolves per-publication client configuration.
type ClientConfigManager interface {
	GetClientConfig(ctx context.Context) (model.ClientConfig, error)
	ShouldForceLangInIframes() bool
	GetLanguage() string
}
