package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
}

// Open builds the backend named in cfg. An empty backend means file.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case "", BackendFile:
		return OpenFile(cfg.Path)
	case BackendPostgres:
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, fmt.Errorf("postgres backend requires store.dsn")
		}
		return NewPostgres(ctx, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}
