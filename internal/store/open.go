package store

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/Ftopsis/internal/config"
)

// Open builds the store selected by cfg.Driver and makes sure its schema exists.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.Path)
	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
