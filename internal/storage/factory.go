package storage

import (
	"fmt"
	"log/slog"
)

// NewStorage creates a storage backend based on the URI scheme:
//   - memory:// -> MemoryStorage
//   - sqlite://<path> -> GormStorage on SQLite
//   - postgres:// -> GormStorage on PostgreSQL
func NewStorage(uri *StorageURI, logger *slog.Logger) (Store, error) {
	switch uri.Scheme {
	case "memory":
		return NewMemoryStorage(logger), nil

	case "sqlite":
		return NewSQLiteStorage(uri.Path, logger)

	case "postgres":
		return NewPostgresStorage(uri.DSN(), logger)

	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", uri.Scheme)
	}
}
