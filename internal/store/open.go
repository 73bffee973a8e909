package store

import (
	"context"
	"fmt"

	"schooladmin/internal/config"
	"schooladmin/internal/docstore"
)

// Documents is an opened record store backend.
type Documents struct {
	docstore.Store
	Backend string
	healthy func(context.Context) bool
	close   func() error
}

// Healthy reports whether the backend is reachable.
func (d *Documents) Healthy(ctx context.Context) bool { return d.healthy(ctx) }

// Close releases the backend connection.
func (d *Documents) Close() error { return d.close() }

// OpenDocuments connects the record store selected by STORE_BACKEND.
func OpenDocuments(ctx context.Context, cfg config.App) (*Documents, error) {
	switch cfg.StoreBackend {
	case "memory":
		return &Documents{
			Store:   docstore.NewMemory(),
			Backend: cfg.StoreBackend,
			healthy: func(context.Context) bool { return true },
			close:   func() error { return nil },
		}, nil
	case "postgres", "sqlite":
		var (
			db  *DB
			err error
		)
		if cfg.StoreBackend == "postgres" {
			db, err = NewPostgres(ctx, cfg.DatabaseURL)
		} else {
			db, err = NewSQLite(ctx, cfg.SQLitePath)
		}
		if err != nil {
			return nil, err
		}
		var docs *docstore.SQL
		if cfg.StoreBackend == "postgres" {
			docs, err = docstore.NewPostgres(ctx, db.Client)
		} else {
			docs, err = docstore.NewSQLite(ctx, db.Client)
		}
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate %s: %w", cfg.StoreBackend, err)
		}
		return &Documents{Store: docs, Backend: cfg.StoreBackend, healthy: db.Healthy, close: db.Close}, nil
	case "mongo":
		m, err := NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &Documents{Store: docstore.NewMongo(m.Database), Backend: cfg.StoreBackend, healthy: m.Healthy, close: m.Close}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
