package live

import (
	"context"
	"time"

	"go.uber.org/zap"

	"schooladmin/internal/docstore"
)

// Hook receives every change after it has been published.
type Hook func(ctx context.Context, c Change)

// Store decorates a record store so each successful write is published.
// Publish failures are logged and never fail the write.
type Store struct {
	docstore.Store
	broker Broker
	log    *zap.Logger
	hooks  []Hook
	now    func() time.Time
}

// NewStore wraps inner.
func NewStore(inner docstore.Store, broker Broker, log *zap.Logger, hooks ...Hook) *Store {
	return &Store{Store: inner, broker: broker, log: log, hooks: hooks, now: time.Now}
}

func (s *Store) Create(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	id, err := s.Store.Create(ctx, collection, doc)
	if err == nil {
		s.emit(ctx, collection, id, OpCreate)
	}
	return id, err
}

func (s *Store) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	err := s.Store.Set(ctx, collection, id, doc)
	if err == nil {
		s.emit(ctx, collection, id, OpSet)
	}
	return err
}

func (s *Store) Update(ctx context.Context, collection, id string, fields ...docstore.Field) error {
	err := s.Store.Update(ctx, collection, id, fields...)
	if err == nil {
		s.emit(ctx, collection, id, OpUpdate)
	}
	return err
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	err := s.Store.Delete(ctx, collection, id)
	if err == nil {
		s.emit(ctx, collection, id, OpDelete)
	}
	return err
}

func (s *Store) emit(ctx context.Context, collection, id, op string) {
	c := Change{Collection: collection, ID: id, Op: op, At: s.now().UTC()}
	if err := s.broker.Publish(ctx, c); err != nil {
		s.log.Warn("publish change failed",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
	}
	for _, h := range s.hooks {
		h(ctx, c)
	}
}
