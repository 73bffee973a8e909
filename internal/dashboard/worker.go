package dashboard

import (
	"context"

	"go.uber.org/zap"

	"schooladmin/internal/live"
	"schooladmin/internal/queue"
	"schooladmin/internal/school"
)

// Relevant reports whether a change can alter the summary.
func Relevant(c live.Change) bool {
	return c.Collection == school.Students || c.Collection == school.Teachers
}

// EnqueueHook queues a refresh for every relevant change.
func EnqueueHook(q queue.Queue, log *zap.Logger) live.Hook {
	return func(ctx context.Context, c live.Change) {
		if !Relevant(c) {
			return
		}
		msg, err := queue.NewMessage(queue.TypeChange, c)
		if err != nil {
			log.Error("encode change", zap.Error(err))
			return
		}
		if err := q.Publish(ctx, msg); err != nil {
			log.Warn("queue publish failed", zap.String("collection", c.Collection), zap.Error(err))
		}
	}
}

// Run consumes queued changes and refreshes the cached summary until ctx is done.
func Run(ctx context.Context, q queue.Queue, d *Service, log *zap.Logger) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	for msg := range messages {
		if msg.Type != queue.TypeChange {
			continue
		}
		var c live.Change
		if err := msg.Decode(&c); err != nil {
			log.Warn("malformed change message", zap.Error(err))
			continue
		}
		if !Relevant(c) {
			continue
		}
		if _, err := d.Refresh(ctx); err != nil {
			log.Error("dashboard refresh failed", zap.String("collection", c.Collection), zap.Error(err))
			continue
		}
		log.Debug("dashboard refreshed", zap.String("collection", c.Collection), zap.String("op", c.Op))
	}
	return nil
}
