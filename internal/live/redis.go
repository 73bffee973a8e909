package live

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"schooladmin/internal/metrics"
)

// Redis relays changes over Redis pub/sub so every API instance can push to
// its own subscribers.
type Redis struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

// NewRedis builds a broker publishing on "{prefix}{collection}" channels.
func NewRedis(client *redis.Client, prefix string, log *zap.Logger) *Redis {
	if prefix == "" {
		prefix = "school:changes:"
	}
	return &Redis{client: client, prefix: prefix, log: log}
}

func (r *Redis) Publish(ctx context.Context, c Change) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.prefix+c.Collection, raw).Err()
}

func (r *Redis) Subscribe(ctx context.Context, collection string) (<-chan Change, error) {
	sub := r.client.Subscribe(ctx, r.prefix+collection)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	metrics.LiveSubscribers.Inc()

	out := make(chan Change)
	go func() {
		defer close(out)
		defer metrics.LiveSubscribers.Dec()
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var c Change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					r.log.Warn("dropping malformed change", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
