package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/port"
)

const (
	idempotencyKeyPrefix  = "aspas:request:"
	defaultIdempotencyTTL = 24 * time.Hour
	defaultReorderChannel = "aspas:reorders"
)

// RedisAdapter guards sale requests against resubmission and publishes
// reorder events for listeners outside the process.
type RedisAdapter struct {
	client  *redis.Client
	ttl     time.Duration
	channel string
}

var (
	_ port.RequestGuard    = (*RedisAdapter)(nil)
	_ port.ReorderNotifier = (*RedisAdapter)(nil)
)

func NewRedisAdapter(client *redis.Client, ttl time.Duration, channel string) *RedisAdapter {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	if channel == "" {
		channel = defaultReorderChannel
	}
	return &RedisAdapter{client: client, ttl: ttl, channel: channel}
}

func (r *RedisAdapter) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, r.ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}

type reorderMessage struct {
	PartID   string    `json:"part_id"`
	PartName string    `json:"part_name"`
	OldStock int       `json:"old_stock"`
	NewStock int       `json:"new_stock"`
	At       time.Time `json:"at"`
}

func (r *RedisAdapter) NotifyReorder(ctx context.Context, event domain.ReorderEvent) error {
	payload, err := json.Marshal(reorderMessage{
		PartID:   event.PartID,
		PartName: event.PartName,
		OldStock: event.OldStock,
		NewStock: event.NewStock,
		At:       event.At,
	})
	if err != nil {
		return fmt.Errorf("encode reorder event: %w", err)
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// SubscribeReorders streams published reorder events until ctx is done.
func (r *RedisAdapter) SubscribeReorders(ctx context.Context) (<-chan domain.ReorderEvent, error) {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	out := make(chan domain.ReorderEvent)
	go func() {
		defer close(out)
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
				var m reorderMessage
				if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
					continue
				}
				select {
				case out <- domain.ReorderEvent(m):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
