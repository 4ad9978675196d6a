package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisBus fans events out across server instances. Each instance
// publishes mutations to one Redis channel and forwards everything it
// receives into its local hub, so every connected admin session sees
// every event regardless of which instance handled the write.
type RedisBus struct {
	logger  zerolog.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisBus connects to Redis and verifies the connection.
func NewRedisBus(addr, channel string, logger zerolog.Logger) (*RedisBus, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if channel == "" {
		channel = "realtime"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisBus{
		logger:  logger.With().Str("component", "realtime-bus").Logger(),
		rdb:     rdb,
		channel: channel,
	}, nil
}

// Publish implements Publisher by pushing the event through Redis. The
// local hub receives it back via the forwarder, same as remote instances.
func (b *RedisBus) Publish(event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to marshal event for bus")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		b.logger.Error().Err(err).Str("channel", event.Channel).Msg("Failed to publish event to bus")
	}
}

// StartForwarder subscribes to the bus and hands every event to onEvent
// until the context is cancelled.
func (b *RedisBus) StartForwarder(ctx context.Context, onEvent func(Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// Ensures the subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					b.logger.Warn().Err(err).Msg("Bad bus payload")
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}

// Close shuts the Redis connection down.
func (b *RedisBus) Close() error {
	return b.rdb.Close()
}
