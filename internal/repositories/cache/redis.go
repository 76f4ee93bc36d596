package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
	"github.com/vextrus/ledger-core/internal/platform/logging"
)

const (
	eventChannelPrefix = "ledger.events."
	aggregateKeyPrefix = "ledger.aggregate."
)

// EventChannel names the pub/sub channel carrying one aggregate type's
// events.
func EventChannel(aggregateType string) string {
	return eventChannelPrefix + aggregateType
}

// RedisEventPublisher fans committed events out over Redis pub/sub, one
// channel per aggregate type.
type RedisEventPublisher struct {
	client *redis.Client
}

// NewRedisEventPublisher creates a publisher over the given client.
func NewRedisEventPublisher(client *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{client: client}
}

var _ portsrepo.EventPublisher = (*RedisEventPublisher)(nil)

// Publish serializes the envelope and publishes it on the aggregate type's
// channel.
func (p *RedisEventPublisher) Publish(ctx context.Context, envelope domain.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshaling envelope %s: %w", envelope.EventID, err)
	}
	if err := p.client.Publish(ctx, EventChannel(envelope.AggregateType), payload).Err(); err != nil {
		return fmt.Errorf("publishing %s: %w", envelope.EventType, err)
	}
	return nil
}

// RedisCacheInvalidator drops cached aggregate projections when their stream
// advances.
type RedisCacheInvalidator struct {
	client *redis.Client
}

// NewRedisCacheInvalidator creates an invalidator over the given client.
func NewRedisCacheInvalidator(client *redis.Client) *RedisCacheInvalidator {
	return &RedisCacheInvalidator{client: client}
}

var _ portsrepo.CacheInvalidator = (*RedisCacheInvalidator)(nil)

// Invalidate deletes the cached entry for the key.
func (c *RedisCacheInvalidator) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, aggregateKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("invalidating %s: %w", key, err)
	}
	return nil
}

// Subscriber delivers envelopes published on one aggregate type's channel to
// a handler. It is the transport side of cross-aggregate coordination.
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber creates a subscriber over the given client.
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Run subscribes to the aggregate type's channel and feeds each decoded
// envelope to handle until the context is canceled. Pub/sub is at-most-once,
// so a failing handler only costs that one delivery: the error is logged and
// the loop keeps consuming.
func (s *Subscriber) Run(ctx context.Context, aggregateType string, handle func(ctx context.Context, envelope domain.Envelope) error) error {
	logger := logging.FromCtx(ctx)
	sub := s.client.Subscribe(ctx, EventChannel(aggregateType))
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var envelope domain.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				logger.Warn("dropping undecodable event message",
					slog.String("channel", EventChannel(aggregateType)),
					slog.String("error", err.Error()))
				continue
			}
			if err := handle(ctx, envelope); err != nil {
				logger.Error("event handler failed",
					slog.String("event_id", envelope.EventID),
					slog.String("event_type", envelope.EventType),
					slog.String("error", err.Error()))
			}
		}
	}
}
