// Package feed implements the change feed: a coarse notice that something in
// one of the three watched streams changed. Consumers react by refetching the
// whole stream rather than applying incremental updates — over-fetching is the
// deliberate trade against missed updates.
package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Logical streams the client watches.
const (
	StreamSales      = "sales"
	StreamCategories = "categories"
	StreamBalances   = "balances"
)

const channelPrefix = "feed:"

// Event is the wire format of a change notice. EntityID may be empty for
// stream-wide changes (e.g. a balance update).
type Event struct {
	Stream   string    `json:"stream"`
	Action   string    `json:"action"` // insert | update | delete
	EntityID string    `json:"entity_id,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher fans a change notice out to all live subscribers. Publishing is
// best-effort: a failed publish is logged, never propagated — the ledger
// transaction has already committed by the time this runs.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type redisPublisher struct{ rdb *redis.Client }

func NewRedisPublisher(rdb *redis.Client) Publisher { return &redisPublisher{rdb: rdb} }

func (p *redisPublisher) Publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("stream", e.Stream).Msg("feed: marshal event")
		return
	}
	if err := p.rdb.Publish(ctx, channelPrefix+e.Stream, data).Err(); err != nil {
		log.Error().Err(err).Str("stream", e.Stream).Msg("feed: publish")
	}
}

// NopPublisher discards events. Used by unit tests and offline tooling.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

// Subscribe opens a redis subscription covering all three streams and returns
// a channel of decoded events plus a teardown func. The teardown is
// deterministic: after it returns, no further events are delivered.
func Subscribe(ctx context.Context, rdb *redis.Client) (<-chan Event, func()) {
	sub := rdb.Subscribe(ctx,
		channelPrefix+StreamSales,
		channelPrefix+StreamCategories,
		channelPrefix+StreamBalances,
	)
	out := make(chan Event, 16)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				log.Warn().Err(err).Msg("feed: drop malformed event")
				continue
			}
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = sub.Close() }
}
