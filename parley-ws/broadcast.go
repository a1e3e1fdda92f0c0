package parleyws

import (
	"context"

	parleycli "github.com/parley-chat/parley-go-chat/parley-cli"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Broadcaster fans a payload out to a set of connection addresses. Every
// delivery is attempted independently; a stale or failing recipient never
// aborts the others, and no delivery is retried.
type Broadcaster struct {
	Poster      Poster
	Logger      zerolog.Logger
	Metrics     *parleycli.Metrics
	Concurrency int // max concurrent deliveries (default 50)
}

// Broadcast delivers payload to every address and returns once every attempt
// has resolved. Per-recipient failures are logged and swallowed.
func (b *Broadcaster) Broadcast(ctx context.Context, endpoint string, connectionIDs []string, payload []byte) {
	if len(connectionIDs) == 0 {
		return
	}

	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = 50
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, connID := range connectionIDs {
		g.Go(func() error {
			if err := b.Poster.PostToConnection(ctx, endpoint, connID, payload); err != nil {
				if IsGone(err) {
					b.Logger.Info().
						Str("connection_id", connID).
						Msg("connection gone, delivery skipped")
				} else {
					b.Logger.Error().Err(err).
						Str("connection_id", connID).
						Msg("failed to deliver message")
				}
				if b.Metrics != nil {
					b.Metrics.Event(ctx, parleycli.DeliveryFailureMetric)
				}
			}
			return nil
		})
	}

	// Tasks never surface errors, so this is purely the join barrier.
	_ = g.Wait()
}
