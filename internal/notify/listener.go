// Package notify delivers "orders changed" ticks from Postgres to in-process
// subscribers. A tick carries only the changed order's id; consumers react by
// re-fetching the authoritative order list, never by merging the payload into
// local state.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Listener holds a dedicated connection on LISTEN and fans notifications out
// to subscribers.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	logger  zerolog.Logger

	mu     sync.Mutex
	subs   map[int]chan string
	nextID int
}

// NewListener creates a listener for the given notification channel.
func NewListener(pool *pgxpool.Pool, channel string, logger zerolog.Logger) *Listener {
	return &Listener{
		pool:    pool,
		channel: channel,
		logger:  logger.With().Str("component", "order-listener").Logger(),
		subs:    make(map[int]chan string),
	}
}

// Subscribe registers a subscriber and returns its tick channel plus an
// unsubscribe function. The channel has a one-tick buffer: if the subscriber
// is mid-refetch when another tick lands, the pending tick already implies a
// refetch, so further ticks can be dropped safely.
func (l *Listener) Subscribe() (<-chan string, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	ch := make(chan string, 1)
	l.subs[id] = ch

	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(ch)
		}
	}
}

func (l *Listener) broadcast(payload string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subs {
		select {
		case ch <- payload:
		default:
		}
	}
}

// Run listens until the context is cancelled, reconnecting with a short
// backoff when the connection drops.
func (l *Listener) Run(ctx context.Context) {
	l.logger.Info().Str("channel", l.channel).Msg("order change listener started")

	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				l.logger.Info().Msg("order change listener stopped")
				return
			}
			l.logger.Warn().Err(err).Msg("listener connection lost, reconnecting")
		}

		select {
		case <-ctx.Done():
			l.logger.Info().Msg("order change listener stopped")
			return
		case <-time.After(2 * time.Second):
		}
	}
}

// listen holds one connection and pumps notifications until it fails.
func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listener connection: %w", err)
	}
	defer conn.Release()

	// The channel name is a trusted constant; LISTEN takes no bind parameters.
	if _, err := conn.Exec(ctx, "LISTEN "+l.channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.channel, err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("failed waiting for notification: %w", err)
		}

		l.logger.Debug().
			Str("payload", notification.Payload).
			Msg("order change notification received")

		l.broadcast(notification.Payload)
	}
}
