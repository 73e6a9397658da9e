// SPDX-License-Identifier: Apache-2.0

package workers

import (
	"context"
	"time"

	"github.com/beapsec/beap-core/internal/handshake"
	"github.com/beapsec/beap-core/internal/logger"
	"github.com/beapsec/beap-core/internal/store"
	"github.com/beapsec/beap-core/models"
)

// ExpiryWorker periodically expires pending handshakes that have outlived
// their maximum age. Handshake requests travel over human-mediated channels
// and may simply never be answered; expiry keeps the pending list from
// accumulating dead entries and blocks a very late accept of a forgotten
// request.
type ExpiryWorker struct {
	handshakes store.HandshakeStore
	protocol   handshake.Protocol
	interval   time.Duration
	maxAge     time.Duration
	logger     *logger.Logger

	stop chan struct{}
}

// NewExpiryWorker constructs an [ExpiryWorker] sweeping every interval and
// expiring pending handshakes older than maxAge.
func NewExpiryWorker(hs store.HandshakeStore, protocol handshake.Protocol, interval, maxAge time.Duration, log *logger.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		handshakes: hs,
		protocol:   protocol,
		interval:   interval,
		maxAge:     maxAge,
		logger:     log,
		stop:       make(chan struct{}),
	}
}

// Run implements [Worker]. It spawns the sweep loop and returns immediately;
// the loop runs until [ExpiryWorker.Stop] is called.
func (w *ExpiryWorker) Run() {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.Sweep(context.Background())
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop. Safe to call once.
func (w *ExpiryWorker) Stop() {
	close(w.stop)
}

// Sweep expires every pending handshake older than the worker's maximum age.
// A handshake accepted or rejected concurrently loses the race cleanly: the
// transition fails and the sweep moves on.
func (w *ExpiryWorker) Sweep(ctx context.Context) {
	pending, err := w.handshakes.ListByState(ctx, models.HandshakePending)
	if err != nil {
		w.logger.Warn().Err(err).Msg("expiry sweep: listing pending handshakes")
		return
	}

	cutoff := time.Now().Add(-w.maxAge)
	for _, hs := range pending {
		if hs.CreatedAt.After(cutoff) {
			continue
		}
		if _, err := w.protocol.Expire(ctx, hs.ID); err != nil {
			w.logger.Debug().Err(err).Str("handshake_id", hs.ID).Msg("expiry sweep: transition lost")
			continue
		}
		w.logger.Info().Str("handshake_id", hs.ID).Time("created_at", hs.CreatedAt).Msg("handshake expired")
	}
}
