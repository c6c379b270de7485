package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/minutes/internal/logging"
)

// DefaultRefreshInterval is how often KeepAlive asks for a token.
const DefaultRefreshInterval = 5 * time.Minute

// newTicker is a test seam for time.NewTicker.
var newTicker = func(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type cachedTokenSource interface {
	TokenSource
	Cached() (string, bool)
}

// KeepAlive calls EnsureToken once on Start and then on every interval until
// Stop. It publishes the last token obtained and whether a cache-miss driven
// load is in progress.
type KeepAlive struct {
	source   cachedTokenSource
	interval time.Duration
	logger   logging.Logger

	mu      sync.RWMutex
	token   string
	loading bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewKeepAlive(source cachedTokenSource, interval time.Duration, logger logging.Logger) *KeepAlive {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &KeepAlive{
		source:   source,
		interval: interval,
		logger:   logger.With("module", "keepalive"),
	}
}

// Start launches the refresh loop. Calling Start on a running KeepAlive is a
// no-op.
func (k *KeepAlive) Start(ctx context.Context) {
	k.mu.Lock()
	if k.cancel != nil {
		k.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	k.cancel, k.done = cancel, done
	ticks, stopTicker := newTicker(k.interval)
	k.mu.Unlock()

	go func() {
		defer close(done)
		defer stopTicker()

		k.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				k.tick(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. No EnsureToken call is
// made after Stop returns. Stop is idempotent.
func (k *KeepAlive) Stop() {
	k.mu.Lock()
	cancel, done := k.cancel, k.done
	k.cancel, k.done = nil, nil
	k.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (k *KeepAlive) Running() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.cancel != nil
}

// Token returns the last token obtained, or "" if none.
func (k *KeepAlive) Token() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.token
}

// Loading is true only while an EnsureToken call started because no valid
// token was cached is outstanding.
func (k *KeepAlive) Loading() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.loading
}

func (k *KeepAlive) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	_, cached := k.source.Cached()
	if !cached {
		k.setLoading(true)
	}

	token, err := k.source.EnsureToken(ctx)

	k.mu.Lock()
	k.loading = false
	switch {
	case err == nil:
		k.token = token
	case errors.Is(err, ErrUnauthenticated):
		k.token = ""
	}
	k.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		k.logger.Warn(ctx, "background token refresh failed", "error", err)
	}
}

func (k *KeepAlive) setLoading(v bool) {
	k.mu.Lock()
	k.loading = v
	k.mu.Unlock()
}
