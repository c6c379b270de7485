package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/logging"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// Redirector is told where the user agent should go when the session is no
// longer authenticated. Presentation code decides what that means.
type Redirector interface {
	Redirect(ctx context.Context, location string)
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func(ctx context.Context, location string)

func (f RedirectFunc) Redirect(ctx context.Context, location string) { f(ctx, location) }

type noRedirect struct{}

func (noRedirect) Redirect(context.Context, string) {}

// Provider hands out access tokens, refreshing them through a Refresher when
// the cache has none. It is safe for concurrent use.
type Provider struct {
	cache     *TokenCache
	refresher Refresher
	redirect  Redirector
	loginPath string
	logger    logging.Logger
	group     singleflight.Group

	// generation changes on SignOut; a refresh started in an older
	// generation must not store its result.
	mu         sync.Mutex
	generation uint64
}

type ProviderOption func(*Provider)

func WithRedirector(r Redirector) ProviderOption {
	return func(p *Provider) { p.redirect = r }
}

// WithLoginPath changes the location passed to the Redirector
// (default common.LoginPath).
func WithLoginPath(path string) ProviderOption {
	return func(p *Provider) { p.loginPath = path }
}

func WithLogger(l logging.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}

func NewProvider(cache *TokenCache, refresher Refresher, opts ...ProviderOption) *Provider {
	p := &Provider{
		cache:     cache,
		refresher: refresher,
		redirect:  noRedirect{},
		loginPath: common.LoginPath,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("module", "token_provider")
	return p
}

// EnsureToken returns a valid access token. A cached token is returned
// without any network call. Otherwise one refresh is performed on behalf of
// all concurrent callers; if the backend rejects it the Redirector is
// notified and the returned error matches ErrUnauthenticated.
//
// The refresh itself is not bound to ctx, so one caller giving up does not
// fail the others; ctx only limits how long this caller waits.
func (p *Provider) EnsureToken(ctx context.Context) (string, error) {
	if token, ok := p.cache.Read(); ok {
		return token, nil
	}

	ch := p.group.DoChan(refreshKey, func() (any, error) {
		return p.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			p.logger.Debug(ctx, "joined in-flight refresh")
		}
		return res.Val.(string), nil
	}
}

func (p *Provider) refresh(ctx context.Context) (string, error) {
	// a flight that finished just before this one started may have stored a token
	if token, ok := p.cache.Read(); ok {
		return token, nil
	}
	gen := p.currentGeneration()

	res, err := p.refresher.Refresh(ctx)
	if err != nil {
		var rerr *RefreshError
		if errors.As(err, &rerr) {
			if p.currentGeneration() != gen {
				return "", ErrUnauthenticated
			}
			p.logger.Warn(ctx, "refresh rejected, sign-in required", "status", rerr.StatusCode)
			p.redirect.Redirect(ctx, p.loginPath)
			return "", err
		}
		p.logger.Error(ctx, "refresh failed", "error", err)
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation != gen {
		p.logger.Debug(ctx, "discarding refresh started before sign-out")
		return "", ErrUnauthenticated
	}
	p.cache.Store(res.AccessToken, res.TTL())
	p.logger.Debug(ctx, "access token refreshed", "expires_in", res.ExpiresIn)
	return res.AccessToken, nil
}

func (p *Provider) currentGeneration() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Cached returns the token only if one is cached and still valid.
func (p *Provider) Cached() (string, bool) {
	return p.cache.Read()
}

// Expiry reports when the cached token expires.
func (p *Provider) Expiry() (time.Time, bool) {
	return p.cache.Expiry()
}

// Seed stores a token obtained outside the refresh flow, e.g. from login.
func (p *Provider) Seed(token string, ttl time.Duration) {
	p.cache.Store(token, ttl)
}

// SignOut forgets the cached token. A refresh still in flight finishes but
// its token is dropped.
func (p *Provider) SignOut() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.cache.Clear()
	p.group.Forget(refreshKey)
}
