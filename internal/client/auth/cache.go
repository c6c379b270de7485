package auth

import (
	"strconv"
	"sync"
	"time"
)

// Session storage keys.
const (
	TokenKey  = "minutes.accessToken"
	ExpiryKey = "minutes.accessTokenExpiry"
)

// TokenCache keeps the access token and its expiry in a SessionStorage.
// A token is valid iff now < expiry.
type TokenCache struct {
	mu      sync.Mutex
	storage SessionStorage
	now     func() time.Time
}

type CacheOption func(*TokenCache)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *TokenCache) { c.now = now }
}

func NewTokenCache(storage SessionStorage, opts ...CacheOption) *TokenCache {
	c := &TokenCache{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store saves token with expiry now+ttl, replacing any previous entry.
func (c *TokenCache) Store(token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiry := c.now().Add(ttl).UnixMilli()
	c.storage.SetItem(TokenKey, token)
	c.storage.SetItem(ExpiryKey, strconv.FormatInt(expiry, 10))
}

// Read returns the cached token if it has not expired. Expired entries are
// left in storage and simply reported as a miss.
func (c *TokenCache) Read() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	token, expiry, ok := c.load()
	if !ok || c.now().UnixMilli() >= expiry.UnixMilli() {
		return "", false
	}
	return token, true
}

// Expiry reports the stored expiry instant, valid or not.
func (c *TokenCache) Expiry() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, expiry, ok := c.load()
	return expiry, ok
}

// Clear removes both entries.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.storage.RemoveItem(TokenKey)
	c.storage.RemoveItem(ExpiryKey)
}

func (c *TokenCache) load() (string, time.Time, bool) {
	token, ok := c.storage.GetItem(TokenKey)
	if !ok || token == "" {
		return "", time.Time{}, false
	}
	raw, ok := c.storage.GetItem(ExpiryKey)
	if !ok {
		return "", time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return token, time.UnixMilli(ms), true
}
