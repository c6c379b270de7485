package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/dmitrijs2005/minutes/internal/client/auth"
	"github.com/dmitrijs2005/minutes/internal/logging"
)

// Client talks to the Minutes backend on behalf of one user session.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *auth.Provider
	fetcher *auth.Fetcher
	logger  logging.Logger
}

type options struct {
	timeout    time.Duration
	storage    auth.SessionStorage
	redirector auth.Redirector
	logger     logging.Logger
	transport  http.RoundTripper
	clock      func() time.Time
}

type Option func(*options)

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithSessionStorage replaces the in-memory token storage.
func WithSessionStorage(s auth.SessionStorage) Option {
	return func(o *options) { o.storage = s }
}

// WithRedirector is notified when the session can no longer be refreshed.
func WithRedirector(r auth.Redirector) Option {
	return func(o *options) { o.redirector = r }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	o := options{
		timeout: 10 * time.Second,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.storage == nil {
		o.storage = auth.NewMemoryStorage()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("api: cookie jar: %w", err)
	}
	httpClient := &http.Client{Jar: jar, Timeout: o.timeout, Transport: o.transport}

	var cacheOpts []auth.CacheOption
	if o.clock != nil {
		cacheOpts = append(cacheOpts, auth.WithClock(o.clock))
	}
	cache := auth.NewTokenCache(o.storage, cacheOpts...)

	providerOpts := []auth.ProviderOption{auth.WithLogger(o.logger)}
	if o.redirector != nil {
		providerOpts = append(providerOpts, auth.WithRedirector(o.redirector))
	}
	tokens := auth.NewProvider(cache, auth.NewHTTPRefresher(baseURL, httpClient), providerOpts...)

	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		tokens:  tokens,
		fetcher: auth.NewFetcher(baseURL, tokens, httpClient),
		logger:  o.logger.With("module", "api"),
	}, nil
}

// Tokens exposes the provider, e.g. for a KeepAlive.
func (c *Client) Tokens() *auth.Provider {
	return c.tokens
}

// Token returns a valid access token, refreshing it if needed.
func (c *Client) Token(ctx context.Context) (string, error) {
	token, err := c.tokens.EnsureToken(ctx)
	if err != nil {
		return "", classify(err)
	}
	return token, nil
}

// post sends an unauthenticated JSON request.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := encode(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

// call sends a request carrying the bearer token.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	body, err := encode(in)
	if err != nil {
		return err
	}
	header := http.Header{"Accept": {"application/json"}}
	if in != nil {
		header.Set("Content-Type", "application/json")
	}

	resp, err := c.fetcher.Call(ctx, path, auth.Options{Method: method, Header: header, Body: body})
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func encode(in any) (io.Reader, error) {
	if in == nil {
		return nil, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("api: encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

func newAPIError(resp *http.Response) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload)
	return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
}

// classify maps transport level failures onto the package sentinels.
// Context cancellation is passed through untouched.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, auth.ErrUnauthenticated) {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
