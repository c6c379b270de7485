package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/minutes/internal/common"
)

// TokenSource is what Transport needs from a Provider.
type TokenSource interface {
	EnsureToken(ctx context.Context) (string, error)
}

// Transport is an http.RoundTripper that adds the bearer token to every
// request. If no token can be obtained the request is not sent and an
// *AuthenticationError is returned, unless the request's own context ended
// first. Responses are never retried, including 401 and 403.
type Transport struct {
	Source TokenSource
	Base   http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.Source.EnsureToken(req.Context())
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, &AuthenticationError{Err: err}
	}

	r := req.Clone(req.Context())
	r.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	return t.base().RoundTrip(r)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// Options describe one Fetcher call. Method defaults to GET.
type Options struct {
	Method string
	Header http.Header
	Body   io.Reader
}

// Fetcher issues authenticated requests against a fixed base URL.
type Fetcher struct {
	baseURL string
	client  *http.Client
}

// NewFetcher wraps client (nil means a default client) with a Transport fed
// by source. The given client is not modified.
func NewFetcher(baseURL string, source TokenSource, client *http.Client) *Fetcher {
	c := &http.Client{}
	if client != nil {
		*c = *client
	}
	c.Transport = &Transport{Source: source, Base: c.Transport}

	return &Fetcher{baseURL: strings.TrimRight(baseURL, "/"), client: c}
}

// Call sends a request to baseURL+path. Caller headers are kept; the
// Authorization header is always replaced by the bearer token.
func (f *Fetcher) Call(ctx context.Context, path string, opts Options) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, opts.Body)
	if err != nil {
		return nil, err
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		var authErr *AuthenticationError
		if errors.As(err, &authErr) {
			return nil, authErr
		}
		return nil, err
	}
	return resp, nil
}
