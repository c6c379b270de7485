package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RefreshPath is the backend endpoint that trades the session cookie for a
// new access token.
const RefreshPath = "/auth/refresh"

// MaxExpiresIn bounds the lifetime, in seconds, accepted for an access token.
const MaxExpiresIn = int64(24 * time.Hour / time.Second)

// ValidExpiresIn reports whether secs is a usable token lifetime.
func ValidExpiresIn(secs int64) bool {
	return secs > 0 && secs <= MaxExpiresIn
}

// RefreshResult is the body of a successful refresh response.
type RefreshResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// TTL converts ExpiresIn (seconds) to a duration.
func (r RefreshResult) TTL() time.Duration {
	return time.Duration(r.ExpiresIn) * time.Second
}

// Refresher obtains a new access token from the backend.
type Refresher interface {
	Refresh(ctx context.Context) (*RefreshResult, error)
}

// HTTPRefresher calls POST {base}/auth/refresh with an empty body. The
// session travels as a cookie, so client should carry a cookie jar shared
// with the login call.
type HTTPRefresher struct {
	endpoint string
	client   *http.Client
}

func NewHTTPRefresher(baseURL string, client *http.Client) *HTTPRefresher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRefresher{
		endpoint: strings.TrimRight(baseURL, "/") + RefreshPath,
		client:   client,
	}
}

func (r *HTTPRefresher) Refresh(ctx context.Context) (*RefreshResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("auth: build refresh request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: refresh request: %w", err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, 1<<20)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RefreshError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var out RefreshResult
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRefreshResponse, err)
	}
	if out.AccessToken == "" {
		return nil, ErrMalformedRefreshResponse
	}
	if !ValidExpiresIn(out.ExpiresIn) {
		return nil, fmt.Errorf("%w: expiresIn %d", ErrMalformedRefreshResponse, out.ExpiresIn)
	}
	return &out, nil
}

// errorMessage extracts {"error": "..."} from a failed response, if present.
func errorMessage(r io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	return payload.Error
}
