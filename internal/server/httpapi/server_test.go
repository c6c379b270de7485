package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/dmitrijs2005/minutes/internal/common"
	"github.com/dmitrijs2005/minutes/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrorValidation, http.StatusBadRequest},
		{common.ErrorInvalidCode, http.StatusBadRequest},
		{common.ErrorUnauthorized, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrTokenExpired, http.StatusUnauthorized},
		{common.ErrRefreshTokenExpired, http.StatusUnauthorized},
		{common.ErrorNotVerified, http.StatusForbidden},
		{common.ErrorForbidden, http.StatusForbidden},
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrorAlreadyExists, http.StatusConflict},
		{common.ErrorAlreadyVerified, http.StatusConflict},
		{fmt.Errorf("db error: %w", common.ErrorNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got, msg := statusFor(tt.err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newTestServer(t, &fakeUsers{}, &fakeMeetings{})
	rec := do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Not Found"}`, rec.Body.String())
}

func TestCORS_AllowsCredentialsForConfiguredOrigin(t *testing.T) {
	s := newTestServer(t, &fakeUsers{}, &fakeMeetings{})

	preflight := func(origin string) *http.Response {
		return do(t, s, http.MethodOptions, "/auth/refresh", "", func(r *http.Request) {
			r.Header.Set("Origin", origin)
			r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		}).Result()
	}

	resp := preflight("http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	resp = preflight("http://evil.example")
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter_AuthRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRateLimit = 0.2
	cfg.AuthRateBurst = 2
	s := NewServer(cfg, logging.Discard(), &fakeUsers{}, &fakeMeetings{}, nil)

	body := `{"email":"ann@example.com"}`
	for i := 0; i < 2; i++ {
		rec := do(t, s, http.MethodPost, "/auth/resend-code", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(t, s, http.MethodPost, "/auth/resend-code", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"ok":false,"error":"Too many attempts, try again later"}`, rec.Body.String())

	// Other clients and non-auth routes are unaffected.
	rec = do(t, s, http.MethodPost, "/auth/resend-code", body, func(r *http.Request) { r.RemoteAddr = "10.0.0.2:1234" })
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	tests := []struct {
		rate float64
		want int
	}{
		{0.2, 5},
		{0.3, 4},
		{10, 1},
	}
	for _, tt := range tests {
		t.Run(strconv.FormatFloat(tt.rate, 'f', -1, 64), func(t *testing.T) {
			rl := NewRateLimiter(rate.Limit(tt.rate), 1, time.Minute)
			assert.Equal(t, tt.want, rl.retryAfter())
		})
	}
}

func TestRateLimiter_ReusesLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	assert.Same(t, rl.getLimiter("1.2.3.4"), rl.getLimiter("1.2.3.4"))
	assert.NotSame(t, rl.getLimiter("1.2.3.4"), rl.getLimiter("5.6.7.8"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeUsers{}, &fakeMeetings{})
	_ = do(t, s, http.MethodGet, "/healthz", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "minutes_http_requests_total")
}

func TestRecordAuth_UsesResponseStatus(t *testing.T) {
	recordAuth("test", echo.NewHTTPError(http.StatusTooManyRequests))
	recordAuth("test", common.ErrorNotFound)
	recordAuth("test", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(authEventsTotal.WithLabelValues("test", "429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(authEventsTotal.WithLabelValues("test", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(authEventsTotal.WithLabelValues("test", "ok")))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeUsers{}, &fakeMeetings{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.HTTPAddr = "127.0.0.1:99999"
	s := NewServer(cfg, logging.Discard(), &fakeUsers{}, &fakeMeetings{}, nil)

	require.Error(t, s.Run(context.Background()))
}
