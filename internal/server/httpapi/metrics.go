package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minutes_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "minutes_http_request_duration_seconds",
		Help:    "Time spent serving HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	authEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minutes_auth_events_total",
		Help: "Auth endpoint outcomes",
	}, []string{"event", "result"})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "minutes_auth_rate_limited_total",
		Help: "Requests rejected by the auth rate limiter",
	})
)

// metricsMiddleware records every request. Errors are rendered here so the
// recorded status matches what the client receives.
func metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(c.Response().Status)).Inc()
		httpRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
		return nil
	}
}

func recordAuth(event string, err error) {
	result := "ok"
	if err != nil {
		code, _ := statusFor(err)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		result = strconv.Itoa(code)
	}
	authEventsTotal.WithLabelValues(event, result).Inc()
}
