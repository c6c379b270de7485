package httpapi

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client IP. Limiters of idle clients expire
// from the cache after the idle period.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(r rate.Limit, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: cache.New(idle, 2*idle),
		rate:     r,
		burst:    burst,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.limiters.Get(ip); ok {
		l := v.(*rate.Limiter)
		rl.limiters.SetDefault(ip, l)
		return l
	}

	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters.SetDefault(ip, l)
	return l
}

// retryAfter is the wait for one token, in whole seconds.
func (rl *RateLimiter) retryAfter() int {
	if rl.rate <= 0 || rl.rate == rate.Inf {
		return 1
	}
	return max(int(math.Ceil(1/float64(rl.rate))), 1)
}

func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.getLimiter(c.RealIP()).Allow() {
				rateLimitedTotal.Inc()
				c.Response().Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, try again later")
			}
			return next(c)
		}
	}
}
