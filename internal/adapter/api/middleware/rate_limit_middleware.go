package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"comoresmarket/internal/infrastructure/ratelimit"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
	"comoresmarket/pkg/response"
)

// Limiter is the token bucket store keyed by subject and action.
type Limiter interface {
	Allow(subject, action string) (bool, time.Duration)
}

type RateLimitMiddleware struct {
	limiter Limiter
}

func NewRateLimitMiddleware(limiter Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit charges one token of action per request. Authenticated callers are
// keyed by user id, anonymous ones by client IP.
func (m *RateLimitMiddleware) Limit(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject := UserID(c)
			if subject == "" {
				subject = "ip:" + c.RealIP()
			}

			if ok, wait := m.limiter.Allow(subject, action); !ok {
				logger.Warn("RateLimit: %s exceeded %s budget", subject, action)
				return response.Error(c, errors.TooManyRequests("Too many requests, please slow down", wait))
			}
			return next(c)
		}
	}
}

// General applies the default per-caller budget.
func (m *RateLimitMiddleware) General(next echo.HandlerFunc) echo.HandlerFunc {
	return m.Limit(ratelimit.ActionGeneral)(next)
}
