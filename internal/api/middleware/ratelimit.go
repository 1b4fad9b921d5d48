package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateLimit caps the request rate shared by every client. rps is requests
// per second, burst allows short spikes above it.
func RateLimit(rps, burst int, log zerolog.Logger) fiber.Handler {
	if rps <= 0 {
		rps = 100
	}
	if burst <= 0 {
		burst = 10
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *fiber.Ctx) error {
		if !limiter.Allow() {
			log.Warn().Str("path", c.Path()).Str("ip", c.IP()).Msg("rate limit exceeded")
			return fiber.NewError(fiber.StatusTooManyRequests, "Too Many Requests")
		}
		return c.Next()
	}
}
