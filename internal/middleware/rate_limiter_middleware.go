package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/fadilmartias/resume-screener/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter allows each client max requests per route within a sliding window.
// Upload routes mount their own tighter instance on top of the global one.
func RateLimiter(max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 50
	}
	if window <= 0 {
		window = time.Minute
	}
	retryAfter := strconv.Itoa(int(math.Ceil(window.Seconds())))

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + c.Route().Path
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusTooManyRequests,
				Message: "too many requests, please retry later",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
