package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// CorrelationIDHeader carries the client's idempotency key
	CorrelationIDHeader = "X-Correlation-ID"
	// ReplayHeader marks a response served from the idempotency cache
	ReplayHeader = "X-Idempotent-Replay"

	redisOpTimeout = 2 * time.Second
)

// Idempotency replays the cached 2xx response of a POST that carried the same
// X-Correlation-ID within ttl. Requests without the header pass through untouched.
func Idempotency(redisClient redis.UniversalClient, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		correlationID := c.Get(CorrelationIDHeader)
		if correlationID == "" {
			return c.Next()
		}

		key := idempotencyKey(c.Path(), correlationID)

		ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
		cached, err := redisClient.Get(ctx, key).Bytes()
		cancel()
		if err == nil && len(cached) > 0 {
			c.Set(ReplayHeader, "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(fiber.StatusOK).Send(cached)
		}
		if err != nil && err != redis.Nil {
			// Redis being down must not block uploads
			log.Printf("Warning: idempotency lookup failed for %s: %v", correlationID, err)
		}

		if err := c.Next(); err != nil {
			return err
		}

		statusCode := c.Response().StatusCode()
		if statusCode < 200 || statusCode >= 300 {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		ctx, cancel = context.WithTimeout(context.Background(), redisOpTimeout)
		defer cancel()
		// go-redis copies the value before returning, so the fasthttp buffer is safe to reuse
		if err := redisClient.Set(ctx, key, body, ttl).Err(); err != nil {
			log.Printf("Warning: failed to cache response for %s: %v", correlationID, err)
		}

		return nil
	}
}

func idempotencyKey(path, correlationID string) string {
	return fmt.Sprintf("idempotency:%s:%s", path, correlationID)
}
