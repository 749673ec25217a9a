package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDLocal  = "request_id"
)

type requestIDKey struct{}

// RequestID tags every request with an identifier, reusing the caller's when
// one is sent, and echoes it back in the response header.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(requestIDLocal, id)
		c.Set(requestIDHeader, id)
		c.SetUserContext(context.WithValue(c.UserContext(), requestIDKey{}, id))

		return c.Next()
	}
}

// GetRequestID returns the identifier bound to the active request.
func GetRequestID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(requestIDLocal).(string); ok {
		return id
	}
	return RequestIDFromContext(c.UserContext())
}

// RequestIDFromContext extracts the identifier from a request context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
