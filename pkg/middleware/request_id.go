package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/qscore-labs/qscore/pkg/common"
)

const maxRequestIDLength = 128

type requestIDMiddleware struct{}

func NewRequestIDMiddleware() Middleware {
	return &requestIDMiddleware{}
}

// Middleware reuses a caller supplied X-Request-Id when it looks sane and
// generates a UUID otherwise.
func (m *requestIDMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(common.RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		c.Locals(common.RequestIDKey, requestID)
		c.SetUserContext(context.WithValue(c.UserContext(), common.RequestIDKey, requestID))
		c.Set(common.RequestIDHeader, requestID)

		return c.Next()
	}
}
