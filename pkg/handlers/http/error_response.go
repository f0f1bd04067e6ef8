package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/qscore-labs/qscore/pkg/domain"
	"github.com/qscore-labs/qscore/pkg/handlers/http/response"
	"github.com/sirupsen/logrus"
)

const (
	codeInvalidInput = "invalid_input"
	codeNotFound     = "not_found"
	codeRateLimited  = "rate_limited"
	codeUpstream     = "upstream_unavailable"
	codeInternal     = "internal_error"
)

// writeError maps resolver and provider failures onto HTTP status codes.
func writeError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	status, code, msg := classifyError(err)

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"path":   c.Path(),
		"status": status,
	})
	if status >= fiber.StatusInternalServerError {
		entry.Error("address analysis failed")
	} else {
		entry.Warn("address analysis rejected")
	}

	if status == fiber.StatusTooManyRequests {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(status).JSON(response.ErrorOutput{Error: msg, Code: code})
}

func classifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		return fiber.StatusBadRequest, codeInvalidInput, "invalid address or ENS name"
	case errors.Is(err, domain.ErrNameNotFound):
		return fiber.StatusNotFound, codeNotFound, "ENS name not found"
	case errors.Is(err, domain.ErrRateLimited):
		return fiber.StatusTooManyRequests, codeRateLimited, "data provider rate limit reached, retry shortly"
	case domain.IsUpstreamError(err):
		return fiber.StatusBadGateway, codeUpstream, "blockchain data provider unavailable"
	default:
		return fiber.StatusInternalServerError, codeInternal, "internal server error"
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(response.ErrorOutput{Error: msg, Code: codeInvalidInput})
}
