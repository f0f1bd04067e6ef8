package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qscore-labs/qscore/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const unmatchedRoute = "unmatched"

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// Route templates keep label cardinality bounded.
		route := unmatchedRoute
		if r := c.Route(); r != nil && r.Path != "/" && r.Path != "" {
			route = r.Path
		}

		prometheus.RequestTotal.WithLabelValues(route, c.Method(), prometheus.StatusClass(status)).Inc()
		if prometheus.Config.EnableLatency {
			prometheus.RequestLatency.WithLabelValues(route).Observe(prometheus.ElapsedMs(start))
		}

		m.logger.WithFields(logrus.Fields{
			"method":   c.Method(),
			"route":    route,
			"status":   status,
			"duration": time.Since(start).String(),
		}).Debug("request completed")

		return err
	}
}
