package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/qscore-labs/qscore/pkg/app/address"
	"github.com/qscore-labs/qscore/pkg/app/scoring"
	"github.com/qscore-labs/qscore/pkg/handlers/http/response"
	"github.com/qscore-labs/qscore/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

type analyzeAddressHandler struct {
	logger   *logrus.Logger
	resolver address.Resolver
	scorer   scoring.Scorer
}

func NewAnalyzeAddressHandler(
	logger *logrus.Logger,
	resolver address.Resolver,
	scorer scoring.Scorer,
) Handler {
	return &analyzeAddressHandler{
		logger:   logger,
		resolver: resolver,
		scorer:   scorer,
	}
}

// Handle @Summary Analyze an address
// @Description Resolves a hex address or ENS name and returns its quantum vulnerability analysis
// @Tags Analysis
// @Produce json
// @Param input path string true "Hex address or ENS name"
// @Success 200 {object} response.AnalysisOutput "Analysis"
// @Failure 400 {object} response.ErrorOutput "Invalid input"
// @Failure 404 {object} response.ErrorOutput "ENS name not found"
// @Failure 429 {object} response.ErrorOutput "Rate limited"
// @Failure 502 {object} response.ErrorOutput "Upstream unavailable"
// @Router /api/v1/addresses/{input}/analysis [get]
func (h *analyzeAddressHandler) Handle(c *fiber.Ctx) error {
	input, err := url.PathUnescape(c.Params("input"))
	if err != nil || input == "" {
		return badRequest(c, "input is required")
	}

	facts, err := h.resolver.Resolve(c.UserContext(), input)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	analysis := h.scorer.Analyze(facts)
	prometheus.AnalysesTotal.WithLabelValues(string(analysis.SecurityScore.Grade), "resolved").Inc()

	h.logger.WithFields(logrus.Fields{
		"address": analysis.Address,
		"score":   analysis.SecurityScore.Score,
		"grade":   analysis.SecurityScore.Grade,
	}).Info("address analyzed")

	return c.Status(fiber.StatusOK).JSON(response.NewAnalysisOutput(analysis))
}
