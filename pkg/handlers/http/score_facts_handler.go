package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qscore-labs/qscore/pkg/app/scoring"
	"github.com/qscore-labs/qscore/pkg/domain/security"
	"github.com/qscore-labs/qscore/pkg/handlers/http/response"
	"github.com/qscore-labs/qscore/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

type scoreFactsHandler struct {
	logger *logrus.Logger
	scorer scoring.Scorer
	now    func() time.Time
}

func NewScoreFactsHandler(logger *logrus.Logger, scorer scoring.Scorer) Handler {
	return &scoreFactsHandler{
		logger: logger,
		scorer: scorer,
		now:    time.Now,
	}
}

// Handle @Summary Score caller supplied facts
// @Description Scores an AddressFacts document without querying the chain.
// @Description balanceWei wins over balanceEth; days since the first transaction are derived when omitted.
// @Tags Analysis
// @Accept json
// @Produce json
// @Param facts body security.AddressFacts true "Address facts"
// @Success 200 {object} response.AnalysisOutput "Analysis"
// @Failure 400 {object} response.ErrorOutput "Invalid facts"
// @Router /api/v1/score [post]
func (h *scoreFactsHandler) Handle(c *fiber.Ctx) error {
	var facts security.AddressFacts
	if err := c.BodyParser(&facts); err != nil {
		h.logger.WithError(err).Debug("invalid score request body")
		return badRequest(c, "invalid request body")
	}

	facts.Address = strings.ToLower(strings.TrimSpace(facts.Address))
	if facts.BalanceWei != "" {
		eth, err := security.WeiToEth(facts.BalanceWei)
		if err != nil {
			return badRequest(c, err.Error())
		}
		facts.BalanceEth = eth
	}
	if facts.FirstTransactionTimestamp != nil && facts.DaysSinceFirstTransaction == nil {
		days := security.DaysSince(*facts.FirstTransactionTimestamp, h.now())
		facts.DaysSinceFirstTransaction = &days
	}

	if err := facts.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	analysis := h.scorer.Analyze(facts)
	prometheus.AnalysesTotal.WithLabelValues(string(analysis.SecurityScore.Grade), "supplied").Inc()

	return c.Status(fiber.StatusOK).JSON(response.NewAnalysisOutput(analysis))
}
