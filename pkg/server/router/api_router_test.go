package router

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/qscore-labs/qscore/pkg/common"
	handlers "github.com/qscore-labs/qscore/pkg/handlers/http"
	"github.com/qscore-labs/qscore/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	status int
	calls  int
	params []string
}

func (h *stubHandler) Handle(c *fiber.Ctx) error {
	h.calls++
	h.params = append(h.params, c.Params("input"))
	return c.SendStatus(h.status)
}

func TestAPIRouter_BuildRoutes(t *testing.T) {
	analyze := &stubHandler{status: fiber.StatusOK}
	score := &stubHandler{status: fiber.StatusOK}
	ver := &stubHandler{status: fiber.StatusOK}

	app := fiber.New()
	r := NewAPIRouter(
		&middleware.Transport{RequestIDMiddleware: middleware.NewRequestIDMiddleware()},
		handlers.HandlerTransport{
			AnalyzeAddressHandler: analyze,
			ScoreFactsHandler:     score,
			GetVersionHandler:     ver,
		},
	)
	require.NoError(t, r.BuildRoutes(app))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{fiber.MethodGet, "/version", fiber.StatusOK},
		{fiber.MethodGet, "/api/v1/addresses/vitalik.eth/analysis", fiber.StatusOK},
		{fiber.MethodPost, "/api/v1/score", fiber.StatusOK},
		{fiber.MethodGet, "/api/v1/addresses", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(tt.method, tt.path, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, tt.want, resp.StatusCode, "%s %s", tt.method, tt.path)
		if tt.want == fiber.StatusOK {
			assert.NotEmpty(t, resp.Header.Get(common.RequestIDHeader))
		}
	}

	assert.Equal(t, 1, analyze.calls)
	assert.Equal(t, []string{"vitalik.eth"}, analyze.params)
	assert.Equal(t, 1, score.calls)
	assert.Equal(t, 1, ver.calls)
}

func TestAPIRouter_MissingHandler(t *testing.T) {
	r := NewAPIRouter(nil, handlers.HandlerTransport{
		AnalyzeAddressHandler: &stubHandler{status: fiber.StatusOK},
	})
	assert.ErrorIs(t, r.BuildRoutes(fiber.New()), ErrInvalidHandlerTransport)
}
