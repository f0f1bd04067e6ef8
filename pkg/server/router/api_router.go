package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	handlers "github.com/qscore-labs/qscore/pkg/handlers/http"
	"github.com/qscore-labs/qscore/pkg/middleware"
)

const (
	VersionPath  = "/version"
	AnalysisPath = "/addresses/:input/analysis"
	ScorePath    = "/score"
)

var ErrInvalidHandlerTransport = errors.New("invalid handler transport")

type apiRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewAPIRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	ht := r.handlerTransport
	if ht.AnalyzeAddressHandler == nil || ht.ScoreFactsHandler == nil || ht.GetVersionHandler == nil {
		return ErrInvalidHandlerTransport
	}

	if r.middlewareTransport != nil {
		if mws := r.middlewareTransport.GetMiddlewares(); len(mws) > 0 {
			router.Use(mws...)
		}
	}

	router.Get(VersionPath, ht.GetVersionHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		v1.Get(AnalysisPath, ht.AnalyzeAddressHandler.Handle)
		v1.Post(ScorePath, ht.ScoreFactsHandler.Handle)
	}

	return nil
}
