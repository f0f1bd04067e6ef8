package server

import (
	"fmt"

	"github.com/qscore-labs/qscore/pkg/config"
	handlers "github.com/qscore-labs/qscore/pkg/handlers/http"
	"github.com/qscore-labs/qscore/pkg/middleware"
	"github.com/qscore-labs/qscore/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	APIServerDI struct {
		Config              *config.Config
		Logger              *logrus.Logger
		MiddlewareTransport *middleware.Transport
		HandlerTransport    handlers.HandlerTransport
	}
	APIServer struct {
		*BaseServer
	}
)

func NewAPIServer(di APIServerDI) *APIServer {
	s := &APIServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
	s.setupHealthCheck()
	s.WithRouters(router.NewAPIRouter(di.MiddlewareTransport, di.HandlerTransport))
	return s
}

func (s *APIServer) Run() error {
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf(":%d", s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting api server")
	return s.Router.Listen(addr)
}

func (s *APIServer) Shutdown() error {
	s.Logger.Info("shutting down api server")
	return s.shutdown()
}
