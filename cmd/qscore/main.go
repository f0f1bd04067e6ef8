package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/qscore-labs/qscore/pkg/app/address"
	"github.com/qscore-labs/qscore/pkg/app/scoring"
	"github.com/qscore-labs/qscore/pkg/config"
	handlers "github.com/qscore-labs/qscore/pkg/handlers/http"
	"github.com/qscore-labs/qscore/pkg/infra/cache"
	"github.com/qscore-labs/qscore/pkg/infra/etherscan"
	"github.com/qscore-labs/qscore/pkg/infra/ethrpc"
	"github.com/qscore-labs/qscore/pkg/infra/httpx"
	infraLogger "github.com/qscore-labs/qscore/pkg/infra/logger"
	"github.com/qscore-labs/qscore/pkg/infra/prometheus"
	"github.com/qscore-labs/qscore/pkg/middleware"
	"github.com/qscore-labs/qscore/pkg/server"
	"github.com/qscore-labs/qscore/pkg/version"
	"github.com/sirupsen/logrus"
)

const (
	commandServe   = "serve"
	commandAnalyze = "analyze"
	commandVersion = "version"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	command := getCommand()
	if command == commandVersion {
		fmt.Println(version.GetInfo().String())
		return
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config"
	}
	configErr := config.Load(configPath)
	if configErr != nil && !errors.Is(configErr, config.ErrConfigFileNotFound) {
		log.Fatalf("failed to load config: %v", configErr)
	}
	cfg := config.GetConfig()

	loggerCfg := infraLogger.Config{Level: cfg.Log.Level, File: cfg.Log.File}
	if command == commandAnalyze {
		// stdout carries the JSON report
		loggerCfg.Console = os.Stderr
	}
	logger, closeLogger, err := infraLogger.NewLogger(loggerCfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLogger()

	if configErr != nil {
		logger.Info(configErr.Error())
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	switch command {
	case commandServe:
		err = runServer(cfg, logger)
	case commandAnalyze:
		if len(os.Args) < 3 {
			err = errors.New("usage: qscore analyze <address|ens-name>")
			break
		}
		err = runAnalyze(cfg, logger, os.Args[2], os.Stdout)
	default:
		err = fmt.Errorf("unknown command %q (expected %s, %s or %s)", command, commandServe, commandAnalyze, commandVersion)
	}
	if err != nil {
		logger.WithError(err).Error("qscore exited with error")
		closeLogger()
		os.Exit(1)
	}
}

func getCommand() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return commandServe
}

type dependencies struct {
	resolver address.Resolver
	scorer   scoring.Scorer
	closers  []func()
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDependencies(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*dependencies, error) {
	deps := &dependencies{scorer: scoring.NewScorer()}

	chain, err := ethrpc.Dial(ctx, ethrpc.Config{
		RPCURL:      cfg.Ethereum.RPCURL,
		Timeout:     cfg.Ethereum.Timeout,
		ENSRegistry: cfg.Ethereum.ENSRegistry,
		MaxFailures: cfg.Ethereum.MaxFailures,
		OpenTimeout: cfg.Ethereum.OpenTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	deps.closers = append(deps.closers, chain.Close)

	history := etherscan.NewClient(
		httpx.NewFastHTTPClient(
			httpx.WithTimeout(cfg.Etherscan.Timeout),
			httpx.WithUserAgent(version.AppName+"/"+version.Version),
		),
		etherscan.Config{
			BaseURL:     cfg.Etherscan.BaseURL,
			APIKey:      cfg.Etherscan.APIKey,
			ChainID:     cfg.Etherscan.ChainID,
			Timeout:     cfg.Etherscan.Timeout,
			PageSize:    cfg.Etherscan.PageSize,
			MaxPages:    cfg.Etherscan.MaxPages,
			MaxFailures: cfg.Etherscan.MaxFailures,
			OpenTimeout: cfg.Etherscan.OpenTimeout,
		},
		logger,
	)
	if cfg.Etherscan.APIKey == "" {
		logger.Warn("etherscan api key is not set, requests will be heavily rate limited")
	}

	factCache := buildFactCache(cfg, logger, deps)

	deps.resolver = address.NewResolver(logger, chain, chain, history, factCache)
	return deps, nil
}

func buildFactCache(cfg *config.Config, logger *logrus.Logger, deps *dependencies) address.FactCache {
	if !cfg.Cache.Enabled {
		logger.Info("fact cache disabled")
		return nil
	}
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS:      cfg.Redis.TLS,
		}, logger)
		if err == nil {
			deps.closers = append(deps.closers, func() { _ = client.Close() })
			logger.Info("using redis fact cache")
			return cache.NewRedisFactCache(client, cfg.Cache.FactsTTL, cfg.Cache.ENSTTL)
		}
		logger.WithError(err).Warn("redis unavailable, falling back to in-memory fact cache")
	}
	return cache.NewMemoryFactCache(cfg.Cache.FactsTTL, cfg.Cache.ENSTTL)
}

func runServer(cfg *config.Config, logger *logrus.Logger) error {
	if cfg.Metrics.Enabled {
		prometheus.Initialize(prometheus.MetricsConfig{
			EnableLatency:         cfg.Metrics.EnableLatency,
			EnableUpstreamLatency: cfg.Metrics.EnableUpstream,
		})
	}

	deps, err := buildDependencies(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	middlewareTransport := &middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		RequestIDMiddleware:    middleware.NewRequestIDMiddleware(),
		MetricsMiddleware:      middleware.NewMetricsMiddleware(logger),
	}

	handlerTransport := handlers.HandlerTransport{
		AnalyzeAddressHandler: handlers.NewAnalyzeAddressHandler(logger, deps.resolver, deps.scorer),
		ScoreFactsHandler:     handlers.NewScoreFactsHandler(logger, deps.scorer),
		GetVersionHandler:     handlers.NewGetVersionHandler(logger),
	}

	srv := server.NewAPIServer(server.APIServerDI{
		Config:              cfg,
		Logger:              logger,
		MiddlewareTransport: middlewareTransport,
		HandlerTransport:    handlerTransport,
	})

	runErr := make(chan error, 1)
	go func() {
		runErr <- srv.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-runErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutdown requested")
	}

	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}
