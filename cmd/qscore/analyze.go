package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/qscore-labs/qscore/pkg/config"
	"github.com/qscore-labs/qscore/pkg/handlers/http/response"
	"github.com/sirupsen/logrus"
)

// runAnalyze resolves a single input and writes its analysis as JSON to out.
func runAnalyze(cfg *config.Config, logger *logrus.Logger, input string, out io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	facts, err := deps.resolver.Resolve(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", input, err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(response.NewAnalysisOutput(deps.scorer.Analyze(facts)))
}
