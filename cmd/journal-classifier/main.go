// cmd/journal-classifier/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"journal-classifier/internal/app"
	"journal-classifier/internal/common/config"
	apperrors "journal-classifier/internal/common/errors"
	"journal-classifier/internal/common/logger"
	"journal-classifier/internal/common/observability"
	"journal-classifier/internal/llm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one batch and returns the process exit code: 0 once the
// outcome is written (fallbacks included), 1 on config, load or persist failure.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("journal-classifier", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a config file (default: configs/config.yaml if present)")
	contractID := fs.String("contract", "", "Response contract to use (overrides contract.id)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "config load failed: %v\n", err)
		return 1
	}
	if *contractID != "" {
		cfg.Contract.ID = *contractID
	}

	log, err := logger.NewFromOptions(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Outputs: cfg.Logging.Outputs(),
	})
	if err != nil {
		log = logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
		log.Warn("log file unavailable, logging to stderr only", map[string]interface{}{
			"file":  cfg.Logging.File,
			"error": err.Error(),
		})
	}
	defer func() { _ = log.Sync() }()

	obs := observability.New(cfg.Tracing.ServiceName, log, observability.WithJaegerEndpoint(cfg.Tracing.JaegerEndpoint))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Error("model client setup failed", map[string]interface{}{"error": err.Error()})
		return 1
	}
	defer func() { _ = llm.Close(client) }()

	a := app.New(cfg, client, obs, log)

	if cfg.Metrics.Address != "" {
		shutdown := app.StartMetricsServer(cfg.Metrics.Address, a.RunID(), log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	log.Info("Starting journal classifier...", map[string]interface{}{
		"runId":    a.RunID(),
		"version":  cfg.App.Version,
		"contract": cfg.Contract.ID,
	})

	summary, err := a.Run(ctx)
	if err != nil {
		code := apperrors.CodeOf(err)
		fields := map[string]interface{}{
			"error":         err.Error(),
			"errorCode":     code,
			"errorCategory": apperrors.GetErrorCategory(code),
		}
		if summary != nil && summary.RescuePath != "" {
			fields["rescuePath"] = summary.RescuePath
		}
		log.Error("run failed", fields)
		return 1
	}
	if ctx.Err() != nil {
		log.Warn("run interrupted, unfinished items were written as fallbacks", map[string]interface{}{
			"output": summary.OutputPath,
		})
	}
	log.Info("classification complete", map[string]interface{}{
		"total":     summary.Total,
		"fallbacks": summary.Fallbacks,
		"output":    summary.OutputPath,
	})
	return 0
}
