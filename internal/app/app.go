// Package app wires configuration, the model client and the batch pipeline
// into one run: load input, classify, persist.
package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"journal-classifier/internal/batch"
	"journal-classifier/internal/common/config"
	apperrors "journal-classifier/internal/common/errors"
	"journal-classifier/internal/common/logger"
	"journal-classifier/internal/common/observability"
	"journal-classifier/internal/contract"
	"journal-classifier/internal/dataset"
	"journal-classifier/internal/llm"
	"journal-classifier/internal/models"
	classifyjournal "journal-classifier/internal/workers/classification/classify-journal"
	"journal-classifier/pkg/registry"
)

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Total      int
	Fallbacks  int
	OutputPath string
	RescuePath string
	Duration   time.Duration
}

type App struct {
	cfg       *config.Config
	client    llm.Client
	obs       *observability.Observability
	logger    logger.Logger
	runID     string
	rescueDir string
	progress  batch.ProgressFunc
}

type Option func(*App)

// WithRescueDir sets where the outcome is saved when the output path cannot
// be written. Defaults to the OS temp dir.
func WithRescueDir(dir string) Option {
	return func(a *App) { a.rescueDir = dir }
}

func WithProgress(fn batch.ProgressFunc) Option {
	return func(a *App) { a.progress = fn }
}

func New(cfg *config.Config, client llm.Client, obs *observability.Observability, log logger.Logger, opts ...Option) *App {
	runID := uuid.NewString()
	if obs == nil {
		obs = observability.NewNoop()
	}
	a := &App{
		cfg:       cfg,
		client:    client,
		obs:       obs,
		logger:    log.With(map[string]interface{}{"runId": runID}),
		runID:     runID,
		rescueDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) RunID() string { return a.runID }

// Run executes one batch. Per-item failures never fail the run; config, load
// and persist failures do. On a persist failure the returned summary still
// describes the computed outcome.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: a.runID, OutputPath: a.cfg.Batch.OutputPath}

	c, err := a.loadContract()
	if err != nil {
		return summary, err
	}

	handler, err := classifyjournal.NewHandler(classifyjournal.ConfigFrom(a.cfg), c, a.client, a.obs, a.logger)
	if err != nil {
		return summary, err
	}

	requests, err := dataset.LoadRequests(a.cfg.Batch.InputPath, a.cfg.Batch.TitleField)
	if err != nil {
		a.logger.Error("failed to load input", map[string]interface{}{
			"path":  a.cfg.Batch.InputPath,
			"error": err.Error(),
		})
		return summary, err
	}
	a.logger.Info("input loaded", map[string]interface{}{
		"path":     a.cfg.Batch.InputPath,
		"records":  len(requests),
		"contract": c.ID(),
		"provider": a.cfg.LLM.Provider,
		"model":    a.cfg.LLM.Model,
	})

	limiter := batch.NewLimiter(a.cfg.Batch.Concurrency)
	retrier := batch.NewRetrier(a.cfg.Batch.MaxAttempts, a.cfg.Batch.Delay(), a.cfg.Batch.RetryParseErrors, a.logger)
	opts := []batch.Option{batch.WithObservability(a.obs)}
	if a.progress != nil {
		opts = append(opts, batch.WithProgress(a.progress))
	}
	orchestrator := batch.NewOrchestrator(handler, c, limiter, retrier, a.logger, opts...)

	outcome := orchestrator.Run(ctx, requests)
	summary.Total = len(outcome)
	summary.Fallbacks = countEmpty(outcome)

	if err := dataset.WriteOutcome(a.cfg.Batch.OutputPath, outcome); err != nil {
		a.logger.Error("failed to write output", map[string]interface{}{
			"path":  a.cfg.Batch.OutputPath,
			"error": err.Error(),
		})
		summary.RescuePath = a.rescue(outcome)
		summary.Duration = time.Since(start)
		return summary, err
	}

	summary.Duration = time.Since(start)
	a.logger.Info("run finished", map[string]interface{}{
		"output":     a.cfg.Batch.OutputPath,
		"total":      summary.Total,
		"fallbacks":  summary.Fallbacks,
		"durationMs": summary.Duration.Milliseconds(),
	})
	return summary, nil
}

func (a *App) loadContract() (*contract.Contract, error) {
	path := a.cfg.Contract.RegistryPath
	reg, err := registry.LoadOrBuiltin(path)
	if errors.Is(err, fs.ErrNotExist) {
		a.logger.Warn("contract registry not found, using built-in contracts", map[string]interface{}{
			"path": path,
		})
		reg, err = registry.Builtin(), nil
	}
	if err != nil {
		return nil, apperrors.NewConfigInvalidError(err.Error())
	}
	return contract.FromRegistry(reg, a.cfg.Contract.ID)
}

// rescue writes the outcome into the rescue dir and returns its path, or ""
// when that fails too.
func (a *App) rescue(outcome models.Outcome) string {
	base := filepath.Base(a.cfg.Batch.OutputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".rescue.json"
	path := filepath.Join(a.rescueDir, name)

	if err := dataset.WriteOutcome(path, outcome); err != nil {
		a.logger.Error("failed to write rescue copy, results are lost", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return ""
	}
	a.logger.Warn("results saved to rescue copy", map[string]interface{}{"path": path})
	return path
}

// countEmpty counts results whose fields are all empty strings, which is
// what every fallback looks like.
func countEmpty(outcome models.Outcome) int {
	n := 0
	for _, res := range outcome {
		if res.IsEmpty() {
			n++
		}
	}
	return n
}
