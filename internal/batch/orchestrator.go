// Package batch fans a list of requests out to the classifier under a
// concurrency cap and collects exactly one result per request.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"journal-classifier/internal/common/logger"
	"journal-classifier/internal/common/metrics"
	"journal-classifier/internal/common/observability"
	"journal-classifier/internal/models"
	classifyjournal "journal-classifier/internal/workers/classification/classify-journal"
)

// Invoker performs a single classification call.
type Invoker interface {
	Execute(ctx context.Context, input classifyjournal.Input) (models.Result, error)
}

// Fallback supplies the result used for items that never succeed.
type Fallback interface {
	Empty() models.Result
}

type Orchestrator struct {
	invoker  Invoker
	fallback Fallback
	limiter  *Limiter
	retrier  *Retrier
	progress ProgressFunc
	obs      *observability.Observability
	logger   logger.Logger
}

type Option func(*Orchestrator)

func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

func NewOrchestrator(invoker Invoker, fallback Fallback, limiter *Limiter, retrier *Retrier, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		invoker:  invoker,
		fallback: fallback,
		limiter:  limiter,
		retrier:  retrier,
		obs:      observability.NewNoop(),
		logger:   log,
	}
	o.progress = LogProgress(log)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run resolves every request. The outcome has one entry per request, in
// request order; items that fail every attempt hold the fallback result.
// Run never fails.
func (o *Orchestrator) Run(ctx context.Context, requests []models.Request) models.Outcome {
	total := len(requests)
	outcome := make(models.Outcome, total)

	start := time.Now()
	o.logger.Info("batch started", map[string]interface{}{
		"total":       total,
		"concurrency": o.limiter.Size(),
		"maxAttempts": o.retrier.MaxAttempts,
	})

	var (
		mu        sync.Mutex
		done      int
		fallbacks int
	)

	var g errgroup.Group
	for i, req := range requests {
		g.Go(func() error {
			res, err := o.resolve(ctx, req)
			status := metrics.StatusClassified
			if err != nil {
				status = metrics.StatusFallback
				res = o.fallback.Empty()
				o.logger.Warn("classification fell back to empty result", map[string]interface{}{
					"index": req.Index,
					"text":  req.Text,
					"error": err.Error(),
				})
			}
			outcome[i] = res
			metrics.ClassifierItems.WithLabelValues(status).Inc()
			o.obs.RecordItemProcessed(ctx, status)

			mu.Lock()
			done++
			if err != nil {
				fallbacks++
			}
			o.progress(done, total)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	duration := time.Since(start)
	o.obs.RecordBatchDuration(ctx, duration, total)
	o.logger.Info("batch finished", map[string]interface{}{
		"total":      total,
		"succeeded":  total - fallbacks,
		"fallbacks":  fallbacks,
		"peak":       o.limiter.Peak(),
		"durationMs": duration.Milliseconds(),
	})
	return outcome
}

func (o *Orchestrator) resolve(ctx context.Context, req models.Request) (res models.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classification panicked: %v", r)
		}
	}()

	err = o.limiter.Do(ctx, func(ctx context.Context) error {
		var callErr error
		res, callErr = o.retrier.Do(ctx, func(ctx context.Context, attempt int) (models.Result, error) {
			return o.invoker.Execute(ctx, classifyjournal.Input{Request: req, Attempt: attempt})
		})
		return callErr
	})
	return res, err
}
