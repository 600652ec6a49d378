package batch

import (
	"context"
	"fmt"
	"time"

	apperrors "journal-classifier/internal/common/errors"
	"journal-classifier/internal/common/logger"
	"journal-classifier/internal/common/metrics"
	"journal-classifier/internal/models"
)

// AttemptFunc performs one attempt. attempt counts from 1.
type AttemptFunc func(ctx context.Context, attempt int) (models.Result, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Retrier runs an attempt up to MaxAttempts times with a fixed Delay between
// attempts. Only the last attempt's error is returned.
type Retrier struct {
	MaxAttempts      int
	Delay            time.Duration
	RetryParseErrors bool
	Sleep            SleepFunc
	logger           logger.Logger
}

func NewRetrier(maxAttempts int, delay time.Duration, retryParseErrors bool, log logger.Logger) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{
		MaxAttempts:      maxAttempts,
		Delay:            delay,
		RetryParseErrors: retryParseErrors,
		Sleep:            sleepCtx,
		logger:           log,
	}
}

func (r *Retrier) Do(ctx context.Context, fn AttemptFunc) (models.Result, error) {
	var lastErr error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		res, err := fn(ctx, attempt)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if attempt == r.MaxAttempts {
			break
		}
		if !r.RetryParseErrors && apperrors.IsParseError(err) {
			r.logger.Warn("reply rejected, not retrying", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			break
		}
		if !apperrors.IsRetryable(err) {
			r.logger.Warn("attempt failed, error is not retryable", map[string]interface{}{
				"attempt":   attempt,
				"errorCode": apperrors.CodeOf(err),
				"error":     err.Error(),
			})
			break
		}

		r.logger.Warn("attempt failed, retrying", map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": r.MaxAttempts,
			"delayMs":     r.Delay.Milliseconds(),
			"error":       err.Error(),
		})
		metrics.ClassifierRetries.Inc()

		if err := r.Sleep(ctx, r.Delay); err != nil {
			return models.Result{}, fmt.Errorf("retry aborted after attempt %d (%w): %w", attempt, err, lastErr)
		}
	}
	return models.Result{}, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
