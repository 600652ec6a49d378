// internal/workers/classification/classify-journal/handler.go
package classifyjournal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "journal-classifier/internal/common/errors"
	"journal-classifier/internal/common/logger"
	"journal-classifier/internal/common/metrics"
	"journal-classifier/internal/common/observability"
	"journal-classifier/internal/contract"
	"journal-classifier/internal/llm"
	"journal-classifier/internal/models"
	"journal-classifier/internal/prompt"
)

const (
	TaskType = "classify-journal"
)

// Handler performs exactly one remote call per Execute. It never retries.
type Handler struct {
	config   *Config
	contract *contract.Contract
	prompt   *prompt.Template
	client   llm.Client
	obs      *observability.Observability
	logger   logger.Logger
}

func NewHandler(cfg *Config, c *contract.Contract, client llm.Client, obs *observability.Observability, log logger.Logger) (*Handler, error) {
	text := cfg.PromptTemplate
	if text == "" {
		text = c.PromptTemplate()
	}
	tpl, err := prompt.New(text)
	if err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("contract %q: %v", c.ID(), err))
	}
	tpl = tpl.Partial(prompt.VarFormatInstructions, c.Describe())
	if cfg.Topic != "" {
		tpl = tpl.Partial(prompt.VarTopic, cfg.Topic)
	}
	if _, err := tpl.Render(requestVars("probe")); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("contract %q: %v", c.ID(), err))
	}

	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Handler{
		config:   cfg,
		contract: c,
		prompt:   tpl,
		client:   client,
		obs:      obs,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
			"contract": c.ID(),
		}),
	}, nil
}

func requestVars(text string) map[string]string {
	return map[string]string{
		prompt.VarJournal:  text,
		prompt.VarQuestion: text,
	}
}

// Prompt renders the prompt sent for text.
func (h *Handler) Prompt(text string) (string, error) {
	return h.prompt.Render(requestVars(text))
}

// Execute classifies one request. Every failure is returned as an
// INVOCATION_FAILED error wrapping its cause.
func (h *Handler) Execute(ctx context.Context, input Input) (models.Result, error) {
	log := h.logger.With(map[string]interface{}{
		"index":   input.Request.Index,
		"text":    input.Request.Text,
		"attempt": input.Attempt,
	})
	log.Info("classification started", nil)

	ctx, span := h.obs.StartSpan(ctx, TaskType+".invoke",
		attribute.Int("index", input.Request.Index),
		attribute.Int("attempt", input.Attempt),
		attribute.String("contract", h.contract.ID()),
	)
	defer span.End()

	start := time.Now()
	result, err := h.execute(ctx, input.Request.Text)
	duration := time.Since(start)
	metrics.ClassifierCallDuration.WithLabelValues(TaskType).Observe(duration.Seconds())

	if err != nil {
		code := apperrors.CodeOf(err)
		failure := apperrors.NewInvocationFailure(input.Request.Text, err)
		metrics.ClassifierCalls.WithLabelValues(TaskType, metrics.OutcomeFailure, string(code)).Inc()
		span.RecordError(failure)
		span.SetStatus(codes.Error, string(code))
		log.Error("classification failed", map[string]interface{}{
			"error":      err.Error(),
			"errorCode":     code,
			"errorCategory": apperrors.GetErrorCategory(code),
			"retryable":     failure.Retryable,
			"durationMs":    duration.Milliseconds(),
		})
		return models.Result{}, failure
	}

	metrics.ClassifierCalls.WithLabelValues(TaskType, metrics.OutcomeSuccess, "").Inc()
	log.Info("classification succeeded", map[string]interface{}{
		"result":     result.AsMap(),
		"durationMs": duration.Milliseconds(),
	})
	return result, nil
}

func (h *Handler) execute(ctx context.Context, text string) (models.Result, error) {
	p, err := h.Prompt(text)
	if err != nil {
		return models.Result{}, fmt.Errorf("render prompt: %w", err)
	}

	callCtx := ctx
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	raw, err := h.client.Generate(callCtx, p)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return models.Result{}, apperrors.NewEndpointTimeoutError(h.config.Provider, err)
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return models.Result{}, apperrors.NewCancelledError(h.config.Provider, err)
		}
		return models.Result{}, apperrors.NewEndpointError(h.config.Provider, err)
	}

	return h.contract.Parse(raw)
}
