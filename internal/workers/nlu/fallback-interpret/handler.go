// internal/workers/nlu/fallback-interpret/handler.go
package fallbackinterpret

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/classifier"
	"tile-intent-workers/internal/common/errors"
	"tile-intent-workers/internal/common/logger"
	"tile-intent-workers/internal/common/metrics"
	"tile-intent-workers/internal/common/observability"
	"tile-intent-workers/internal/fallback"
)

const (
	TaskType = "fallback-interpret"
)

const (
	skipEmptyUtterance = "empty_utterance"
	skipRetryDisabled  = "retry_disabled"
	skipNotRetryable   = "not_retryable"
)

// Interpreter is satisfied by *fallback.Interpreter.
type Interpreter interface {
	Enabled() bool
	Interpret(ctx context.Context, req fallback.Request) (*fallback.Interpretation, error)
	RetrySearch(ctx context.Context, req fallback.RetryRequest) (*fallback.RetrySuggestion, error)
}

type SnapshotProvider interface {
	Current() *catalog.Snapshot
}

type Handler struct {
	config       *Config
	interpreter  Interpreter
	catalog      SnapshotProvider
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(
	config *Config,
	interpreter Interpreter,
	snapshots SnapshotProvider,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		interpreter:  interpreter,
		catalog:      snapshots,
		obs:          obs,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("job.key", job.Key))
	defer span.End()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewInvalidInputError("parse input: "+err.Error()), start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.failJob(ctx, client, job, err, start)
		return
	}

	span.SetAttributes(
		attribute.String("mode", output.Mode),
		attribute.Bool("skipped", output.Skipped),
		attribute.Bool("cached", output.Cached),
	)
	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	mode := input.Mode
	if mode == "" {
		mode = ModeInterpret
	}

	var (
		output *Output
		err    error
	)
	switch mode {
	case ModeInterpret:
		output, err = h.interpret(ctx, input)
	case ModeRetrySearch:
		output, err = h.retrySearch(ctx, input)
	default:
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unsupported mode %q", input.Mode))
	}

	if err != nil {
		metrics.FallbackRequests.WithLabelValues(mode, outcomeOf(err)).Inc()
		return nil, mapError(err)
	}

	metrics.FallbackRequests.WithLabelValues(mode, output.outcome()).Inc()
	h.logger.Info("fallback completed", map[string]interface{}{
		"sessionId":  input.SessionID,
		"mode":       mode,
		"requestId":  output.RequestID,
		"skipped":    output.Skipped,
		"skipReason": output.SkipReason,
		"cached":     output.Cached,
	})
	return output, nil
}

func (h *Handler) interpret(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Utterance) == "" {
		return skipped(ModeInterpret, skipEmptyUtterance), nil
	}

	res := h.result(input)
	verdict := classifier.Verdict{Decision: classifier.DecisionEscalatePre, Reason: input.Reason}
	req := fallback.NewRequest(input.Utterance, res, verdict, h.snapshot(), h.requestOptions()...)

	interp, err := h.interpreter.Interpret(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Output{
		Mode:         ModeInterpret,
		RequestID:    interp.RequestID,
		Cached:       interp.Cached,
		FallbackType: string(interp.FallbackType),
		Intent:       string(interp.Intent),
		Entities:     interp.Entities,
		BotMessage:   interp.BotMessage,
		Confidence:   interp.Confidence,
	}, nil
}

func (h *Handler) retrySearch(ctx context.Context, input *Input) (*Output, error) {
	if !h.config.RetryOnEmpty {
		return skipped(ModeRetrySearch, skipRetryDisabled), nil
	}

	res := h.result(input)
	if !classifier.ShouldRetryAfterFetch(res, input.ResultCount) {
		return skipped(ModeRetrySearch, skipNotRetryable), nil
	}

	verdict := classifier.Verdict{Decision: classifier.DecisionEscalatePostEligible, Reason: classifier.ReasonEmptyResults}
	req := fallback.RetryRequest{
		Request:     fallback.NewRequest(input.Utterance, res, verdict, h.snapshot(), h.requestOptions()...),
		ResultCount: input.ResultCount,
	}

	sugg, err := h.interpreter.RetrySearch(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Output{
		Mode:              ModeRetrySearch,
		RequestID:         sugg.RequestID,
		Cached:            sugg.Cached,
		RetryType:         string(sugg.RetryType),
		CorrectedTerm:     sugg.CorrectedTerm,
		SuggestionMessage: sugg.SuggestionMessage,
		Suggestions:       sugg.Suggestions,
	}, nil
}

// result rebuilds the parts of the classification the fallback request reads.
// Unknown intent names are treated as unknown rather than rejected.
func (h *Handler) result(input *Input) *classifier.Result {
	intent, err := classifier.ParseIntent(input.Intent)
	if err != nil {
		intent = classifier.IntentUnknown
	}
	ents := input.Entities
	if ents == nil {
		ents = &classifier.Entities{}
	}
	return &classifier.Result{
		Utterance:  input.Utterance,
		Intent:     intent,
		Family:     intent.Family(),
		Confidence: input.Confidence,
		Entities:   ents,
	}
}

// snapshot may be nil; the request then goes out without catalog context.
func (h *Handler) snapshot() *catalog.Snapshot {
	if h.catalog == nil {
		return nil
	}
	return h.catalog.Current()
}

func (h *Handler) requestOptions() []fallback.RequestOption {
	return []fallback.RequestOption{
		fallback.WithViewLimits(h.config.ViewLimits),
		fallback.WithSuggestLimit(h.config.SuggestLimit),
	}
}

func (o *Output) outcome() string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.Cached:
		return "cached"
	case o.FallbackType != "":
		return o.FallbackType
	default:
		return o.RetryType
	}
}

func outcomeOf(err error) string {
	switch {
	case stderrors.Is(err, fallback.ErrDisabled):
		return "disabled"
	case stderrors.Is(err, fallback.ErrTimeout):
		return "timeout"
	case stderrors.Is(err, fallback.ErrInvalidResponse):
		return "invalid_response"
	default:
		return "failed"
	}
}

func mapError(err error) error {
	switch {
	case stderrors.Is(err, fallback.ErrDisabled):
		return errors.NewFallbackDisabledError()
	case stderrors.Is(err, fallback.ErrTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewFallbackTimeoutError(err)
	case stderrors.Is(err, fallback.ErrInvalidResponse):
		return errors.NewFallbackResponseInvalidError(err.Error())
	default:
		return errors.NewFallbackFailedError(err)
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.failJob(ctx, client, job, errors.NewInternalError(err), start)
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "completed")
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, "failed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "failed")

	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
