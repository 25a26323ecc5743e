// internal/workers/nlu/classify-utterance/handler.go
package classifyutterance

import (
	"context"
	"encoding/json"
	stderrors "errors"
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
)

const (
	TaskType = "classify-utterance"
)

// SnapshotProvider hands out the active catalog snapshot, nil until one is loaded.
type SnapshotProvider interface {
	Current() *catalog.Snapshot
}

// ReviewPublisher receives escalated results; errors never fail the job.
type ReviewPublisher interface {
	Publish(ctx context.Context, res *classifier.Result) (string, error)
}

type Handler struct {
	config       *Config
	classifier   *classifier.Classifier
	catalog      SnapshotProvider
	review       ReviewPublisher
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler wires the worker. review and obs may be nil.
func NewHandler(
	config *Config,
	c *classifier.Classifier,
	snapshots SnapshotProvider,
	review ReviewPublisher,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		classifier:   c,
		catalog:      snapshots,
		review:       review,
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
		attribute.String("intent", output.Intent),
		attribute.String("decision", output.Decision),
		attribute.Float64("confidence", output.Confidence),
	)
	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.classifier.Classify(input.Utterance, h.catalog.Current())
	if err != nil {
		if stderrors.Is(err, classifier.ErrCatalogUnavailable) {
			return nil, errors.NewCatalogUnavailableError(err)
		}
		return nil, errors.NewClassificationFailedError(err)
	}

	metrics.Classifications.WithLabelValues(string(res.Intent), string(res.Verdict.Decision)).Inc()
	if res.RuleID != "" {
		metrics.RuleDepth.Observe(float64(len(res.RulesEvaluated)))
	}
	h.obs.RecordClassification(ctx, string(res.Family), string(res.Verdict.Decision))

	if h.review != nil && res.Verdict.Escalate() {
		if _, err := h.review.Publish(ctx, res); err != nil {
			stdErr := errors.NewReviewPublishFailedError(err)
			h.logger.Warn("review publish failed, continuing", map[string]interface{}{
				"sessionId": input.SessionID,
				"code":      stdErr.Code,
				"error":     stdErr.Details,
			})
		}
	}

	h.logger.Info("utterance classified", map[string]interface{}{
		"sessionId":      input.SessionID,
		"intent":         res.Intent,
		"confidence":     res.Confidence,
		"ruleId":         res.RuleID,
		"decision":       res.Verdict.Decision,
		"reason":         res.Verdict.Reason,
		"catalogVersion": res.CatalogVersion,
	})

	return newOutput(res), nil
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
