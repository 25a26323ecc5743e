// Package review publishes utterances the rule table could not handle so the rules
// can be tuned offline. Publishing is best effort.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	"tile-intent-workers/internal/classifier"
	awsclient "tile-intent-workers/internal/common/aws"
	"tile-intent-workers/internal/common/config"
	"tile-intent-workers/internal/common/logger"
	"tile-intent-workers/internal/common/metrics"
	"tile-intent-workers/internal/fallback"
)

const (
	StatusPublished = "published"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Message is the review record. The utterance is scrubbed before it is built.
type Message struct {
	ID             string              `json:"id"`
	Utterance      string              `json:"utterance"`
	Intent         classifier.Intent   `json:"intent"`
	Family         classifier.Family   `json:"family"`
	Confidence     float64             `json:"confidence"`
	Decision       classifier.Decision `json:"decision"`
	Reason         string              `json:"reason"`
	RulesEvaluated []string            `json:"rulesEvaluated"`
	CatalogVersion string              `json:"catalogVersion,omitempty"`
	PublishedAt    time.Time           `json:"publishedAt"`
}

// NewMessage builds the review record for res.
func NewMessage(res *classifier.Result) Message {
	return Message{
		ID:             uuid.NewString(),
		Utterance:      fallback.Sanitize(res.Utterance),
		Intent:         res.Intent,
		Family:         res.Family,
		Confidence:     res.Confidence,
		Decision:       res.Verdict.Decision,
		Reason:         res.Verdict.Reason,
		RulesEvaluated: res.RulesEvaluated,
		CatalogVersion: res.CatalogVersion,
		PublishedAt:    time.Now().UTC(),
	}
}

type Publisher struct {
	enabled  bool
	topicARN string
	client   awsclient.SNSService
	logger   logger.Logger
}

func NewPublisher(cfg config.ReviewConfig, client awsclient.SNSService, log logger.Logger) *Publisher {
	return &Publisher{
		enabled:  cfg.Enabled && client != nil && cfg.TopicARN != "",
		topicARN: cfg.TopicARN,
		client:   client,
		logger:   log.WithFields(map[string]interface{}{"component": "review-publisher"}),
	}
}

func (p *Publisher) Enabled() bool { return p != nil && p.enabled }

// Publish sends ESCALATE_PRE results to the review topic and ignores everything
// else. Errors are logged and returned; callers must not fail on them.
func (p *Publisher) Publish(ctx context.Context, res *classifier.Result) (string, error) {
	if !p.Enabled() || res == nil || res.Verdict.Decision != classifier.DecisionEscalatePre {
		metrics.ReviewPublished.WithLabelValues(StatusSkipped).Inc()
		return StatusSkipped, nil
	}

	msg := NewMessage(res)
	body, err := json.Marshal(msg)
	if err != nil {
		metrics.ReviewPublished.WithLabelValues(StatusFailed).Inc()
		return StatusFailed, fmt.Errorf("encode review message: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String("escalated utterance"),
		Message:  aws.String(string(body)),
		MessageAttributes: awsclient.StringAttributes(map[string]string{
			"intent": string(msg.Intent),
			"reason": msg.Reason,
		}),
	})
	if err != nil {
		metrics.ReviewPublished.WithLabelValues(StatusFailed).Inc()
		p.logger.Warn("review publish failed", map[string]interface{}{
			"reviewId": msg.ID,
			"reason":   msg.Reason,
			"error":    err.Error(),
		})
		return StatusFailed, fmt.Errorf("publish review message: %w", err)
	}

	metrics.ReviewPublished.WithLabelValues(StatusPublished).Inc()
	p.logger.Debug("review message published", map[string]interface{}{
		"reviewId": msg.ID,
		"intent":   msg.Intent,
		"reason":   msg.Reason,
	})
	return StatusPublished, nil
}
