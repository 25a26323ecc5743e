// internal/workers/nlu/classify-utterance/handler_test.go
package classifyutterance

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/catalog/catalogtest"
	"tile-intent-workers/internal/classifier"
	"tile-intent-workers/internal/common/errors"
	"tile-intent-workers/internal/common/logger"
	"tile-intent-workers/internal/common/observability"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeReview struct {
	published []*classifier.Result
	err       error
}

func (f *fakeReview) Publish(ctx context.Context, res *classifier.Result) (string, error) {
	f.published = append(f.published, res)
	if f.err != nil {
		return "failed", f.err
	}
	return "published", nil
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func newTestHandler(t *testing.T, store *catalog.Store, review ReviewPublisher) *Handler {
	t.Helper()
	c, err := classifier.New(classifier.DefaultConfig())
	require.NoError(t, err)
	return NewHandler(createTestConfig(), c, store, review, nil, logger.NewTestLogger(t))
}

// ==========================
// Execute
// ==========================

func TestExecute_Classifies(t *testing.T) {
	tests := []struct {
		name         string
		utterance    string
		wantIntent   string
		wantFamily   string
		wantDecision string
		wantReason   string
	}{
		{
			name:         "product search",
			utterance:    "Show me Carrara",
			wantIntent:   "product_search",
			wantFamily:   "product-discovery",
			wantDecision: "ACCEPT",
			wantReason:   "accepted",
		},
		{
			name:         "filtered category browse",
			utterance:    "show me matte wall tiles",
			wantIntent:   "category_browse_filtered",
			wantFamily:   "category-browse",
			wantDecision: "ACCEPT",
			wantReason:   "accepted",
		},
		{
			name:         "greeting",
			utterance:    "good morning",
			wantIntent:   "greeting",
			wantFamily:   "greeting",
			wantDecision: "ACCEPT",
			wantReason:   "accepted",
		},
		{
			name:         "gibberish",
			utterance:    "asdkjhasd",
			wantIntent:   "unknown",
			wantFamily:   "fallback",
			wantDecision: "ESCALATE_PRE",
			wantReason:   "unknown_intent",
		},
		{
			name:         "empty utterance",
			utterance:    "   ",
			wantIntent:   "unknown",
			wantFamily:   "fallback",
			wantDecision: "ESCALATE_PRE",
			wantReason:   "malformed_input",
		},
	}

	handler := newTestHandler(t, catalogtest.Store(t), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := handler.Execute(context.Background(), &Input{Utterance: tt.utterance, SessionID: "sess-1"})
			require.NoError(t, err)

			assert.Equal(t, tt.wantIntent, out.Intent)
			assert.Equal(t, tt.wantFamily, out.Family)
			assert.Equal(t, tt.wantDecision, out.Decision)
			assert.Equal(t, tt.wantReason, out.Reason)
			assert.Equal(t, "fixture-1", out.CatalogVersion)
			assert.NotNil(t, out.Entities)
			assert.NotNil(t, out.RulesEvaluated)
		})
	}
}

func TestExecute_OutputVariables(t *testing.T) {
	handler := newTestHandler(t, catalogtest.Store(t), nil)

	out, err := handler.Execute(context.Background(), &Input{Utterance: "Show me Carrara"})
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &vars))
	for _, key := range []string{"intent", "family", "confidence", "entities", "rulesEvaluated", "decision", "reason", "catalogVersion"} {
		assert.Contains(t, vars, key)
	}
	entities := vars["entities"].(map[string]interface{})
	assert.Equal(t, float64(catalogtest.ProductCarrara), entities["productId"])
}

func TestExecute_CatalogUnavailable(t *testing.T) {
	handler := newTestHandler(t, catalog.NewStore(), nil)

	out, err := handler.Execute(context.Background(), &Input{Utterance: "Show me Carrara"})
	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, classifier.ErrCatalogUnavailable))

	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeCatalogUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 3, errors.ConvertToBPMNError(stdErr).Retries)
}

func TestExecute_ReviewPublishing(t *testing.T) {
	t.Run("escalated results are published", func(t *testing.T) {
		review := &fakeReview{}
		handler := newTestHandler(t, catalogtest.Store(t), review)

		_, err := handler.Execute(context.Background(), &Input{Utterance: "asdkjhasd"})
		require.NoError(t, err)
		require.Len(t, review.published, 1)
		assert.Equal(t, classifier.ReasonUnknownIntent, review.published[0].Verdict.Reason)
	})

	t.Run("accepted results are not", func(t *testing.T) {
		review := &fakeReview{}
		handler := newTestHandler(t, catalogtest.Store(t), review)

		_, err := handler.Execute(context.Background(), &Input{Utterance: "Show me Carrara"})
		require.NoError(t, err)
		assert.Empty(t, review.published)
	})

	t.Run("publish failure does not fail the job", func(t *testing.T) {
		review := &fakeReview{err: stderrors.New("SNS service unavailable")}
		handler := newTestHandler(t, catalogtest.Store(t), review)

		out, err := handler.Execute(context.Background(), &Input{Utterance: "I want to place an order"})
		require.NoError(t, err)
		assert.Equal(t, "ESCALATE_PRE", out.Decision)
		assert.Equal(t, "missing_entities", out.Reason)
		assert.Len(t, review.published, 1)
	})
}

func TestExecute_RecordsClassification(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := observability.New("test", observability.WithRegisterer(reg))
	t.Cleanup(obs.Shutdown)

	c, err := classifier.New(classifier.DefaultConfig())
	require.NoError(t, err)
	handler := NewHandler(createTestConfig(), c, catalogtest.Store(t), nil, obs, logger.NewNoOpLogger())

	_, err = handler.Execute(context.Background(), &Input{Utterance: "good morning"})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "intents_classified_total")
}

func TestExecute_SwapsSnapshots(t *testing.T) {
	store := catalogtest.Store(t)
	handler := newTestHandler(t, store, nil)

	d := catalogtest.Data()
	d.Version = "fixture-2"
	next, err := catalog.NewSnapshot(d)
	require.NoError(t, err)
	store.Swap(next)

	out, err := handler.Execute(context.Background(), &Input{Utterance: "Show me Carrara"})
	require.NoError(t, err)
	assert.Equal(t, "fixture-2", out.CatalogVersion)
}
