// internal/workers/nlu/fallback-interpret/handler_test.go
package fallbackinterpret

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/catalog/catalogtest"
	"tile-intent-workers/internal/classifier"
	"tile-intent-workers/internal/common/errors"
	"tile-intent-workers/internal/common/logger"
	"tile-intent-workers/internal/fallback"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeInterpreter struct {
	interpretation *fallback.Interpretation
	suggestion     *fallback.RetrySuggestion
	err            error

	interpretCalls []fallback.Request
	retryCalls     []fallback.RetryRequest
}

func (f *fakeInterpreter) Enabled() bool { return true }

func (f *fakeInterpreter) Interpret(ctx context.Context, req fallback.Request) (*fallback.Interpretation, error) {
	f.interpretCalls = append(f.interpretCalls, req)
	if f.err != nil {
		return nil, f.err
	}
	out := *f.interpretation
	out.RequestID = req.ID
	return &out, nil
}

func (f *fakeInterpreter) RetrySearch(ctx context.Context, req fallback.RetryRequest) (*fallback.RetrySuggestion, error) {
	f.retryCalls = append(f.retryCalls, req)
	if f.err != nil {
		return nil, f.err
	}
	out := *f.suggestion
	out.RequestID = req.ID
	return &out, nil
}

func createTestConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		RetryOnEmpty: true,
		ViewLimits:   catalog.ViewLimits{Products: 10, Tags: 5},
		SuggestLimit: 3,
	}
}

func newTestHandler(t *testing.T, interp Interpreter) *Handler {
	t.Helper()
	return NewHandler(createTestConfig(), interp, catalogtest.Store(t), nil, logger.NewTestLogger(t))
}

func resolved() *fallback.Interpretation {
	return &fallback.Interpretation{
		FallbackType: fallback.TypeIntentResolved,
		Intent:       classifier.IntentFilterByColor,
		Entities:     map[string]string{"color": "white"},
		Confidence:   0.8,
	}
}

// ==========================
// interpret
// ==========================

func TestExecute_Interpret(t *testing.T) {
	fake := &fakeInterpreter{interpretation: resolved()}
	handler := newTestHandler(t, fake)

	out, err := handler.Execute(context.Background(), &Input{
		Mode:      ModeInterpret,
		Utterance: "something for a carara bathroom, mail me at jane@example.com",
		Intent:    "unknown",
		Reason:    classifier.ReasonUnknownIntent,
	})
	require.NoError(t, err)

	assert.Equal(t, ModeInterpret, out.Mode)
	assert.False(t, out.Skipped)
	assert.Equal(t, "intent_resolved", out.FallbackType)
	assert.Equal(t, "filter_by_color", out.Intent)
	assert.Equal(t, map[string]string{"color": "white"}, out.Entities)
	assert.InDelta(t, 0.8, out.Confidence, 1e-9)

	require.Len(t, fake.interpretCalls, 1)
	req := fake.interpretCalls[0]
	assert.Equal(t, req.ID, out.RequestID)
	assert.NotContains(t, req.Utterance, "jane@example.com")
	assert.Contains(t, req.Utterance, "[EMAIL]")
	assert.Equal(t, classifier.ReasonUnknownIntent, req.TriggerReason)
	assert.Equal(t, "fixture-1", req.CatalogVersion)
	assert.LessOrEqual(t, len(req.Catalog.Products), 10)
	assert.Contains(t, req.Suggestions, "Carrara")
}

func TestExecute_DefaultsToInterpret(t *testing.T) {
	fake := &fakeInterpreter{interpretation: resolved()}
	handler := newTestHandler(t, fake)

	out, err := handler.Execute(context.Background(), &Input{Utterance: "asdkjhasd", Intent: "not-an-intent"})
	require.NoError(t, err)
	assert.Equal(t, ModeInterpret, out.Mode)

	require.Len(t, fake.interpretCalls, 1)
	assert.Equal(t, classifier.IntentUnknown, fake.interpretCalls[0].OriginalIntent)
}

func TestExecute_InterpretSkipsEmptyUtterance(t *testing.T) {
	fake := &fakeInterpreter{interpretation: resolved()}
	handler := newTestHandler(t, fake)

	out, err := handler.Execute(context.Background(), &Input{Mode: ModeInterpret, Utterance: "  "})
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Equal(t, skipEmptyUtterance, out.SkipReason)
	assert.Empty(t, fake.interpretCalls)
}

func TestExecute_WithoutSnapshot(t *testing.T) {
	fake := &fakeInterpreter{interpretation: resolved()}
	handler := NewHandler(createTestConfig(), fake, catalog.NewStore(), nil, logger.NewNoOpLogger())

	_, err := handler.Execute(context.Background(), &Input{Utterance: "something odd"})
	require.NoError(t, err)

	require.Len(t, fake.interpretCalls, 1)
	assert.Empty(t, fake.interpretCalls[0].CatalogVersion)
	assert.Empty(t, fake.interpretCalls[0].Catalog.Products)
}

// ==========================
// retry_search
// ==========================

func TestExecute_RetrySearch(t *testing.T) {
	productName := "Carara"
	suggestion := &fallback.RetrySuggestion{
		RetryType:     fallback.RetryTypeCorrected,
		CorrectedTerm: "Carrara",
	}

	tests := []struct {
		name        string
		config      func(*Config)
		input       Input
		wantSkip    string
		wantRetried bool
	}{
		{
			name: "empty product search is retried",
			input: Input{
				Mode: ModeRetrySearch, Utterance: "show me carara", Intent: "product_search",
				Confidence: 0.8, Entities: &classifier.Entities{ProductName: &productName},
			},
			wantRetried: true,
		},
		{
			name:     "results were found",
			input:    Input{Mode: ModeRetrySearch, Utterance: "show me carrara", Intent: "product_search", ResultCount: 4},
			wantSkip: skipNotRetryable,
		},
		{
			name:     "intent outside the retry set",
			input:    Input{Mode: ModeRetrySearch, Utterance: "track my order 123", Intent: "order_tracking"},
			wantSkip: skipNotRetryable,
		},
		{
			name:     "retry disabled",
			config:   func(c *Config) { c.RetryOnEmpty = false },
			input:    Input{Mode: ModeRetrySearch, Utterance: "show me carara", Intent: "product_search"},
			wantSkip: skipRetryDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInterpreter{suggestion: suggestion}
			cfg := createTestConfig()
			if tt.config != nil {
				tt.config(cfg)
			}
			handler := NewHandler(cfg, fake, catalogtest.Store(t), nil, logger.NewTestLogger(t))

			out, err := handler.Execute(context.Background(), &tt.input)
			require.NoError(t, err)
			assert.Equal(t, ModeRetrySearch, out.Mode)

			if !tt.wantRetried {
				assert.True(t, out.Skipped)
				assert.Equal(t, tt.wantSkip, out.SkipReason)
				assert.Empty(t, fake.retryCalls)
				return
			}

			assert.False(t, out.Skipped)
			assert.Equal(t, "corrected_search", out.RetryType)
			assert.Equal(t, "Carrara", out.CorrectedTerm)
			require.Len(t, fake.retryCalls, 1)
			assert.Equal(t, classifier.ReasonEmptyResults, fake.retryCalls[0].TriggerReason)
			assert.Contains(t, fake.retryCalls[0].Suggestions, "Carrara")
		})
	}
}

// ==========================
// Errors
// ==========================

func TestExecute_ErrorMapping(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantCode      errors.ErrorCode
		wantRetryable bool
	}{
		{"disabled", fallback.ErrDisabled, errors.ErrCodeFallbackDisabled, false},
		{"timeout", fmt.Errorf("%w: deadline", fallback.ErrTimeout), errors.ErrCodeFallbackTimeout, true},
		{"upstream", fmt.Errorf("%w: status 500", fallback.ErrUpstream), errors.ErrCodeFallbackFailed, true},
		{"invalid response", fmt.Errorf("%w: no intent", fallback.ErrInvalidResponse), errors.ErrCodeFallbackResponseInvalid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, &fakeInterpreter{err: tt.err})

			out, err := handler.Execute(context.Background(), &Input{Mode: ModeInterpret, Utterance: "asdkjhasd"})
			assert.Nil(t, out)
			require.Error(t, err)

			stdErr := errors.Normalize(err)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.Equal(t, tt.wantRetryable, stdErr.Retryable)
			assert.Equal(t, "FALLBACK_UNAVAILABLE", errors.ConvertToBPMNError(stdErr).Code)
		})
	}
}

func TestExecute_InvalidMode(t *testing.T) {
	handler := newTestHandler(t, &fakeInterpreter{})

	_, err := handler.Execute(context.Background(), &Input{Mode: "translate", Utterance: "hola"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.Normalize(err).Code)
}

// ==========================
// Against a chat completion server
// ==========================

func TestExecute_WithInterpreter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "chatcmpl-1",
			"model": "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": `{"fallback_type":"conversational","bot_message":"Could you tell me which room the tiles are for?"}`,
				},
			}},
			"usage": map[string]interface{}{"prompt_tokens": 80, "completion_tokens": 12, "total_tokens": 92},
		})
	}))
	t.Cleanup(srv.Close)

	interp := fallback.NewInterpreter(fallback.Config{
		Enabled: true,
		BaseURL: srv.URL + "/v1",
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	}, nil, logger.NewTestLogger(t))
	handler := newTestHandler(t, interp)

	out, err := handler.Execute(context.Background(), &Input{Mode: ModeInterpret, Utterance: "I need some tiles", Reason: classifier.ReasonLowConfidence})
	require.NoError(t, err)

	assert.Equal(t, "conversational", out.FallbackType)
	assert.Equal(t, "unknown", out.Intent)
	assert.Equal(t, "Could you tell me which room the tiles are for?", out.BotMessage)
	assert.NotEmpty(t, out.RequestID)
	assert.False(t, out.Cached)
}
