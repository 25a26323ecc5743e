package fallback

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"tile-intent-workers/internal/classifier"
	"tile-intent-workers/internal/common/config"
	"tile-intent-workers/internal/common/database"
	apperrors "tile-intent-workers/internal/common/errors"
	httpclient "tile-intent-workers/internal/common/http"
	"tile-intent-workers/internal/common/logger"
)

var (
	ErrDisabled        = errors.New("fallback interpreter disabled")
	ErrTimeout         = errors.New("fallback interpreter timeout")
	ErrUpstream        = errors.New("fallback interpreter request failed")
	ErrInvalidResponse = errors.New("fallback interpreter response invalid")
)

// FallbackType says what the model managed to do with the utterance.
type FallbackType string

const (
	TypeIntentResolved  FallbackType = "intent_resolved"
	TypeEntityExtracted FallbackType = "entity_extracted"
	TypeConversational  FallbackType = "conversational"
)

// RetryType says whether a zero-result search can be retried with a new term.
type RetryType string

const (
	RetryTypeCorrected  RetryType = "corrected_search"
	RetryTypeSuggestion RetryType = "suggestion"
)

const defaultConfidence = 0.70

// Interpretation is the model's reading of an escalated utterance.
type Interpretation struct {
	RequestID    string            `json:"requestId"`
	FallbackType FallbackType      `json:"fallbackType"`
	Intent       classifier.Intent `json:"intent"`
	Entities     map[string]string `json:"entities,omitempty"`
	BotMessage   string            `json:"botMessage,omitempty"`
	Confidence   float64           `json:"confidence"`
	Model        string            `json:"model,omitempty"`
	TokensUsed   int               `json:"tokensUsed,omitempty"`
	Cached       bool              `json:"cached"`
}

// RetryRequest describes a search that returned nothing.
type RetryRequest struct {
	Request
	ResultCount int `json:"resultCount"`
}

// RetrySuggestion is the model's answer to an empty result page.
type RetrySuggestion struct {
	RequestID         string    `json:"requestId"`
	RetryType         RetryType `json:"retryType"`
	CorrectedTerm     string    `json:"correctedTerm,omitempty"`
	SuggestionMessage string    `json:"suggestionMessage,omitempty"`
	Suggestions       []string  `json:"suggestions,omitempty"`
	Model             string    `json:"model,omitempty"`
	TokensUsed        int       `json:"tokensUsed,omitempty"`
	Cached            bool      `json:"cached"`
}

// Config holds interpreter settings in their runtime types.
type Config struct {
	Enabled     bool
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	CacheTTL    time.Duration
}

// ConfigFromApp maps the fallback section of the application config.
func ConfigFromApp(cfg config.FallbackConfig) Config {
	return Config{
		Enabled:     cfg.Enabled,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     time.Duration(cfg.Timeout) * time.Millisecond,
		CacheTTL:    time.Duration(cfg.CacheTTL) * time.Millisecond,
	}
}

// Interpreter calls an OpenAI-compatible chat completion endpoint. The cache is
// optional; a nil cache or a failing redis only costs an extra model call.
type Interpreter struct {
	cfg    Config
	client *openai.Client
	cache  *database.RedisClient
	logger logger.Logger
}

func NewInterpreter(cfg Config, cache *database.RedisClient, log logger.Logger) *Interpreter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	// the request context carries the real deadline; this only stops a stuck transport
	clientCfg.HTTPClient = httpclient.NewClient(2*cfg.Timeout, "tile-intent-workers/fallback")
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}

	return &Interpreter{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "fallback-interpreter"}),
	}
}

func (i *Interpreter) Enabled() bool { return i != nil && i.cfg.Enabled }

// Interpret asks the model for an intent when the rule table could not decide.
func (i *Interpreter) Interpret(ctx context.Context, req Request) (*Interpretation, error) {
	if !i.Enabled() {
		return nil, ErrDisabled
	}

	key := cacheKey("interpret", req.Utterance, string(req.OriginalIntent), req.TriggerReason, req.CatalogVersion)
	var cached Interpretation
	if i.cacheGet(ctx, key, &cached) {
		cached.RequestID = req.ID
		cached.Cached = true
		return &cached, nil
	}

	i.logger.Info("fallback interpret triggered", map[string]interface{}{
		"requestId":      req.ID,
		"reason":         req.TriggerReason,
		"originalIntent": req.OriginalIntent,
		"confidence":     req.OriginalConfidence,
	})

	content, meta, err := i.complete(ctx, interpretPrompt(req.Catalog), req.Utterance)
	if err != nil {
		return nil, err
	}

	out, err := parseInterpretation(content)
	if err != nil {
		i.logger.Warn("fallback interpretation rejected", map[string]interface{}{
			"requestId": req.ID,
			"error":     err.Error(),
		})
		return nil, err
	}
	out.RequestID = req.ID
	out.Model = meta.model
	out.TokensUsed = meta.tokens

	i.logger.Info("fallback interpret resolved", map[string]interface{}{
		"requestId":    req.ID,
		"fallbackType": out.FallbackType,
		"intent":       out.Intent,
		"confidence":   out.Confidence,
	})

	i.cacheSet(ctx, key, out)
	return out, nil
}

// RetrySearch asks for a corrected term after a search came back empty.
func (i *Interpreter) RetrySearch(ctx context.Context, req RetryRequest) (*RetrySuggestion, error) {
	if !i.Enabled() {
		return nil, ErrDisabled
	}

	key := cacheKey("retry", req.Utterance, string(req.OriginalIntent), req.CatalogVersion)
	var cached RetrySuggestion
	if i.cacheGet(ctx, key, &cached) {
		cached.RequestID = req.ID
		cached.Cached = true
		return &cached, nil
	}

	i.logger.Info("fallback retry triggered", map[string]interface{}{
		"requestId":      req.ID,
		"originalIntent": req.OriginalIntent,
		"resultCount":    req.ResultCount,
	})

	content, meta, err := i.complete(ctx, retryPrompt(req.Catalog, req.Utterance), req.Utterance)
	if err != nil {
		return nil, err
	}

	out, err := parseRetry(content)
	if err != nil {
		return nil, err
	}
	out.RequestID = req.ID
	out.Suggestions = req.Suggestions
	out.Model = meta.model
	out.TokensUsed = meta.tokens

	i.logger.Info("fallback retry resolved", map[string]interface{}{
		"requestId":     req.ID,
		"retryType":     out.RetryType,
		"correctedTerm": out.CorrectedTerm,
	})

	i.cacheSet(ctx, key, out)
	return out, nil
}

type completionMeta struct {
	model  string
	tokens int
}

func (i *Interpreter) complete(ctx context.Context, system, user string) (string, completionMeta, error) {
	if i.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: i.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   i.cfg.MaxTokens,
		Temperature: float32(i.cfg.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", completionMeta{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", completionMeta{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", completionMeta{}, fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}

	meta := completionMeta{model: resp.Model, tokens: resp.Usage.TotalTokens}
	i.logger.Debug("fallback completion", map[string]interface{}{
		"model":        resp.Model,
		"inputTokens":  resp.Usage.PromptTokens,
		"outputTokens": resp.Usage.CompletionTokens,
		"latencyMs":    time.Since(start).Milliseconds(),
	})
	return resp.Choices[0].Message.Content, meta, nil
}

var reFencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if m := reFencedJSON.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return content
}

type rawInterpretation struct {
	FallbackType string                 `json:"fallback_type"`
	Intent       string                 `json:"intent"`
	Entities     map[string]interface{} `json:"entities"`
	BotMessage   string                 `json:"bot_message"`
	Confidence   *float64               `json:"confidence"`
}

func parseInterpretation(content string) (*Interpretation, error) {
	var raw rawInterpretation
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	out := &Interpretation{
		FallbackType: FallbackType(raw.FallbackType),
		BotMessage:   raw.BotMessage,
		Confidence:   defaultConfidence,
		Entities:     stringEntities(raw.Entities),
	}
	if out.FallbackType == "" {
		out.FallbackType = TypeConversational
	}
	if raw.Confidence != nil {
		out.Confidence = *raw.Confidence
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence %v out of range", ErrInvalidResponse, out.Confidence)
	}

	switch out.FallbackType {
	case TypeConversational:
		out.Intent = classifier.IntentUnknown
		if intent, err := classifier.ParseIntent(raw.Intent); err == nil {
			out.Intent = intent
		}
	case TypeIntentResolved, TypeEntityExtracted:
		intent, err := classifier.ParseIntent(raw.Intent)
		if err != nil || intent == classifier.IntentUnknown {
			return nil, fmt.Errorf("%w: intent %q", ErrInvalidResponse, raw.Intent)
		}
		out.Intent = intent
	default:
		return nil, fmt.Errorf("%w: fallback_type %q", ErrInvalidResponse, raw.FallbackType)
	}
	return out, nil
}

// stringEntities keeps scalar values; nested objects and nulls are dropped.
func stringEntities(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			if val = strings.TrimSpace(val); val != "" {
				out[k] = val
			}
		case float64, bool:
			out[k] = fmt.Sprint(val)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseRetry(content string) (*RetrySuggestion, error) {
	var raw struct {
		RetryType         string `json:"retry_type"`
		CorrectedTerm     string `json:"corrected_term"`
		SuggestionMessage string `json:"suggestion_message"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	out := &RetrySuggestion{
		RetryType:         RetryType(raw.RetryType),
		CorrectedTerm:     strings.TrimSpace(raw.CorrectedTerm),
		SuggestionMessage: raw.SuggestionMessage,
	}
	switch out.RetryType {
	case "":
		out.RetryType = RetryTypeSuggestion
	case RetryTypeCorrected, RetryTypeSuggestion:
	default:
		return nil, fmt.Errorf("%w: retry_type %q", ErrInvalidResponse, raw.RetryType)
	}
	// A correction without a term cannot be searched.
	if out.RetryType == RetryTypeCorrected && out.CorrectedTerm == "" {
		out.RetryType = RetryTypeSuggestion
	}
	return out, nil
}

func cacheKey(kind string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "fallback:" + kind + ":" + hex.EncodeToString(sum[:])
}

func (i *Interpreter) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	if i.cache == nil {
		return false
	}
	err := i.cache.GetJSON(ctx, key, dst)
	if err == nil {
		return true
	}
	if !errors.Is(err, database.ErrCacheMiss) {
		i.logCacheError("read", err)
	}
	return false
}

func (i *Interpreter) cacheSet(ctx context.Context, key string, value interface{}) {
	if i.cache == nil || i.cfg.CacheTTL <= 0 {
		return
	}
	if err := i.cache.SetJSON(ctx, key, value, i.cfg.CacheTTL); err != nil {
		i.logCacheError("write", err)
	}
}

func (i *Interpreter) logCacheError(op string, err error) {
	stdErr := apperrors.NewCacheUnavailableError(err)
	i.logger.Warn("fallback cache "+op+" failed", map[string]interface{}{
		"code":  stdErr.Code,
		"error": stdErr.Details,
	})
}
