// internal/workers/nlu/fallback-interpret/models.go
package fallbackinterpret

import "tile-intent-workers/internal/classifier"

const (
	ModeInterpret   = "interpret"
	ModeRetrySearch = "retry_search"
)

// Input mirrors the classify-utterance output plus what the process learned
// from the downstream fetch.
type Input struct {
	Mode        string               `json:"mode"`
	Utterance   string               `json:"utterance"`
	SessionID   string               `json:"sessionId"`
	Intent      string               `json:"intent"`
	Confidence  float64              `json:"confidence"`
	Reason      string               `json:"reason"`
	Entities    *classifier.Entities `json:"entities"`
	ResultCount int                  `json:"resultCount"`
}

type Output struct {
	Mode       string `json:"mode"`
	RequestID  string `json:"requestId,omitempty"`
	Skipped    bool   `json:"skipped"`
	SkipReason string `json:"skipReason,omitempty"`
	Cached     bool   `json:"cached"`

	// interpret
	FallbackType string            `json:"fallbackType,omitempty"`
	Intent       string            `json:"intent,omitempty"`
	Entities     map[string]string `json:"fallbackEntities,omitempty"`
	BotMessage   string            `json:"botMessage,omitempty"`
	Confidence   float64           `json:"fallbackConfidence,omitempty"`

	// retry_search
	RetryType         string   `json:"retryType,omitempty"`
	CorrectedTerm     string   `json:"correctedTerm,omitempty"`
	SuggestionMessage string   `json:"suggestionMessage,omitempty"`
	Suggestions       []string `json:"suggestions,omitempty"`
}

func skipped(mode, reason string) *Output {
	return &Output{Mode: mode, Skipped: true, SkipReason: reason}
}
