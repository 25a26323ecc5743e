// internal/workers/nlu/classify-utterance/models.go
package classifyutterance

import "tile-intent-workers/internal/classifier"

type Input struct {
	Utterance string `json:"utterance"`
	SessionID string `json:"sessionId"`
}

type Output struct {
	Intent         string               `json:"intent"`
	Family         string               `json:"family"`
	Confidence     float64              `json:"confidence"`
	Entities       *classifier.Entities `json:"entities"`
	RuleID         string               `json:"ruleId,omitempty"`
	RulesEvaluated []string             `json:"rulesEvaluated"`
	Decision       string               `json:"decision"`
	Reason         string               `json:"reason"`
	CatalogVersion string               `json:"catalogVersion"`
}

func newOutput(res *classifier.Result) *Output {
	return &Output{
		Intent:         string(res.Intent),
		Family:         string(res.Family),
		Confidence:     res.Confidence,
		Entities:       res.Entities,
		RuleID:         res.RuleID,
		RulesEvaluated: res.RulesEvaluated,
		Decision:       string(res.Verdict.Decision),
		Reason:         res.Verdict.Reason,
		CatalogVersion: res.CatalogVersion,
	}
}
