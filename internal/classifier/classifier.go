package classifier

import (
	"errors"

	"tile-intent-workers/internal/catalog"
)

var ErrCatalogUnavailable = errors.New("catalog snapshot unavailable")

// Result is one classification. It is built fresh per call and never mutated by
// the classifier afterwards.
type Result struct {
	Utterance      string    `json:"utterance"`
	Normalized     string    `json:"normalized"`
	Intent         Intent    `json:"intent"`
	Family         Family    `json:"family"`
	Confidence     float64   `json:"confidence"`
	Entities       *Entities `json:"entities"`
	RuleID         string    `json:"ruleId,omitempty"`
	RulesEvaluated []string  `json:"rulesEvaluated"`
	Verdict        Verdict   `json:"verdict"`
	CatalogVersion string    `json:"catalogVersion,omitempty"`
}

// Classifier is stateless between calls and safe for concurrent use.
type Classifier struct {
	cfg      Config
	gate     Gate
	stop     catalog.StopWords
	reserved catalog.StopWords
	rules    []Rule
}

func New(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{
		cfg:      cfg,
		gate:     Gate{Low: cfg.LowConfidenceThreshold, Uncertain: cfg.UncertainThreshold},
		stop:     catalog.NewStopWords(cfg.StopWords...),
		reserved: reservedWords(),
		rules:    rules,
	}, nil
}

func (c *Classifier) Gate() Gate { return c.gate }

func (c *Classifier) Config() Config { return c.cfg }

// Classify runs extraction, the rule table, the escalation resolver and the gate.
// Only a missing snapshot is an error; everything else is a Result.
func (c *Classifier) Classify(utterance string, snap *catalog.Snapshot) (*Result, error) {
	if snap == nil {
		return nil, ErrCatalogUnavailable
	}

	res := &Result{
		Utterance:      utterance,
		Intent:         IntentUnknown,
		Family:         FamilyFallback,
		Entities:       &Entities{},
		RulesEvaluated: []string{},
		CatalogVersion: snap.Version(),
	}

	u, ok := NewUtterance(utterance)
	if !ok {
		res.Verdict = Verdict{Decision: DecisionEscalatePre, Reason: ReasonMalformedInput}
		return res, nil
	}
	res.Normalized = u.Normalized()

	x := &extractor{
		snap:     snap,
		stop:     c.stop,
		reserved: c.reserved,
		match: catalog.MatchOptions{
			Stop:           c.stop,
			Reserved:       c.reserved,
			MinSimilarity:  c.cfg.FuzzyMinSimilarity,
			MinFuzzyLength: c.cfg.FuzzyMinLength,
		},
	}
	ents, tags := x.Extract(u.Normalized())

	in := &input{text: u.Normalized(), ents: ents, snap: snap, tags: tags}
	rule, evaluated, matched := match(c.rules, in)
	res.RulesEvaluated = evaluated
	if matched {
		res.RuleID = rule.ID
		res.Intent, res.Confidence = Resolve(rule.Intent, rule.Confidence, ents)
	}

	ents.collectTags(in.tags...)
	res.Entities = ents
	res.Family = res.Intent.Family()
	res.Verdict = c.gate.Evaluate(res)
	return res, nil
}
