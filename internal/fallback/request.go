package fallback

import (
	"regexp"

	"github.com/google/uuid"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/classifier"
)

// Request is everything the interpreter is allowed to see about one escalation.
// It carries no session, customer or order data.
type Request struct {
	ID                 string             `json:"id"`
	Utterance          string             `json:"utterance"`
	OriginalIntent     classifier.Intent  `json:"originalIntent"`
	OriginalConfidence float64            `json:"originalConfidence"`
	TriggerReason      string             `json:"triggerReason"`
	CatalogVersion     string             `json:"catalogVersion,omitempty"`
	Catalog            catalog.PublicView `json:"catalog"`
	Suggestions        []string           `json:"suggestions,omitempty"`
}

var rePlaceholder = regexp.MustCompile(`\[[A-Z]+\]`)

type requestOptions struct {
	limits  catalog.ViewLimits
	suggest int
}

// RequestOption tunes NewRequest.
type RequestOption func(*requestOptions)

// WithViewLimits caps the products and tags copied into the request.
func WithViewLimits(l catalog.ViewLimits) RequestOption {
	return func(o *requestOptions) { o.limits = l }
}

// WithSuggestLimit caps the "did you mean" product names; zero disables them.
func WithSuggestLimit(n int) RequestOption {
	return func(o *requestOptions) { o.suggest = n }
}

// NewRequest builds the privacy-filtered request for an escalated result.
// res and snap may be nil; the request then carries only the scrubbed utterance.
func NewRequest(utterance string, res *classifier.Result, v classifier.Verdict, snap *catalog.Snapshot, opts ...RequestOption) Request {
	o := requestOptions{limits: catalog.DefaultViewLimits(), suggest: 3}
	for _, opt := range opts {
		opt(&o)
	}

	req := Request{
		ID:             uuid.NewString(),
		Utterance:      Sanitize(utterance),
		OriginalIntent: classifier.IntentUnknown,
		TriggerReason:  v.Reason,
		Catalog: catalog.PublicView{
			Products:   []string{},
			Categories: []catalog.CategoryRef{},
			Attributes: map[string][]string{},
			Tags:       []catalog.TagRef{},
		},
	}
	if res != nil {
		req.OriginalIntent = res.Intent
		req.OriginalConfidence = res.Confidence
	}
	if snap != nil {
		req.CatalogVersion = snap.Version()
		req.Catalog = snap.PublicView(o.limits)
		req.Suggestions = suggestions(snap, req.Utterance, res, o.suggest)
	}
	return req
}

// suggestions prefers the name the extractor already found and falls back to the
// longer words of the utterance.
func suggestions(snap *catalog.Snapshot, utterance string, res *classifier.Result, limit int) []string {
	if limit <= 0 {
		return nil
	}

	var queries []string
	if res != nil && res.Entities != nil {
		if res.Entities.ProductName != nil {
			queries = append(queries, *res.Entities.ProductName)
		}
		if res.Entities.OrderItemName != nil {
			queries = append(queries, *res.Entities.OrderItemName)
		}
	}
	folded := catalog.Fold(rePlaceholder.ReplaceAllString(utterance, " "))
	for _, span := range catalog.Words(folded) {
		if w := folded[span.Start:span.End]; len(w) >= 4 {
			queries = append(queries, w)
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, q := range queries {
		for _, name := range snap.Suggest(q, limit) {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
