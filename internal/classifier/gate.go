package classifier

// Decision is the confidence gate outcome.
type Decision string

const (
	DecisionAccept               Decision = "ACCEPT"
	DecisionEscalatePre          Decision = "ESCALATE_PRE"
	DecisionEscalatePostEligible Decision = "ESCALATE_POST_ELIGIBLE"
)

// Gate reasons.
const (
	ReasonAccepted            = "accepted"
	ReasonMalformedInput      = "malformed_input"
	ReasonUnknownIntent       = "unknown_intent"
	ReasonLowConfidence       = "low_confidence"
	ReasonMissingEntities     = "missing_entities"
	ReasonUncertainConfidence = "uncertain_confidence"
	ReasonEmptyResults        = "empty_results"
)

type Verdict struct {
	Decision Decision `json:"decision"`
	Reason   string   `json:"reason"`
}

func (v Verdict) Escalate() bool { return v.Decision == DecisionEscalatePre }

// search intents need a product name or a category id to build a query
var searchIntents = map[Intent]bool{
	IntentProductSearch: true,
	IntentProductDetail: true,
}

// order-create intents need something to put in the cart
var orderCreateIntents = map[Intent]bool{
	IntentQuickOrder: true,
	IntentOrderItem:  true,
	IntentPlaceOrder: true,
}

// retryIntents may be reinterpreted once a downstream fetch comes back empty.
var retryIntents = map[Intent]bool{
	IntentProductSearch:       true,
	IntentProductList:         true,
	IntentCategoryBrowse:      true,
	IntentFilterByFinish:      true,
	IntentFilterBySize:        true,
	IntentFilterByColor:       true,
	IntentFilterByApplication: true,
	IntentProductByVisual:     true,
	IntentProductByOrigin:     true,
}

// Gate decides whether a classification is trusted. Confidence equal to Low is
// accepted; for retry intents below Uncertain "accepted" means
// ESCALATE_POST_ELIGIBLE, which still hands the result downstream and only marks
// it for a second attempt if the fetch comes back empty.
type Gate struct {
	Low       float64
	Uncertain float64
}

func (g Gate) Evaluate(r *Result) Verdict {
	if r == nil || r.Intent == IntentUnknown || !r.Intent.Valid() {
		return Verdict{Decision: DecisionEscalatePre, Reason: ReasonUnknownIntent}
	}
	if r.Confidence < g.Low {
		return Verdict{Decision: DecisionEscalatePre, Reason: ReasonLowConfidence}
	}
	if missingAnchors(r.Intent, r.Entities) {
		return Verdict{Decision: DecisionEscalatePre, Reason: ReasonMissingEntities}
	}
	if retryIntents[r.Intent] && r.Confidence < g.Uncertain {
		return Verdict{Decision: DecisionEscalatePostEligible, Reason: ReasonUncertainConfidence}
	}
	return Verdict{Decision: DecisionAccept, Reason: ReasonAccepted}
}

func missingAnchors(intent Intent, e *Entities) bool {
	if e == nil {
		e = &Entities{}
	}
	switch {
	case searchIntents[intent]:
		return e.ProductName == nil && e.CategoryID == nil
	case orderCreateIntents[intent]:
		return e.OrderItemName == nil && e.ProductName == nil
	}
	return false
}

// ShouldRetryAfterFetch reports whether a result that produced resultCount items
// downstream should go to the fallback interpreter for a second attempt.
func ShouldRetryAfterFetch(r *Result, resultCount int) bool {
	return r != nil && retryIntents[r.Intent] && resultCount == 0
}
