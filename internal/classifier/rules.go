package classifier

import (
	"regexp"

	"tile-intent-workers/internal/catalog"
)

// input is what a rule sees: the normalized text, the extracted entities and the
// snapshot they came from. Refine may add entities; Match must not.
type input struct {
	text string
	ents *Entities
	snap *catalog.Snapshot
	tags []tagRef
}

// Rule is one row of the priority table. The first rule whose Match returns true
// decides the intent and its confidence.
type Rule struct {
	ID         string
	Intent     Intent
	Confidence float64
	Match      func(*input) bool
	Refine     func(*input)
}

func re(expr string) func(*input) bool {
	compiled := regexp.MustCompile(expr)
	return func(in *input) bool { return compiled.MatchString(in.text) }
}

func all(preds ...func(*input) bool) func(*input) bool {
	return func(in *input) bool {
		for _, p := range preds {
			if !p(in) {
				return false
			}
		}
		return true
	}
}

func not(p func(*input) bool) func(*input) bool {
	return func(in *input) bool { return !p(in) }
}

func has(field func(*Entities) bool) func(*input) bool {
	return func(in *input) bool { return field(in.ents) }
}

var (
	hasProduct   = has(func(e *Entities) bool { return e.ProductName != nil })
	hasCategory  = has(func(e *Entities) bool { return e.CategoryID != nil })
	hasOrderItem = has(func(e *Entities) bool { return e.OrderItemName != nil })
	hasOrderID   = has(func(e *Entities) bool { return e.OrderID != nil })
)

func setOrderCount(n int) func(*input) {
	return func(in *input) { in.ents.OrderCount = ptr(n) }
}

func setOnSale(in *input) { in.ents.OnSale = ptr(true) }

func addChipCardTag(in *input) {
	if tag, ok := in.snap.ChipCardTag(); ok {
		in.tags = append(in.tags, tagRef{id: tag.ID, slug: tag.Slug})
	}
}

var orderHistoryWords = re(`\b(?:track|tracking|status|where|last|history|previous|past)\b`)

// rules is evaluated top to bottom. Keep the groups in this order: specific
// conversational intents first, catalog-driven matches next, generic listings last.
var rules = []Rule{
	// Greetings only count when they are the whole message.
	{ID: "greeting.hello", Intent: IntentGreeting, Confidence: 0.99,
		Match: re(`^(?:hi|hello|hey|hiya|howdy|yo|sup)(?:\s+there)?[\s!.?,]*$`)},
	{ID: "greeting.time_of_day", Intent: IntentGreeting, Confidence: 0.99,
		Match: re(`^good\s+(?:morning|afternoon|evening|day)[\s!.?,]*$`)},
	{ID: "greeting.how_are_you", Intent: IntentGreeting, Confidence: 0.99,
		Match: re(`^(?:how\s+are\s+you|how'?s\s+it\s+going|what'?s\s+up)(?:\s+today)?[\s!.?,]*$`)},

	{ID: "order.reorder", Intent: IntentReorder, Confidence: 0.95,
		Match: re(`\bre-?order\b|\b(?:order|buy|get)\s+(?:it|that|this|them|the\s+same(?:\s+thing)?)?\s*again\b|\bsame\s+order\s+again\b`),
		Refine: func(in *input) {
			in.ents.Reorder = ptr(true)
			in.ents.OrderCount = ptr(1)
		}},
	{ID: "order.quick_order", Intent: IntentQuickOrder, Confidence: 0.93,
		Match: all(re(`\b(?:order|buy|purchase|want)\b`), hasOrderItem, not(orderHistoryWords))},
	{ID: "order.tracking", Intent: IntentOrderTracking, Confidence: 0.93,
		Match: re(`\btrack(?:ing)?\b.*\b(?:order|package|shipment|delivery)\b|\b(?:order|package|shipment)\b.*\btrack(?:ing)?\b|\bwhere\s+is\s+my\s+(?:order|package|shipment|delivery)\b|\btracking\s+(?:number|info)`)},
	{ID: "order.status", Intent: IntentOrderStatus, Confidence: 0.93,
		Match: func(in *input) bool {
			return orderStatus(in) || (hasOrderID(in) && !orderHistoryWords(in))
		}},
	{ID: "order.history", Intent: IntentOrderHistory, Confidence: 0.92,
		Match:  re(`\border\s+history\b|\b(?:my|past|previous|all\s+my)\s+orders\b|\bpurchase\s+history\b`),
		Refine: setOrderCount(10)},
	{ID: "order.history_ordered_before", Intent: IntentOrderHistory, Confidence: 0.91,
		Match:  re(`\bwhat\b.*\bordered\b.*\bbefore\b`),
		Refine: setOrderCount(10)},
	{ID: "order.last", Intent: IntentLastOrder, Confidence: 0.94,
		Match:  re(`\b(?:last|latest|most\s+recent|previous)\s+order\b`),
		Refine: setOrderCount(1)},
	{ID: "order.last_bought", Intent: IntentLastOrder, Confidence: 0.94,
		Match:  re(`\bwhat\s+did\s+i\s+(?:order|buy|purchase)\s+last\b`),
		Refine: setOrderCount(1)},
	{ID: "order.what_did_i_order", Intent: IntentLastOrder, Confidence: 0.93,
		Match:  re(`\bwhat\b.*\b(?:did|have)\s+i\b.*\b(?:order|ordered|buy|bought)\b`),
		Refine: setOrderCount(1)},
	{ID: "order.place", Intent: IntentPlaceOrder, Confidence: 0.88,
		Match: re(`\b(?:place|make|submit)\s+(?:an?\s+|my\s+|the\s+)?order\b|\bcheck\s*out\b`)},
	{ID: "order.save_for_later", Intent: IntentSaveForLater, Confidence: 0.87,
		Match: re(`\bsave\b.*\blater\b|\bsave\s+(?:this|it|that)\b`)},
	{ID: "order.wishlist", Intent: IntentWishlist, Confidence: 0.91,
		Match: re(`\bwish\s*list\b|\bfavou?rites?\b`)},

	{ID: "promo.coupon", Intent: IntentCouponInquiry, Confidence: 0.91,
		Match: re(`\bcoupons?\b|\bpromo\s*codes?\b|\bdiscount\s+codes?\b|\bvouchers?\b`)},
	{ID: "promo.bulk", Intent: IntentBulkDiscount, Confidence: 0.92,
		Match: re(`\bbulk\b|\b(?:volume|quantity|wholesale)\s+(?:discounts?|pricing|prices?)\b|\bcontractor\s+pricing\b`)},
	{ID: "promo.clearance", Intent: IntentClearanceProducts, Confidence: 0.92,
		Match:  re(`\bclearance\b|\bcloseouts?\b|\bdiscontinued\b`),
		Refine: setOnSale},
	{ID: "promo.discount", Intent: IntentDiscountInquiry, Confidence: 0.88,
		Match:  re(`\bon\s+sale\b|\bsales?\b|\bdiscount(?:s|ed)?\b|\bdeals?\b|\bmarked\s+down\b`),
		Refine: setOnSale},
	{ID: "promo.promotions", Intent: IntentPromotions, Confidence: 0.88,
		Match: re(`\bpromotions?\b|\bpromos?\b|\bspecial\s+offers?\b|\bspecials\b`)},

	{ID: "sample.request", Intent: IntentSampleRequest, Confidence: 0.90,
		Match: all(re(`\bsamples?\b|\bswatch(?:es)?\b`), not(has(func(e *Entities) bool { return e.SampleSize != nil })))},

	{ID: "subtype.chip_card", Intent: IntentChipCard, Confidence: 0.92,
		Match:  re(`\bchip\s*cards?\b`),
		Refine: addChipCardTag},
	{ID: "subtype.mosaic", Intent: IntentMosaicProducts, Confidence: 0.91,
		Match: re(`\bmosaics?\b`)},
	{ID: "subtype.trim", Intent: IntentTrimProducts, Confidence: 0.90,
		Match: re(`\btrims?\b|\bbullnose\b|\bpencil\s+liners?\b|\bquarter\s+rounds?\b|\bedge\s+pieces?\b`)},
	{ID: "variation.options", Intent: IntentProductVariations, Confidence: 0.89,
		Match: re(`\bvariations?\b|\bvariants?\b|\bother\s+(?:colou?rs|sizes|finishes|options)\b`)},
	{ID: "variation.comes_in", Intent: IntentProductVariations, Confidence: 0.89,
		Match: all(hasProduct, re(`\b(?:what|which)\s+(?:colou?rs|sizes|finishes)\s+(?:does|do|is|are)\b|\b(?:come|comes|available)\s+in\s+(?:other|different)\b`))},
	{ID: "related.similar", Intent: IntentRelatedProducts, Confidence: 0.88,
		Match: re(`\bsimilar\b|\brelated\b|\balternatives?\b|\blike\s+this\b|\bgoes?\s+with\b|\bmatch(?:es|ing)?\s+with\b|\bymal\b`)},

	// The resolver refines this into the filtered or in-category variants.
	{ID: "category.match", Intent: IntentCategoryBrowse, Confidence: 0.94,
		Match: hasCategory},
	{ID: "category.list", Intent: IntentCategoryList, Confidence: 0.91,
		Match: re(`\bcategor(?:y|ies)\b|\bkinds\s+of\s+tiles?\b|\bdepartments?\b`)},

	{ID: "filter.finish", Intent: IntentFilterByFinish, Confidence: 0.89,
		Match: all(has(func(e *Entities) bool { return e.Finish != nil }), not(hasProduct))},
	{ID: "filter.tile_size", Intent: IntentFilterBySize, Confidence: 0.90,
		Match: has(func(e *Entities) bool { return e.TileSize != nil })},
	{ID: "filter.sample_size", Intent: IntentFilterBySize, Confidence: 0.90,
		Match: has(func(e *Entities) bool { return e.SampleSize != nil })},
	{ID: "filter.color", Intent: IntentFilterByColor, Confidence: 0.89,
		Match: all(has(func(e *Entities) bool { return e.Color != nil }), not(hasProduct))},
	{ID: "filter.thickness", Intent: IntentFilterByThickness, Confidence: 0.88,
		Match: has(func(e *Entities) bool { return e.Thickness != nil })},
	{ID: "filter.edge", Intent: IntentFilterByEdge, Confidence: 0.88,
		Match: has(func(e *Entities) bool { return e.Edge != nil })},
	{ID: "filter.origin", Intent: IntentProductByOrigin, Confidence: 0.88,
		Match: all(has(func(e *Entities) bool { return e.Origin != nil }), not(hasProduct))},
	{ID: "filter.application", Intent: IntentFilterByApplication, Confidence: 0.87,
		Match: has(func(e *Entities) bool { return e.Application != nil })},
	{ID: "filter.quick_ship", Intent: IntentProductQuickShip, Confidence: 0.91,
		Match: has(func(e *Entities) bool { return e.QuickShip != nil && *e.QuickShip })},
	{ID: "filter.size_list", Intent: IntentSizeList, Confidence: 0.88,
		Match: re(`\b(?:what|which)\s+sizes\b|\bsizes?\s+(?:are\s+)?(?:available|do\s+you\s+have|do\s+you\s+carry)\b|\blist\s+(?:of\s+)?sizes\b|\bavailable\s+sizes\b`)},
	{ID: "filter.visual", Intent: IntentProductByVisual, Confidence: 0.90,
		Match: has(func(e *Entities) bool { return e.Visual != nil })},
	{ID: "filter.collection", Intent: IntentProductCollection, Confidence: 0.89,
		Match: func(in *input) bool {
			return in.ents.CollectionYear != nil || collectionWord(in)
		}},

	{ID: "product.list_generic", Intent: IntentProductList, Confidence: 0.87,
		Match: re(`\b(?:show|get|list|see)\s+(?:me\s+)?(?:(?:more|all)\s+)?(?:the\s+)?(?:products?|items?|tiles?)\b`)},
	{ID: "product.list_more", Intent: IntentProductList, Confidence: 0.87,
		Match: re(`\b(?:show|list|get|see)\b.*\b(?:more|all)\b.*\bproducts?\b`)},
	{ID: "product.detail", Intent: IntentProductDetail, Confidence: 0.91,
		Match: all(hasProduct, re(`\bdetails?\b|\bspecs?\b|\bspecifications?\b|\btell\s+me\s+(?:more\s+)?about\b|\binfo(?:rmation)?\s+(?:on|about)\b|\bdescribe\b|\bprice\s+(?:of|for)\b|\bhow\s+much\b`))},
	{ID: "product.search", Intent: IntentProductSearch, Confidence: 0.92,
		Match: hasProduct},

	{ID: "catalog.full", Intent: IntentProductCatalog, Confidence: 0.90,
		Match: re(`\bcatalog(?:ue)?s?\b|\bfull\s+(?:range|line)\b|\bbrochures?\b`)},
	{ID: "catalog.types", Intent: IntentProductTypes, Confidence: 0.89,
		Match: re(`\bproduct\s+types\b|\btypes\s+of\s+(?:products?|tiles?)\b|\bwhat\s+do\s+you\s+(?:sell|carry|offer)\b`)},
	{ID: "tiles.listing", Intent: IntentProductList, Confidence: 0.85,
		Match: re(`\b(?:show|list|see|browse|view|find)\b.*\btiles?\b`)},
	{ID: "tiles.mention", Intent: IntentProductList, Confidence: 0.75,
		Match: re(`\btiles?\b`)},
	{ID: "order.item_fallback", Intent: IntentQuickOrder, Confidence: 0.90,
		Match: hasOrderItem},
}

var (
	orderStatus    = re(`\border\s+status\b|\bstatus\s+of\s+(?:my\s+)?order\b|\b(?:has|did)\s+my\s+order\s+(?:ship|shipped|arrive|arrived)\b`)
	collectionWord = re(`\bcollections?\b|\bseries\b`)
)

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// match runs the table against in and returns the winning rule and every rule id
// evaluated up to and including it. ok is false when nothing matched.
func match(table []Rule, in *input) (Rule, []string, bool) {
	evaluated := make([]string, 0, len(table))
	for _, r := range table {
		evaluated = append(evaluated, r.ID)
		if r.Match(in) {
			if r.Refine != nil {
				r.Refine(in)
			}
			return r, evaluated, true
		}
	}
	return Rule{}, evaluated, false
}
