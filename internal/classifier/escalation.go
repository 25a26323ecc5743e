package classifier

// Confidence tiers used by Resolve.
const (
	confidenceCategoryProductAttrs = 0.96
	confidenceCategoryProduct      = 0.95
	confidenceCategoryAttrs        = 0.95
	confidenceCategoryOnly         = 0.94
)

// Resolve upgrades a category-family intent to the most specific variant the
// combined signals support:
//
//	category + product + attribute  -> product_search_in_category 0.96
//	category + product              -> product_search_in_category 0.95
//	category + attribute            -> category_browse_filtered   0.95
//	category                        -> category_browse            0.94
//
// Other intents, and results without a category id, are returned unchanged. The
// outcome depends only on the entities, so resolving twice is a no-op.
func Resolve(intent Intent, confidence float64, ents *Entities) (Intent, float64) {
	if intent.Family() != FamilyCategoryBrowse || ents == nil || ents.CategoryID == nil {
		return intent, confidence
	}

	product := ents.ProductName != nil
	attrs := ents.HasAttributes()
	switch {
	case product && attrs:
		return IntentProductSearchCategory, confidenceCategoryProductAttrs
	case product:
		return IntentProductSearchCategory, confidenceCategoryProduct
	case attrs:
		return IntentCategoryBrowseFiltered, confidenceCategoryAttrs
	default:
		return IntentCategoryBrowse, confidenceCategoryOnly
	}
}
