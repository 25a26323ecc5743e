// Package classifier turns one customer utterance into an intent, its entities and a
// confidence gate decision. It reads a catalog snapshot and nothing else: no network,
// no retries, no state between calls.
package classifier

import "fmt"

// Intent is one value of the closed intent set. Values are stable wire names.
type Intent string

const (
	// Product discovery
	IntentProductList       Intent = "product_list"
	IntentProductSearch     Intent = "product_search"
	IntentProductByVisual   Intent = "product_by_visual"
	IntentProductByTag      Intent = "product_by_tag"
	IntentProductCatalog    Intent = "product_catalog"
	IntentProductTypes      Intent = "product_types"
	IntentProductCollection Intent = "product_by_collection"
	IntentProductByOrigin   Intent = "product_by_origin"
	IntentProductQuickShip  Intent = "product_quick_ship"
	IntentProductDetail     Intent = "product_detail"
	IntentRelatedProducts   Intent = "related_products"

	// Category browsing
	IntentCategoryBrowse         Intent = "category_browse"
	IntentCategoryBrowseFiltered Intent = "category_browse_filtered"
	IntentProductSearchCategory  Intent = "product_search_in_category"
	IntentCategoryList           Intent = "category_list"

	// Attribute filters
	IntentFilterByFinish      Intent = "filter_by_finish"
	IntentFilterBySize        Intent = "filter_by_size"
	IntentFilterByColor       Intent = "filter_by_color"
	IntentFilterByThickness   Intent = "filter_by_thickness"
	IntentFilterByEdge        Intent = "filter_by_edge"
	IntentFilterByApplication Intent = "filter_by_application"
	IntentFilterByMaterial    Intent = "filter_by_material"
	IntentFilterByOrigin      Intent = "filter_by_origin"
	IntentSizeList            Intent = "size_list"

	// Product subtypes
	IntentMosaicProducts Intent = "mosaic_products"
	IntentTrimProducts   Intent = "trim_products"
	IntentChipCard       Intent = "chip_card"

	// Promotions
	IntentDiscountInquiry   Intent = "discount_inquiry"
	IntentBulkDiscount      Intent = "bulk_discount"
	IntentClearanceProducts Intent = "clearance_products"
	IntentPromotions        Intent = "promotions"
	IntentCouponInquiry     Intent = "coupon_inquiry"

	// Account and ordering
	IntentSaveForLater  Intent = "save_for_later"
	IntentWishlist      Intent = "wishlist"
	IntentOrderTracking Intent = "order_tracking"
	IntentOrderStatus   Intent = "order_status"
	IntentPlaceOrder    Intent = "place_order"
	IntentOrderHistory  Intent = "order_history"
	IntentLastOrder     Intent = "last_order"
	IntentReorder       Intent = "reorder"
	IntentOrderItem     Intent = "order_item"
	IntentQuickOrder    Intent = "quick_order"

	// Variations and samples
	IntentProductVariations Intent = "product_variations"
	IntentSampleRequest     Intent = "sample_request"

	IntentGreeting Intent = "greeting"
	IntentUnknown  Intent = "unknown"
)

// Family groups intents for routing and metrics.
type Family string

const (
	FamilyGreeting         Family = "greeting"
	FamilyOrderManagement  Family = "order-management"
	FamilyCategoryBrowse   Family = "category-browse"
	FamilyAttributeFilter  Family = "attribute-filter"
	FamilyProductDiscovery Family = "product-discovery"
	FamilyPromotion        Family = "promotion"
	FamilyFallback         Family = "fallback"
)

var intentFamilies = map[Intent]Family{
	IntentGreeting: FamilyGreeting,

	IntentSaveForLater:  FamilyOrderManagement,
	IntentWishlist:      FamilyOrderManagement,
	IntentOrderTracking: FamilyOrderManagement,
	IntentOrderStatus:   FamilyOrderManagement,
	IntentPlaceOrder:    FamilyOrderManagement,
	IntentOrderHistory:  FamilyOrderManagement,
	IntentLastOrder:     FamilyOrderManagement,
	IntentReorder:       FamilyOrderManagement,
	IntentOrderItem:     FamilyOrderManagement,
	IntentQuickOrder:    FamilyOrderManagement,

	IntentCategoryBrowse:         FamilyCategoryBrowse,
	IntentCategoryBrowseFiltered: FamilyCategoryBrowse,
	IntentProductSearchCategory:  FamilyCategoryBrowse,
	IntentCategoryList:           FamilyCategoryBrowse,

	IntentFilterByFinish:      FamilyAttributeFilter,
	IntentFilterBySize:        FamilyAttributeFilter,
	IntentFilterByColor:       FamilyAttributeFilter,
	IntentFilterByThickness:   FamilyAttributeFilter,
	IntentFilterByEdge:        FamilyAttributeFilter,
	IntentFilterByApplication: FamilyAttributeFilter,
	IntentFilterByMaterial:    FamilyAttributeFilter,
	IntentFilterByOrigin:      FamilyAttributeFilter,
	IntentSizeList:            FamilyAttributeFilter,
	IntentProductByVisual:     FamilyAttributeFilter,
	IntentProductByOrigin:     FamilyAttributeFilter,
	IntentProductCollection:   FamilyAttributeFilter,
	IntentProductQuickShip:    FamilyAttributeFilter,
	IntentProductByTag:        FamilyAttributeFilter,

	IntentProductList:       FamilyProductDiscovery,
	IntentProductSearch:     FamilyProductDiscovery,
	IntentProductCatalog:    FamilyProductDiscovery,
	IntentProductTypes:      FamilyProductDiscovery,
	IntentProductDetail:     FamilyProductDiscovery,
	IntentRelatedProducts:   FamilyProductDiscovery,
	IntentMosaicProducts:    FamilyProductDiscovery,
	IntentTrimProducts:      FamilyProductDiscovery,
	IntentChipCard:          FamilyProductDiscovery,
	IntentProductVariations: FamilyProductDiscovery,
	IntentSampleRequest:     FamilyProductDiscovery,

	IntentDiscountInquiry:   FamilyPromotion,
	IntentBulkDiscount:      FamilyPromotion,
	IntentClearanceProducts: FamilyPromotion,
	IntentPromotions:        FamilyPromotion,
	IntentCouponInquiry:     FamilyPromotion,

	IntentUnknown: FamilyFallback,
}

// allIntents keeps declaration order for AllIntents.
var allIntents = []Intent{
	IntentProductList, IntentProductSearch, IntentProductByVisual, IntentProductByTag,
	IntentProductCatalog, IntentProductTypes, IntentProductCollection, IntentProductByOrigin,
	IntentProductQuickShip, IntentProductDetail, IntentRelatedProducts,
	IntentCategoryBrowse, IntentCategoryBrowseFiltered, IntentProductSearchCategory, IntentCategoryList,
	IntentFilterByFinish, IntentFilterBySize, IntentFilterByColor, IntentFilterByThickness,
	IntentFilterByEdge, IntentFilterByApplication, IntentFilterByMaterial, IntentFilterByOrigin,
	IntentSizeList,
	IntentMosaicProducts, IntentTrimProducts, IntentChipCard,
	IntentDiscountInquiry, IntentBulkDiscount, IntentClearanceProducts, IntentPromotions, IntentCouponInquiry,
	IntentSaveForLater, IntentWishlist, IntentOrderTracking, IntentOrderStatus, IntentPlaceOrder,
	IntentOrderHistory, IntentLastOrder, IntentReorder, IntentOrderItem, IntentQuickOrder,
	IntentProductVariations, IntentSampleRequest,
	IntentGreeting, IntentUnknown,
}

// AllIntents lists every intent in declaration order.
func AllIntents() []Intent {
	return append([]Intent(nil), allIntents...)
}

// Family returns the intent's family; unknown values belong to the fallback family.
func (i Intent) Family() Family {
	if f, ok := intentFamilies[i]; ok {
		return f
	}
	return FamilyFallback
}

func (i Intent) Valid() bool {
	_, ok := intentFamilies[i]
	return ok
}

func (i Intent) String() string { return string(i) }

// ParseIntent accepts a wire name such as "filter_by_finish".
func ParseIntent(s string) (Intent, error) {
	i := Intent(s)
	if !i.Valid() {
		return IntentUnknown, fmt.Errorf("unknown intent %q", s)
	}
	return i, nil
}
