package fallback

import (
	"fmt"
	"sort"
	"strings"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/classifier"
)

const (
	promptProducts = 50
	promptTerms    = 10
)

// promptIntents are the intents offered to the model, with the hint it sees.
var promptIntents = []struct {
	intent classifier.Intent
	hint   string
}{
	{classifier.IntentProductSearch, "User wants to find a specific product"},
	{classifier.IntentProductList, "User wants to see products without naming one"},
	{classifier.IntentCategoryBrowse, "User wants to browse a category"},
	{classifier.IntentFilterByFinish, "User wants tiles by finish (matte, polished, etc.)"},
	{classifier.IntentFilterByColor, "User wants tiles by color"},
	{classifier.IntentFilterBySize, "User wants tiles by size"},
	{classifier.IntentFilterByApplication, "User wants tiles for a specific use (floor, wall, etc.)"},
	{classifier.IntentProductByVisual, "User wants a look such as marble, wood or stone"},
	{classifier.IntentProductByOrigin, "User wants tiles from a country"},
	{classifier.IntentSampleRequest, "User wants samples"},
	{classifier.IntentPromotions, "User asks about sales or discounts"},
	{classifier.IntentOrderStatus, "User asks about an existing order"},
}

const interpretFormat = `You are an assistant for a tile store, helping customers find tile products.

**Your task**: Interpret the user's message and return structured JSON to help route their query.

**Available Products** (sample): %s

**Categories**: %s

**Available Attributes**:
%s

**Valid Intents**:
%s

**Privacy Rules**:
- Never ask for or reference customer personal information
- Never mention customer IDs, emails, phone numbers or addresses
- Only work with public product catalog information

**Response Format** (JSON only):
{
  "intent": "product_search",
  "entities": {
    "product_name": "Carrara",
    "category_name": "Floor Tiles",
    "finish": "Polished",
    "color_tone": "White",
    "application": "Kitchen"
  },
  "bot_message": "I found some marble tiles for your kitchen!",
  "confidence": 0.85,
  "fallback_type": "intent_resolved"
}

**fallback_type options**:
- "intent_resolved": you identified a clear intent and entities
- "entity_extracted": you extracted additional entities to help with search
- "conversational": general answer, no product intent; use intent "unknown"

Return only the JSON object.`

const retryFormat = `You are an assistant helping customers find products when their search returned no results.

**Available Products** (sample): %s

**Categories**: %s

**User searched for**: %s

**Task**: Suggest a corrected search term or a helpful alternative.

**Response Format** (JSON only):
{
  "retry_type": "corrected_search",
  "corrected_term": "Carrara",
  "suggestion_message": "Did you mean 'Carrara'? Let me search for that."
}

or

{
  "retry_type": "suggestion",
  "suggestion_message": "I couldn't find that product. Here are some similar options you might like."
}

Return only the JSON object.`

func interpretPrompt(view catalog.PublicView) string {
	return fmt.Sprintf(interpretFormat,
		productSample(view),
		categoryNames(view),
		attributeLines(view),
		intentLines(),
	)
}

func retryPrompt(view catalog.PublicView, utterance string) string {
	return fmt.Sprintf(retryFormat, productSample(view), categoryNames(view), utterance)
}

func productSample(view catalog.PublicView) string {
	products := view.Products
	if len(products) > promptProducts {
		products = products[:promptProducts]
	}
	return strings.Join(products, ", ")
}

func categoryNames(view catalog.PublicView) string {
	names := make([]string, 0, len(view.Categories))
	for _, c := range view.Categories {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func attributeLines(view catalog.PublicView) string {
	if len(view.Attributes) == 0 {
		return "None available"
	}

	slugs := make([]string, 0, len(view.Attributes))
	for slug := range view.Attributes {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	lines := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		terms := view.Attributes[slug]
		if len(terms) > promptTerms {
			terms = terms[:promptTerms]
		}
		name := strings.ReplaceAll(strings.TrimPrefix(slug, "pa_"), "-", " ")
		lines = append(lines, fmt.Sprintf("- %s: %s", name, strings.Join(terms, ", ")))
	}
	return strings.Join(lines, "\n")
}

func intentLines() string {
	lines := make([]string, len(promptIntents))
	for i, p := range promptIntents {
		lines[i] = fmt.Sprintf("- %s: %s", p.intent, p.hint)
	}
	return strings.Join(lines, "\n")
}
