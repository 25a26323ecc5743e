package classifier

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tile-intent-workers/internal/catalog"
)

// keyword maps a surface word to the value stored in the entity.
type keyword struct {
	surface string
	value   string
}

var colorKeywords = []string{
	"white", "grey", "gray", "beige", "black", "brown",
	"taupe", "multi", "cream", "ivory", "blue", "green",
	"red", "yellow", "pink", "orange", "purple",
}

var finishKeywords = []keyword{
	{"matte", "matte"}, {"matt", "matte"}, {"matte finish", "matte"},
	{"polished", "polished"}, {"glossy", "polished"}, {"gloss", "polished"},
	{"honed", "honed"}, {"satin", "satin"}, {"lappato", "lappato"},
	{"structured", "structured"}, {"textured", "textured"},
	{"natural", "natural"}, {"brushed", "brushed"},
}

var visualKeywords = []keyword{
	{"stone", "stone"}, {"marble", "marble"}, {"mosaic", "mosaic"},
	{"terrazzo", "terrazzo"}, {"gauge", "gauge panel"},
	{"pattern", "pattern"}, {"decor", "decor"}, {"shape", "shapes"},
	{"metallic", "metallic"}, {"concrete", "concrete"}, {"wood", "wood"},
	{"travertine", "travertine"}, {"slate", "slate"},
}

var originKeywords = []keyword{
	{"italy", "italy"}, {"italian", "italy"},
	{"turkey", "turkey"}, {"turkish", "turkey"},
	{"spain", "spain"}, {"spanish", "spain"},
	{"china", "china"}, {"chinese", "china"},
	{"india", "india"}, {"indian", "india"},
	{"portugal", "portugal"}, {"portuguese", "portugal"},
}

// longest phrases first
var applicationKeywords = []string{
	"interior wall", "exterior wall",
	"interior floor", "exterior floor",
	"wall and floor", "floor and wall",
	"countertop", "counter top",
	"bathroom", "kitchen", "outdoor",
	"interior", "exterior",
	"floor", "wall",
	"pool", "shower", "backsplash",
}

var edgeKeywords = []keyword{
	{"rectified", "rectified"}, {"bevelled", "beveled"}, {"beveled", "beveled"},
	{"cushioned", "cushioned"}, {"cushion edge", "cushioned"}, {"pressed edge", "pressed"},
	{"straight edge", "straight"},
}

type sizePhrase struct {
	phrase string
	hints  []string
}

var sampleSizePhrases = []sizePhrase{
	{"small sample", []string{"small", "6x", "3x"}},
	{"large sample", []string{"large", "12x", "18x"}},
	{"medium sample", []string{"medium", "9x"}},
}

var tileSizePhrases = []sizePhrase{
	{"extra large", []string{"extra large", "large format"}},
	{"large format", []string{"large", "48", "110"}},
	{"large", []string{"48x48", "48x110", "large"}},
	{"medium", []string{"medium", "24x"}},
	{"small", []string{"small", "12x", "mosaic"}},
}

// product slugs get a variant suffix when the utterance names one
var slugSuffixes = []keyword{
	{"mosaic", "-mosaic"},
	{"chip card", "-chip-card"},
	{"ymal", "-ymal"},
}

var orderItemSkipWords = catalog.NewStopWords(
	"this", "that", "item", "product", "tile", "tiles",
	"some", "the", "a", "an", "my", "again", "more",
	"it", "them", "these", "those", "for", "to", "of",
	"me", "you", "all", "any", "one", "samples", "sample",
)

// reservedWords is the attribute vocabulary. These words never act as product
// name tokens, so "matte" cannot bind a product called "Matte Black Hex" by itself.
func reservedWords() catalog.StopWords {
	var words []string
	add := func(phrase string) {
		for _, w := range strings.Fields(phrase) {
			words = append(words, w, w+"s")
		}
	}
	for _, c := range colorKeywords {
		add(c)
	}
	for _, k := range finishKeywords {
		add(k.surface)
	}
	for _, k := range visualKeywords {
		add(k.surface)
	}
	for _, k := range originKeywords {
		add(k.surface)
	}
	for _, a := range applicationKeywords {
		add(a)
	}
	for _, k := range edgeKeywords {
		add(k.surface)
	}
	return catalog.NewStopWords(words...)
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
