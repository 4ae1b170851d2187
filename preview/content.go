package preview

// SampleContent maps common placeholder categories to the default sample
// values substituted when a caller wants themed content without supplying
// bindings. Callers can pass entries from this map as bindings keyed by
// element id.
var SampleContent = map[string]string{
	"TITLE":       "Sample Title",
	"SUBTITLE":    "Sample Subtitle",
	"DESCRIPTION": "Sample Description Text",
	"AUTHOR":      "Sample Author",
	"DATE":        "Sample Date",
	"CATEGORY":    "Sample Category",
	"TAG":         "Sample Tag",
	"QUOTE":       "Sample Quote",
	"CTA_TEXT":    "Click Here",
	"PRICE":       "$99",
	"DOMAIN":      "sample.com",
	"SITE_NAME":   "Sample Website",
	"BRAND_NAME":  "Sample Brand",
	"URL":         "www.sample.com",
	"USERNAME":    "@sampleuser",
	"FOLLOWERS":   "1.2K",
	"LIKES":       "456",
	"VIEWS":       "2.3K",
	"RATING":      "4.5",
	"PERCENTAGE":  "85%",
}

// defaultTextContent is the fallback for unbound text elements that carry
// no detected content of their own.
const defaultTextContent = "Sample Text"
