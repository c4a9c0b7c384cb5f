package services

import (
	"regexp"
	"strings"
)

// IntentKind classifies a user message as plain chat or an embedded
// retrieval request.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentWebLookup
	IntentProductLookup
)

// Intent is the result of retrieval-intent detection.
type Intent struct {
	Kind  IntentKind
	Query string // cleaned lookup subject
	URL   string // explicit URL carried in the message, if any
	ASIN  string // retailer product id carried in the message, if any
}

// Ordered general retrieval patterns; the first match wins and its capture
// becomes the query.
var retrievalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:look\s*up|search\s+for|find\s+me|look\s+for)\s+(.+)$`),
	regexp.MustCompile(`(?i)(?:what(?:'s|\s+is)\s+the\s+)?price\s+(?:of|for)\s+(.+)`),
	regexp.MustCompile(`(?i)compare\s+prices?\s+(?:for|of)\s+(.+)`),
	regexp.MustCompile(`(?i)^\s*(?:can|could)\s+you\s+(?:look\s*up|find|check)\s+(.+)$`),
}

var (
	urlPattern  = regexp.MustCompile(`https?://\S+`)
	asinPattern = regexp.MustCompile(`\b(B0[A-Z0-9]{8})\b`)
	// trailing retailer qualifiers stripped from the query subject
	retailerSuffix = regexp.MustCompile(`(?i)\s+(?:on|at|from)\s+amazon(?:\.com)?\s*[?.!]*$`)
)

// DetectIntent matches message against the retrieval patterns and, when
// matched, further classifies retailer-specific product queries. A message
// matching both takes the retailer-specific path.
func DetectIntent(message string) Intent {
	trimmed := strings.TrimSpace(message)

	var query string
	for _, pattern := range retrievalPatterns {
		if m := pattern.FindStringSubmatch(trimmed); m != nil {
			query = strings.TrimRight(strings.TrimSpace(m[1]), "?.!")
			break
		}
	}
	if query == "" {
		return Intent{Kind: IntentNone}
	}

	intent := Intent{Kind: IntentWebLookup, Query: query}
	if u := urlPattern.FindString(trimmed); u != "" {
		intent.URL = strings.TrimRight(u, ".,;)")
	}

	// Retailer-specific classification takes precedence over the general
	// web path.
	lower := strings.ToLower(trimmed)
	if m := asinPattern.FindStringSubmatch(trimmed); m != nil {
		intent.Kind = IntentProductLookup
		intent.ASIN = m[1]
	} else if strings.Contains(lower, "amazon") {
		intent.Kind = IntentProductLookup
	}

	if intent.Kind == IntentProductLookup {
		intent.Query = strings.TrimSpace(retailerSuffix.ReplaceAllString(intent.Query, ""))
	}
	return intent
}
