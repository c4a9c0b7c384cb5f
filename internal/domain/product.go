package domain

import (
	"regexp"
	"time"
)

// ProductCacheTTL bounds how long a looked-up product stays fresh. It is
// independent of the generic URL response cache.
const ProductCacheTTL = time.Hour

// Price is a parsed product price.
type Price struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

// Rating aggregates customer review data.
type Rating struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Product is the structured result of a retailer product lookup.
type Product struct {
	ASIN           string            `json:"asin"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Price          Price             `json:"price"`
	Images         []string          `json:"images,omitempty"`
	Rating         Rating            `json:"rating"`
	Features       []string          `json:"features,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	URL            string            `json:"url"`
	RetrievedAt    time.Time         `json:"retrieved_at"`
}

var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// ValidASIN reports whether s is a well-formed Amazon product identifier.
func ValidASIN(s string) bool {
	return asinPattern.MatchString(s)
}
