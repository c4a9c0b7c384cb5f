package fetch

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"shopmate/internal/domain"
	"shopmate/internal/ports"
)

// defaultAmazonBase is the retail origin product lookups go through.
const defaultAmazonBase = "https://www.amazon.com"

var dpPathPattern = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)

// AmazonClient is the product-lookup specialization built atop the Fetch
// Core. Products are cached per ASIN with a fixed TTL, independent of the
// generic URL cache.
type AmazonClient struct {
	fetcher ports.Fetcher
	log     ports.Logger
	baseURL string

	mu    sync.Mutex
	cache map[string]cachedProduct
	now   func() time.Time
}

type cachedProduct struct {
	product   domain.Product
	expiresAt time.Time
}

// NewAmazonClient builds the client. Empty baseURL selects the production
// origin; a nil clock uses time.Now.
func NewAmazonClient(fetcher ports.Fetcher, log ports.Logger, baseURL string, now func() time.Time) *AmazonClient {
	if baseURL == "" {
		baseURL = defaultAmazonBase
	}
	if now == nil {
		now = time.Now
	}
	return &AmazonClient{
		fetcher: fetcher,
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   make(map[string]cachedProduct),
		now:     now,
	}
}

// Lookup implements ports.ProductSource for a single ASIN.
func (c *AmazonClient) Lookup(ctx context.Context, asin string) (domain.Product, error) {
	asin = strings.ToUpper(strings.TrimSpace(asin))
	if !domain.ValidASIN(asin) {
		return domain.Product{}, domain.NewFailure(domain.FailValidation, "amazon", "malformed ASIN: "+asin)
	}

	if product, ok := c.cachedLookup(asin); ok {
		return product, nil
	}

	pageURL := c.baseURL + "/dp/" + asin
	result, err := c.fetcher.Fetch(ctx, pageURL, domain.ProfileProduct, domain.ProductCacheTTL)
	if err != nil {
		return domain.Product{}, err
	}

	product := productFromResult(asin, result)
	c.store(asin, product)
	return product, nil
}

// Search fetches the retailer search page for query and parses the result
// listing best-effort. An empty result set is a valid outcome, not a
// failure.
func (c *AmazonClient) Search(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewFailure(domain.FailValidation, "amazon", "empty search query")
	}

	searchURL := c.baseURL + "/s?k=" + url.QueryEscape(query)
	result, err := c.fetcher.Fetch(ctx, searchURL, domain.ProfileProductListing, 0)
	if err != nil {
		return nil, err
	}

	products := listingFromResult(result)
	c.log.Debug("amazon search parsed", map[string]interface{}{
		"query":   query,
		"results": len(products),
	})
	return products, nil
}

func (c *AmazonClient) cachedLookup(asin string) (domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[asin]
	if !ok {
		return domain.Product{}, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.cache, asin)
		return domain.Product{}, false
	}
	return entry.product, true
}

func (c *AmazonClient) store(asin string, product domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[asin] = cachedProduct{product: product, expiresAt: c.now().Add(domain.ProductCacheTTL)}
}

// productFromResult assembles a Product from the extractor's product
// profile metadata.
func productFromResult(asin string, result domain.FetchResult) domain.Product {
	md := result.Metadata
	product := domain.Product{
		ASIN:        asin,
		Title:       md["title"],
		Description: md["description"],
		URL:         result.URL,
		RetrievedAt: result.FetchedAt,
	}

	if formatted := md["price"]; formatted != "" {
		product.Price = parsePrice(formatted)
	}
	if image := md["image"]; image != "" {
		product.Images = append(product.Images, image)
	}
	if value, err := strconv.ParseFloat(md["rating"], 64); err == nil {
		product.Rating.Value = value
	}
	if count, err := strconv.Atoi(md["rating_count"]); err == nil {
		product.Rating.Count = count
	}
	if features := md["features"]; features != "" {
		product.Features = strings.Split(features, "\n")
	}

	for key, value := range md {
		if label, ok := strings.CutPrefix(key, "spec."); ok {
			if product.Specifications == nil {
				product.Specifications = make(map[string]string)
			}
			product.Specifications[label] = value
		}
	}

	if product.Description == "" && result.Content != "" {
		product.Description = excerpt(result.Content, 400)
	}
	return product
}

// listingFromResult decodes the indexed item.N.* metadata emitted by the
// product-listing profile.
func listingFromResult(result domain.FetchResult) []domain.Product {
	var products []domain.Product
	for i := 0; ; i++ {
		prefix := fmt.Sprintf("item.%d.", i)
		title := result.Metadata[prefix+"title"]
		itemURL := result.Metadata[prefix+"url"]
		if title == "" && itemURL == "" {
			break
		}

		product := domain.Product{
			Title:       title,
			URL:         itemURL,
			RetrievedAt: result.FetchedAt,
		}
		if m := dpPathPattern.FindStringSubmatch(itemURL); m != nil {
			product.ASIN = m[1]
		}
		if formatted := result.Metadata[prefix+"price"]; formatted != "" {
			product.Price = parsePrice(formatted)
		}
		products = append(products, product)
	}
	return products
}

var priceAmountPattern = regexp.MustCompile(`[0-9][0-9.,]*`)

// parsePrice splits a formatted price string like "$129.99" into amount
// and currency best-effort; the formatted original is always kept.
func parsePrice(formatted string) domain.Price {
	price := domain.Price{Formatted: formatted}

	switch {
	case strings.ContainsRune(formatted, '$'):
		price.Currency = "USD"
	case strings.ContainsRune(formatted, '£'):
		price.Currency = "GBP"
	case strings.ContainsRune(formatted, '€'):
		price.Currency = "EUR"
	}

	if m := priceAmountPattern.FindString(formatted); m != "" {
		cleaned := strings.ReplaceAll(m, ",", "")
		if amount, err := strconv.ParseFloat(cleaned, 64); err == nil {
			price.Amount = amount
		}
	}
	return price
}

func excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "…"
}

var _ ports.ProductSource = (*AmazonClient)(nil)
