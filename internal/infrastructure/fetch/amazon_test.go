package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopmate/internal/domain"
	"shopmate/internal/pkg/logger"
)

type fetchCall struct {
	url     string
	profile domain.ExtractionProfile
}

type stubFetcher struct {
	calls  []fetchCall
	result domain.FetchResult
	err    error
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string, profile domain.ExtractionProfile, _ time.Duration) (domain.FetchResult, error) {
	s.calls = append(s.calls, fetchCall{url: rawURL, profile: profile})
	if s.err != nil {
		return domain.FetchResult{}, s.err
	}
	result := s.result
	result.URL = rawURL
	return result, nil
}

func TestLookupBuildsProductFromMetadata(t *testing.T) {
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubFetcher{result: domain.FetchResult{
		Profile:   domain.ProfileProduct,
		Content:   "A very nice keyboard.",
		FetchedAt: fetched,
		Metadata: map[string]string{
			"title":        "Mechanical Keyboard",
			"description":  "Tenkeyless mechanical keyboard",
			"price":        "$129.99",
			"image":        "https://img.example/kb.jpg",
			"rating":       "4.6",
			"rating_count": "1283",
			"features":     "Hot-swappable switches\nPBT keycaps",
			"spec.Layout":  "ANSI",
			"spec.Weight":  "900 g",
		},
	}}

	client := NewAmazonClient(stub, logger.Nop(), "", nil)
	product, err := client.Lookup(context.Background(), "B0ABCDEF12")
	require.NoError(t, err)

	require.Equal(t, "B0ABCDEF12", product.ASIN)
	require.Equal(t, "Mechanical Keyboard", product.Title)
	require.Equal(t, "https://www.amazon.com/dp/B0ABCDEF12", product.URL)
	require.Equal(t, domain.Price{Amount: 129.99, Currency: "USD", Formatted: "$129.99"}, product.Price)
	require.Equal(t, []string{"https://img.example/kb.jpg"}, product.Images)
	require.Equal(t, 4.6, product.Rating.Value)
	require.Equal(t, 1283, product.Rating.Count)
	require.Equal(t, []string{"Hot-swappable switches", "PBT keycaps"}, product.Features)
	require.Equal(t, map[string]string{"Layout": "ANSI", "Weight": "900 g"}, product.Specifications)
	require.Equal(t, fetched, product.RetrievedAt)

	require.Len(t, stub.calls, 1)
	require.Equal(t, domain.ProfileProduct, stub.calls[0].profile)
}

func TestLookupRejectsMalformedASIN(t *testing.T) {
	client := NewAmazonClient(&stubFetcher{}, logger.Nop(), "", nil)

	for _, asin := range []string{"", "short", "b0abcdef1!", "B0ABCDEF123X"} {
		_, err := client.Lookup(context.Background(), asin)
		var failure *domain.Failure
		require.ErrorAs(t, err, &failure, asin)
		require.Equal(t, domain.FailValidation, failure.Kind, asin)
	}
}

func TestLookupNormalizesASINCase(t *testing.T) {
	stub := &stubFetcher{result: domain.FetchResult{Metadata: map[string]string{"title": "Widget"}}}
	client := NewAmazonClient(stub, logger.Nop(), "", nil)

	product, err := client.Lookup(context.Background(), " b0abcdef12 ")
	require.NoError(t, err)
	require.Equal(t, "B0ABCDEF12", product.ASIN)
}

func TestLookupCachesPerASIN(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubFetcher{result: domain.FetchResult{Metadata: map[string]string{"title": "Widget"}}}
	client := NewAmazonClient(stub, logger.Nop(), "", func() time.Time { return now })

	_, err := client.Lookup(context.Background(), "B0ABCDEF12")
	require.NoError(t, err)
	_, err = client.Lookup(context.Background(), "B0ABCDEF12")
	require.NoError(t, err)
	require.Len(t, stub.calls, 1, "second lookup served from the product cache")

	now = now.Add(domain.ProductCacheTTL + time.Second)
	_, err = client.Lookup(context.Background(), "B0ABCDEF12")
	require.NoError(t, err)
	require.Len(t, stub.calls, 2, "expired entry refetched")
}

func TestSearchDecodesListing(t *testing.T) {
	stub := &stubFetcher{result: domain.FetchResult{
		Metadata: map[string]string{
			"item.0.title": "USB-C Hub",
			"item.0.url":   "https://www.amazon.com/dp/B0AAAAAAA1/ref=sr_1",
			"item.0.price": "$39.99",
			"item.1.title": "USB-C Cable",
			"item.1.url":   "https://www.amazon.com/gp/slredirect/x",
		},
	}}
	client := NewAmazonClient(stub, logger.Nop(), "", nil)

	products, err := client.Search(context.Background(), "usb-c hub")
	require.NoError(t, err)
	require.Len(t, products, 2)

	require.Equal(t, "USB-C Hub", products[0].Title)
	require.Equal(t, "B0AAAAAAA1", products[0].ASIN, "ASIN recovered from the product path")
	require.Equal(t, "USD", products[0].Price.Currency)
	require.Equal(t, 39.99, products[0].Price.Amount)

	require.Equal(t, "USB-C Cable", products[1].Title)
	require.Empty(t, products[1].ASIN)

	require.Len(t, stub.calls, 1)
	require.Equal(t, domain.ProfileProductListing, stub.calls[0].profile)
	require.Contains(t, stub.calls[0].url, "/s?k=usb-c+hub")
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	client := NewAmazonClient(&stubFetcher{}, logger.Nop(), "", nil)
	_, err := client.Search(context.Background(), "  ")
	var failure *domain.Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, domain.FailValidation, failure.Kind)
}

func TestSearchPropagatesFetchFailure(t *testing.T) {
	stub := &stubFetcher{err: domain.NewFailure(domain.FailRateLimited, "fetch", "throttled")}
	client := NewAmazonClient(stub, logger.Nop(), "", nil)

	_, err := client.Search(context.Background(), "anything")
	var failure *domain.Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, domain.FailRateLimited, failure.Kind)
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in       string
		amount   float64
		currency string
	}{
		{"$129.99", 129.99, "USD"},
		{"£1,299.00", 1299, "GBP"},
		{"€15", 15, "EUR"},
		{"129.99", 129.99, ""},
	}
	for _, tc := range cases {
		price := parsePrice(tc.in)
		require.Equal(t, tc.in, price.Formatted, tc.in)
		require.Equal(t, tc.amount, price.Amount, tc.in)
		require.Equal(t, tc.currency, price.Currency, tc.in)
	}
}
