package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopmate/internal/domain"
)

func TestResponseCacheRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewResponseCache(func() time.Time { return now })

	result := domain.FetchResult{
		URL:     "https://example.org/page",
		Profile: domain.ProfileGeneric,
		Content: "hello",
	}
	cache.Set(result, time.Minute)

	got, hit := cache.Get(result.URL, domain.ProfileGeneric)
	require.True(t, hit)
	require.Equal(t, "hello", got.Content)

	_, hit = cache.Get(result.URL, domain.ProfileProduct)
	require.False(t, hit, "profile is part of the key")
}

func TestResponseCacheExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewResponseCache(func() time.Time { return now })

	result := domain.FetchResult{URL: "https://example.org", Profile: domain.ProfileGeneric}
	cache.Set(result, time.Minute)

	now = now.Add(59 * time.Second)
	_, hit := cache.Get(result.URL, domain.ProfileGeneric)
	require.True(t, hit)

	now = now.Add(2 * time.Second)
	_, hit = cache.Get(result.URL, domain.ProfileGeneric)
	require.False(t, hit)
	require.Zero(t, cache.Len(), "expired entry evicted on read")
}

func TestResponseCacheSkipsNonPositiveTTL(t *testing.T) {
	cache := NewResponseCache(nil)
	cache.Set(domain.FetchResult{URL: "https://example.org", Profile: domain.ProfileGeneric}, 0)
	cache.Set(domain.FetchResult{URL: "https://example.org", Profile: domain.ProfileGeneric}, -time.Second)
	require.Zero(t, cache.Len())
}
