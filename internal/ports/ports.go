// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The application core depends only on these contracts; the adapters under
// internal/infrastructure supply concrete implementations (HTTP clients,
// SQLite, the YAML config loader). Tests substitute stubs for any port.
package ports

import (
	"context"
	"time"

	"shopmate/internal/domain"
)

// ConfigProvider loads the configuration from persistent storage.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ConversationRepository persists one conversation context per session as
// a single record, read and written as one unit.
type ConversationRepository interface {
	Load(ctx context.Context, session string) (domain.ConversationContext, bool, error)
	Save(ctx context.Context, session string, conversation domain.ConversationContext) error
	Delete(ctx context.Context, session string) error
}

// Provider is one hosted AI backend. Complete issues a single logical
// chat-completion call; transport retries happen inside the
// implementation, and failures come back as *domain.Failure.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req ProviderRequest) (string, error)
}

// ProviderRequest is the provider-agnostic shape of one completion call.
type ProviderRequest struct {
	System   string
	Messages []domain.Message
}

// ProviderFactory builds provider instances by name, verifying that the
// required credential is configured.
type ProviderFactory interface {
	ForName(name string) (Provider, error)
}

// Fetcher is the Fetch Core boundary: policy-checked, rate-limited,
// cached, retried retrieval of allow-listed web content.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, profile domain.ExtractionProfile, cacheTTL time.Duration) (domain.FetchResult, error)
}

// ProductSource is the retailer product-lookup specialization built on the
// Fetcher.
type ProductSource interface {
	Lookup(ctx context.Context, asin string) (domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
}

// Extractor reduces raw page markup to text plus metadata under a profile.
type Extractor interface {
	Extract(rawMarkup, pageURL string, profile domain.ExtractionProfile) domain.Extraction
}

// Connectivity reports whether the runtime currently has network access.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// Logger is the structured logging abstraction used across the core.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
