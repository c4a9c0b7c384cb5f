package domain

import "time"

// Provider names accepted by the selection setting.
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
	// ProviderAuto runs the fallback chain: primary first, then the
	// configured fallback on any primary failure.
	ProviderAuto = "auto"
)

// Config is the full application configuration, loaded once at startup.
type Config struct {
	ConfigFormatVersion string               `yaml:"config_format_version"`
	Provider            ProviderSettings     `yaml:"provider"`
	Conversation        ConversationSettings `yaml:"conversation"`
	Fetch               FetchSettings        `yaml:"fetch"`
	Allowlist           []AllowedDomain      `yaml:"allowlist"`
	Search              SearchSettings       `yaml:"search"`
	Server              ServerSettings       `yaml:"server"`
	Logging             LoggingSettings      `yaml:"logging"`
}

// ProviderSettings selects and configures the hosted AI providers.
type ProviderSettings struct {
	Active       string           `yaml:"active"`
	Fallback     string           `yaml:"fallback"`
	SystemPrompt string           `yaml:"system_prompt"`
	Claude       ProviderEndpoint `yaml:"claude"`
	OpenAI       ProviderEndpoint `yaml:"openai"`
}

// ProviderEndpoint carries the opaque credential and dispatch parameters
// for one provider. APIKey wins over APIKeyEnv when both are set.
type ProviderEndpoint struct {
	APIKey    string `yaml:"api_key"`
	APIKeyEnv string `yaml:"api_key_env"`
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// ConversationSettings configures the conversation store.
type ConversationSettings struct {
	Session string `yaml:"session"`
	Backend string `yaml:"backend"` // "file" or "sqlite"
}

// FetchSettings bounds outbound retrieval.
type FetchSettings struct {
	TimeoutSeconds         int    `yaml:"timeout_seconds"`
	MaxAttempts            int    `yaml:"max_attempts"`
	BaseDelayMillis        int    `yaml:"base_delay_ms"`
	DefaultCacheTTLSeconds int    `yaml:"default_cache_ttl_seconds"`
	UserAgent              string `yaml:"user_agent"`
}

// Timeout returns the per-request fetch timeout.
func (f FetchSettings) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// BaseDelay returns the backoff base delay.
func (f FetchSettings) BaseDelay() time.Duration {
	return time.Duration(f.BaseDelayMillis) * time.Millisecond
}

// DefaultCacheTTL returns the response cache TTL used when neither the
// caller nor the matched policy entry supplies one.
func (f FetchSettings) DefaultCacheTTL() time.Duration {
	return time.Duration(f.DefaultCacheTTLSeconds) * time.Second
}

// SearchSettings points generic (non-retailer) retrieval queries at a
// search endpoint. The endpoint's domain must itself be allow-listed.
type SearchSettings struct {
	Endpoint string `yaml:"endpoint"` // %s is replaced with the escaped query
}

// ServerSettings configures the HTTP API consumed by the browser UI.
type ServerSettings struct {
	Addr string `yaml:"addr"`
}

// LoggingSettings configures the zap logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}
