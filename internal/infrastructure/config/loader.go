package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"shopmate/internal/domain"
	"shopmate/internal/pkg/filesystem"
	"shopmate/internal/ports"
)

// FileLoader loads YAML configuration from ~/.shopmate/config.yaml
// (overridable via SHOPMATE_CONFIG or an explicit path).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A default config file is written
// on first run.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return hydrateDefaults(cfg), nil
}

// Path reports the config file location the loader resolves to.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("SHOPMATE_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// Default returns the configuration written on first run.
func Default() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Provider: domain.ProviderSettings{
			Active:   domain.ProviderClaude,
			Fallback: domain.ProviderOpenAI,
			SystemPrompt: "You are ShopMate, a friendly retail support assistant. " +
				"Answer questions about products, orders, shipping and returns concisely. " +
				"When retrieved page data is included in a message, ground your answer in it.",
			Claude: domain.ProviderEndpoint{
				APIKeyEnv: "ANTHROPIC_API_KEY",
				Endpoint:  "https://api.anthropic.com/v1/messages",
				Model:     "claude-3-5-sonnet-20240620",
				MaxTokens: 1024,
			},
			OpenAI: domain.ProviderEndpoint{
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "gpt-4o-mini",
				MaxTokens: 1024,
			},
		},
		Conversation: domain.ConversationSettings{
			Session: "default",
			Backend: "file",
		},
		Fetch: domain.FetchSettings{
			TimeoutSeconds:         15,
			MaxAttempts:            3,
			BaseDelayMillis:        1000,
			DefaultCacheTTLSeconds: 900,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		},
		Allowlist: []domain.AllowedDomain{
			{
				Domain:          "amazon.com",
				AllowSubdomains: true,
				Profiles: []domain.ExtractionProfile{
					domain.ProfileProduct, domain.ProfileProductListing,
					domain.ProfileReview, domain.ProfileGeneric,
				},
				RequestsPerMinute: 10,
				CacheTTLSeconds:   1800,
			},
			{
				Domain:          "ebay.com",
				AllowSubdomains: true,
				Profiles: []domain.ExtractionProfile{
					domain.ProfileProduct, domain.ProfileProductListing,
					domain.ProfileGeneric,
				},
				RequestsPerMinute: 10,
				CacheTTLSeconds:   1800,
			},
			{
				Domain:          "html.duckduckgo.com",
				AllowSubdomains: false,
				Profiles:        []domain.ExtractionProfile{domain.ProfileGeneric},
				RequestsPerMinute: 6,
				CacheTTLSeconds:   600,
			},
		},
		Search: domain.SearchSettings{
			Endpoint: "https://html.duckduckgo.com/html/?q=%s",
		},
		Server:  domain.ServerSettings{Addr: ":8720"},
		Logging: domain.LoggingSettings{Level: "info"},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	def := Default()
	if cfg.Provider.Active == "" {
		cfg.Provider.Active = def.Provider.Active
	}
	if cfg.Provider.SystemPrompt == "" {
		cfg.Provider.SystemPrompt = def.Provider.SystemPrompt
	}
	if cfg.Provider.Claude.Endpoint == "" {
		cfg.Provider.Claude.Endpoint = def.Provider.Claude.Endpoint
	}
	if cfg.Provider.Claude.Model == "" {
		cfg.Provider.Claude.Model = def.Provider.Claude.Model
	}
	if cfg.Provider.OpenAI.Model == "" {
		cfg.Provider.OpenAI.Model = def.Provider.OpenAI.Model
	}
	if cfg.Conversation.Session == "" {
		cfg.Conversation.Session = def.Conversation.Session
	}
	if cfg.Conversation.Backend == "" {
		cfg.Conversation.Backend = def.Conversation.Backend
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = def.Fetch.TimeoutSeconds
	}
	if cfg.Fetch.MaxAttempts == 0 {
		cfg.Fetch.MaxAttempts = def.Fetch.MaxAttempts
	}
	if cfg.Fetch.BaseDelayMillis == 0 {
		cfg.Fetch.BaseDelayMillis = def.Fetch.BaseDelayMillis
	}
	if cfg.Fetch.DefaultCacheTTLSeconds == 0 {
		cfg.Fetch.DefaultCacheTTLSeconds = def.Fetch.DefaultCacheTTLSeconds
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = def.Fetch.UserAgent
	}
	if len(cfg.Allowlist) == 0 {
		cfg.Allowlist = def.Allowlist
	}
	if cfg.Search.Endpoint == "" {
		cfg.Search.Endpoint = def.Search.Endpoint
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
