package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"shopmate/internal/domain"
)

func TestLoadWritesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, domain.ProviderClaude, cfg.Provider.Active)
	require.Equal(t, domain.ProviderOpenAI, cfg.Provider.Fallback)
	require.NotEmpty(t, cfg.Provider.SystemPrompt)
	require.NotEmpty(t, cfg.Allowlist)
	require.Equal(t, 3, cfg.Fetch.MaxAttempts)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "config may hold credentials")
}

func TestLoadHydratesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := `provider:
  active: openai
fetch:
  timeout_seconds: 5
`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o600))

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, domain.ProviderOpenAI, cfg.Provider.Active)
	require.Equal(t, 5, cfg.Fetch.TimeoutSeconds)
	// omitted settings filled from defaults
	require.Equal(t, 3, cfg.Fetch.MaxAttempts)
	require.NotEmpty(t, cfg.Provider.SystemPrompt)
	require.NotEmpty(t, cfg.Allowlist)
	require.Equal(t, "default", cfg.Conversation.Session)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [unclosed"), 0o600))

	_, err := NewFileLoader(path).Load(context.Background())
	require.Error(t, err)
}

func TestEnvOverrideSelectsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv("SHOPMATE_CONFIG", path)

	loader := NewFileLoader("")
	require.Equal(t, path, loader.Path())
}

func TestAllowlistDefaultsPermitProductProfiles(t *testing.T) {
	cfg := Default()

	var amazon *domain.AllowedDomain
	for i := range cfg.Allowlist {
		if cfg.Allowlist[i].Domain == "amazon.com" {
			amazon = &cfg.Allowlist[i]
		}
	}
	require.NotNil(t, amazon)
	require.True(t, amazon.AllowSubdomains)
	require.True(t, amazon.PermitsProfile(domain.ProfileProduct))
	require.True(t, amazon.PermitsProfile(domain.ProfileProductListing))
	require.Positive(t, amazon.RequestsPerMinute)
}
