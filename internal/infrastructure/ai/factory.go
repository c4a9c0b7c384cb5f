package ai

import (
	"os"

	"shopmate/internal/domain"
	"shopmate/internal/pkg/retry"
	"shopmate/internal/ports"
)

// Factory builds provider clients from configuration, verifying the
// credential before construction.
type Factory struct {
	cfg    domain.ProviderSettings
	policy retry.Config
	sleep  retry.Sleeper
	log    ports.Logger
}

// NewFactory builds the factory with the shared retry policy.
func NewFactory(cfg domain.ProviderSettings, policy retry.Config, sleep retry.Sleeper, log ports.Logger) *Factory {
	if policy.MaxAttempts == 0 {
		policy = retry.Default()
	}
	return &Factory{cfg: cfg, policy: policy, sleep: sleep, log: log}
}

// ForName implements ports.ProviderFactory. A selected provider without a
// configured credential returns domain.ErrMissingCredential.
func (f *Factory) ForName(name string) (ports.Provider, error) {
	switch name {
	case domain.ProviderClaude:
		key := resolveKey(f.cfg.Claude)
		if key == "" {
			return nil, &domain.Failure{
				Kind: domain.FailAuthentication,
				Op:   "claude",
				Err:  domain.ErrMissingCredential,
			}
		}
		return NewClaudeClient(f.cfg.Claude, key, f.policy, f.sleep, f.log), nil
	case domain.ProviderOpenAI:
		key := resolveKey(f.cfg.OpenAI)
		if key == "" {
			return nil, &domain.Failure{
				Kind: domain.FailAuthentication,
				Op:   "openai",
				Err:  domain.ErrMissingCredential,
			}
		}
		return NewOpenAIClient(f.cfg.OpenAI, key, f.policy, f.sleep, f.log), nil
	default:
		return nil, domain.NewFailure(domain.FailValidation, "provider", "unknown provider: "+name)
	}
}

// resolveKey returns the inline key, falling back to the configured
// environment variable.
func resolveKey(cfg domain.ProviderEndpoint) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if cfg.APIKeyEnv != "" {
		return os.Getenv(cfg.APIKeyEnv)
	}
	return ""
}

var _ ports.ProviderFactory = (*Factory)(nil)
