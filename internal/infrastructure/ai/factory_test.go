package ai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shopmate/internal/domain"
	"shopmate/internal/pkg/logger"
	"shopmate/internal/pkg/retry"
)

func TestForNameRequiresCredential(t *testing.T) {
	factory := NewFactory(domain.ProviderSettings{
		Claude: domain.ProviderEndpoint{APIKeyEnv: "SHOPMATE_TEST_UNSET_KEY"},
	}, retry.Default(), nil, logger.Nop())

	_, err := factory.ForName(domain.ProviderClaude)
	require.ErrorIs(t, err, domain.ErrMissingCredential)

	var failure *domain.Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, domain.FailAuthentication, failure.Kind)
}

func TestForNameInlineKeyWins(t *testing.T) {
	t.Setenv("SHOPMATE_TEST_KEY", "from-env")
	factory := NewFactory(domain.ProviderSettings{
		Claude: domain.ProviderEndpoint{APIKey: "inline", APIKeyEnv: "SHOPMATE_TEST_KEY"},
		OpenAI: domain.ProviderEndpoint{APIKeyEnv: "SHOPMATE_TEST_KEY"},
	}, retry.Default(), nil, logger.Nop())

	claude, err := factory.ForName(domain.ProviderClaude)
	require.NoError(t, err)
	require.Equal(t, domain.ProviderClaude, claude.Name())

	openAI, err := factory.ForName(domain.ProviderOpenAI)
	require.NoError(t, err)
	require.Equal(t, domain.ProviderOpenAI, openAI.Name())
}

func TestForNameUnknownProvider(t *testing.T) {
	factory := NewFactory(domain.ProviderSettings{}, retry.Default(), nil, logger.Nop())

	_, err := factory.ForName("mistral")
	var failure *domain.Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, domain.FailValidation, failure.Kind)
}
