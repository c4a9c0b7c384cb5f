package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"shopmate/internal/domain"
	"shopmate/internal/pkg/retry"
	"shopmate/internal/ports"
)

// OpenAIClient talks to the OpenAI chat completions endpoint through the
// official-style SDK.
type OpenAIClient struct {
	client *openai.Client
	cfg    domain.ProviderEndpoint
	policy retry.Config
	sleep  retry.Sleeper
	log    ports.Logger
}

// NewOpenAIClient builds the client with a resolved credential. A
// non-empty cfg.Endpoint overrides the SDK's base URL.
func NewOpenAIClient(cfg domain.ProviderEndpoint, apiKey string, policy retry.Config, sleep retry.Sleeper, log ports.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		policy: policy,
		sleep:  sleep,
		log:    log,
	}
}

func (c *OpenAIClient) Name() string { return domain.ProviderOpenAI }

// Complete implements ports.Provider.
func (c *OpenAIClient) Complete(ctx context.Context, req ports.ProviderRequest) (string, error) {
	messages := buildChatMessages(req)

	var reply string
	err := retry.Do(ctx, c.policy, c.sleep, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, providerTimeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model:     c.cfg.Model,
			Messages:  messages,
			MaxTokens: maxTokens(c.cfg),
		})
		if err != nil {
			return classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return domain.NewFailure(domain.FailUnknown, "openai", "no choices in response")
		}
		reply = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	return reply, err
}

func buildChatMessages(req ports.ProviderRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return messages
}

// classifyOpenAIError tags SDK errors at the fault site: API errors by
// status, everything else as transport-level.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.ClassifyStatus("openai", apiErr.HTTPStatusCode)
	}
	return domain.ClassifyTransport("openai", err)
}

var _ ports.Provider = (*OpenAIClient)(nil)
