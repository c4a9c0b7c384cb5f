// Package ai provides the hosted provider clients. Both providers share
// the retry/backoff discipline of the fetch core and classify failures as
// tagged *domain.Failure values at the point of observation.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"shopmate/internal/domain"
	"shopmate/internal/pkg/retry"
	"shopmate/internal/ports"
)

const (
	anthropicVersion = "2023-06-01"
	providerTimeout  = 60 * time.Second
)

// ClaudeClient talks to the Anthropic messages endpoint.
type ClaudeClient struct {
	cfg    domain.ProviderEndpoint
	apiKey string
	client *http.Client
	policy retry.Config
	sleep  retry.Sleeper
	log    ports.Logger
}

// NewClaudeClient builds the client with a resolved credential.
func NewClaudeClient(cfg domain.ProviderEndpoint, apiKey string, policy retry.Config, sleep retry.Sleeper, log ports.Logger) *ClaudeClient {
	return &ClaudeClient{
		cfg:    cfg,
		apiKey: apiKey,
		client: &http.Client{Timeout: providerTimeout},
		policy: policy,
		sleep:  sleep,
		log:    log,
	}
}

func (c *ClaudeClient) Name() string { return domain.ProviderClaude }

// Complete implements ports.Provider.
func (c *ClaudeClient) Complete(ctx context.Context, req ports.ProviderRequest) (string, error) {
	body, err := buildClaudeRequest(c.cfg, req)
	if err != nil {
		return "", domain.WrapFailure(domain.FailValidation, "claude", err)
	}

	var reply string
	err = retry.Do(ctx, c.policy, c.sleep, func(ctx context.Context) error {
		text, attemptErr := c.attempt(ctx, body)
		if attemptErr != nil {
			return attemptErr
		}
		reply = text
		return nil
	})
	return reply, err
}

func (c *ClaudeClient) attempt(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.WrapFailure(domain.FailValidation, "claude", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", domain.ClassifyTransport("claude", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", domain.ClassifyStatus("claude", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.ClassifyTransport("claude", err)
	}
	return parseClaudeResponse(data)
}

// buildClaudeRequest renders the transcript into the Anthropic request
// shape. System-role messages are folded into the system field alongside
// the persona instruction.
func buildClaudeRequest(cfg domain.ProviderEndpoint, req ports.ProviderRequest) ([]byte, error) {
	systemLines := []string{}
	if req.System != "" {
		systemLines = append(systemLines, req.System)
	}

	var chatMessages []map[string]interface{}
	for _, msg := range req.Messages {
		if msg.Role == domain.RoleSystem {
			systemLines = append(systemLines, msg.Content)
			continue
		}
		chatMessages = append(chatMessages, map[string]interface{}{
			"role": string(msg.Role),
			"content": []map[string]string{
				{"type": "text", "text": msg.Content},
			},
		})
	}

	request := map[string]interface{}{
		"model":      cfg.Model,
		"max_tokens": maxTokens(cfg),
		"messages":   chatMessages,
	}
	if system := strings.TrimSpace(strings.Join(systemLines, "\n")); system != "" {
		request["system"] = system
	}
	return json.Marshal(request)
}

func parseClaudeResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", domain.WrapFailure(domain.FailUnknown, "claude", err)
	}
	if len(response.Content) == 0 {
		return "", domain.NewFailure(domain.FailUnknown, "claude", "empty response content")
	}
	return strings.TrimSpace(response.Content[0].Text), nil
}

func maxTokens(cfg domain.ProviderEndpoint) int {
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return 1024
}

var _ ports.Provider = (*ClaudeClient)(nil)
