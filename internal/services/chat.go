// Package services holds the application core: the conversation store and
// the orchestrator coordinating retrieval and provider dispatch.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"shopmate/internal/domain"
	"shopmate/internal/ports"
)

// retrievedExcerptLimit bounds how much retrieved text is spliced into an
// outbound message. The extractor itself imposes no bound; the consumer
// does.
const retrievedExcerptLimit = 1500

// ChatService orchestrates one conversational turn end-to-end: offline
// check, retrieval-intent handling, provider dispatch with optional
// fallback, and reconciliation into the conversation store. It holds no
// state of its own.
type ChatService struct {
	Store        *ConversationStore
	Fetcher      ports.Fetcher
	Products     ports.ProductSource
	Providers    ports.ProviderFactory
	Connectivity ports.Connectivity
	Provider     domain.ProviderSettings
	Search       domain.SearchSettings
	Logger       ports.Logger
}

// HandleMessage processes one submitted user message and returns the reply
// text. Every failure past input validation still produces a usable reply;
// the transcript always receives an answer turn.
func (s *ChatService) HandleMessage(ctx context.Context, text string) (string, error) {
	if s.Store == nil || s.Fetcher == nil || s.Products == nil || s.Providers == nil ||
		s.Connectivity == nil || s.Logger == nil {
		return "", errors.New("services.ChatService dependencies not satisfied")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewFailure(domain.FailValidation, "chat", "empty message")
	}

	if !s.Connectivity.Online(ctx) {
		return s.localReply(ctx, text, domain.NewFailure(domain.FailOffline, "chat", "runtime is offline"))
	}

	// Credentials are checked before any store mutation: a missing key is
	// a configuration prompt, not a conversation turn.
	chain := s.providerChain()
	primary, err := s.Providers.ForName(chain[0])
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredential) {
			return ConfigPromptReply, nil
		}
		return "", err
	}

	outbound := text
	if intent := DetectIntent(text); intent.Kind != IntentNone {
		retrieved, rerr := s.retrieve(ctx, intent)
		if rerr != nil {
			s.Logger.Warn("retrieval failed", map[string]interface{}{"error": rerr.Error()})
			outbound = fmt.Sprintf("%s\n\n%s %s.", text, RetrievalFailedMarker, retrievalNote(rerr))
		} else {
			outbound = fmt.Sprintf("%s\n\n%s\n%s", text, RetrievedDataMarker, retrieved)
		}
	}

	// The store keeps the user's original text; splicing applies only to
	// the outbound provider transcript.
	conv, err := s.Store.Append(ctx, domain.NewMessage(domain.RoleUser, text))
	if err != nil {
		return "", err
	}

	req := ports.ProviderRequest{
		System:   s.systemInstruction(conv),
		Messages: outboundTranscript(conv.Messages, outbound),
	}

	reply, perr := primary.Complete(ctx, req)
	if perr != nil {
		s.Logger.Warn("primary provider failed", map[string]interface{}{
			"provider": primary.Name(),
			"error":    perr.Error(),
		})
		reply, perr = s.tryFallback(ctx, chain, req, perr)
	}

	if perr != nil {
		return s.appendReply(ctx, ApologyFor(perr), true)
	}
	return s.appendReply(ctx, reply, false)
}

// localReply appends the user message plus a locally synthesized apology
// without attempting any provider call.
func (s *ChatService) localReply(ctx context.Context, text string, failure error) (string, error) {
	if _, err := s.Store.Append(ctx, domain.NewMessage(domain.RoleUser, text)); err != nil {
		return "", err
	}
	return s.appendReply(ctx, ApologyFor(failure), true)
}

func (s *ChatService) appendReply(ctx context.Context, reply string, automated bool) (string, error) {
	msg := domain.NewMessage(domain.RoleAssistant, reply)
	msg.Automated = automated
	if _, err := s.Store.Append(ctx, msg); err != nil {
		return "", err
	}
	return reply, nil
}

// providerChain resolves the configured selection into an ordered list of
// provider names to try.
func (s *ChatService) providerChain() []string {
	switch s.Provider.Active {
	case domain.ProviderAuto, "":
		return []string{domain.ProviderClaude, domain.ProviderOpenAI}
	}
	chain := []string{s.Provider.Active}
	if s.Provider.Fallback != "" && s.Provider.Fallback != s.Provider.Active {
		chain = append(chain, s.Provider.Fallback)
	}
	return chain
}

// tryFallback retries the same logical turn against the secondary
// provider, surfacing one fallback notice on success. The primary's
// failure is kept when no secondary can answer.
func (s *ChatService) tryFallback(ctx context.Context, chain []string, req ports.ProviderRequest, primaryErr error) (string, error) {
	if len(chain) < 2 {
		return "", primaryErr
	}
	secondary, err := s.Providers.ForName(chain[1])
	if err != nil {
		return "", primaryErr
	}

	reply, err := secondary.Complete(ctx, req)
	if err != nil {
		s.Logger.Warn("fallback provider failed", map[string]interface{}{
			"provider": secondary.Name(),
			"error":    err.Error(),
		})
		return "", err
	}
	return FallbackNotice + reply, nil
}

func (s *ChatService) systemInstruction(conv domain.ConversationContext) string {
	system := s.Provider.SystemPrompt
	if summary := conv.Summary(); summary != "" {
		system += "\n\n" + summary
	}
	return system
}

// outboundTranscript returns the provider-facing transcript: the retained
// messages with the final user message replaced by its enriched form.
func outboundTranscript(messages []domain.Message, outbound string) []domain.Message {
	transcript := make([]domain.Message, len(messages))
	copy(transcript, messages)
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == domain.RoleUser {
			transcript[i].Content = outbound
			break
		}
	}
	return transcript
}

// retrieve dispatches the classified intent to the product-lookup
// specialization or the generic fetch path and renders the result as
// splice-ready text.
func (s *ChatService) retrieve(ctx context.Context, intent Intent) (string, error) {
	switch intent.Kind {
	case IntentProductLookup:
		if intent.ASIN != "" {
			product, err := s.Products.Lookup(ctx, intent.ASIN)
			if err != nil {
				return "", err
			}
			return formatProduct(product), nil
		}

		results, err := s.Products.Search(ctx, intent.Query)
		if err != nil {
			return "", err
		}
		if len(results) == 0 {
			return "", domain.NewFailure(domain.FailNotFound, "retrieve",
				"no matching products for "+intent.Query)
		}
		return formatListing(results), nil

	case IntentWebLookup:
		target := intent.URL
		if target == "" {
			target = fmt.Sprintf(s.Search.Endpoint, url.QueryEscape(intent.Query))
		}
		result, err := s.Fetcher.Fetch(ctx, target, domain.ProfileGeneric, 0)
		if err != nil {
			return "", err
		}
		return formatFetch(result), nil
	}
	return "", domain.NewFailure(domain.FailValidation, "retrieve", "no retrieval intent")
}

func formatProduct(p domain.Product) string {
	var b strings.Builder
	b.WriteString(p.Title)
	if p.Price.Formatted != "" {
		fmt.Fprintf(&b, "\nPrice: %s", p.Price.Formatted)
	}
	if p.Rating.Value > 0 {
		fmt.Fprintf(&b, "\nRating: %.1f (%d ratings)", p.Rating.Value, p.Rating.Count)
	}
	for _, feature := range p.Features {
		fmt.Fprintf(&b, "\n- %s", feature)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s", p.Description)
	}
	fmt.Fprintf(&b, "\nSource: %s", p.URL)
	return clip(b.String(), retrievedExcerptLimit)
}

func formatListing(products []domain.Product) string {
	var lines []string
	for i, p := range products {
		if i >= 3 {
			break
		}
		line := p.Title
		if p.Price.Formatted != "" {
			line += " — " + p.Price.Formatted
		}
		if p.URL != "" {
			line += " (" + p.URL + ")"
		}
		lines = append(lines, line)
	}
	return clip(strings.Join(lines, "\n"), retrievedExcerptLimit)
}

func formatFetch(result domain.FetchResult) string {
	var b strings.Builder
	if title := result.Metadata["title"]; title != "" {
		b.WriteString(title)
		b.WriteString("\n")
	}
	b.WriteString(result.Content)
	return clip(b.String(), retrievedExcerptLimit)
}

func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "…"
}
