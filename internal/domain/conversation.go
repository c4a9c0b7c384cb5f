package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	// MaxMessages bounds how many messages a context retains.
	MaxMessages = 20
	// ContextTTL is how long a context survives after its last update.
	ContextTTL = 24 * time.Hour
)

// ConversationContext owns the ordered message history for one session plus
// metadata derived from the user's messages.
type ConversationContext struct {
	Messages         []Message `json:"messages"`
	LastUpdated      time.Time `json:"last_updated"`
	ProductInterests []string  `json:"product_interests,omitempty"`
	OrderReferences  []string  `json:"order_references,omitempty"`
	SupportTopics    []string  `json:"support_topics,omitempty"`
}

// Append adds a message, stamps it if needed, re-derives metadata from user
// messages and re-applies the size bound. LastUpdated never moves backwards.
func (c *ConversationContext) Append(msg Message, now time.Time) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	c.Messages = append(c.Messages, msg)
	if msg.Role == RoleUser {
		c.deriveMetadata(msg.Content)
	}
	c.trim()
	if now.After(c.LastUpdated) {
		c.LastUpdated = now
	}
}

// Expired reports whether the context as a whole has outlived its TTL.
func (c *ConversationContext) Expired(now time.Time) bool {
	return now.Sub(c.LastUpdated) > ContextTTL
}

// trim enforces MaxMessages. All system messages are retained
// unconditionally; the newest non-system messages fill the remaining
// budget, oldest first out. Original ordering is preserved.
func (c *ConversationContext) trim() {
	if len(c.Messages) <= MaxMessages {
		return
	}

	systemCount := 0
	for _, m := range c.Messages {
		if m.Role == RoleSystem {
			systemCount++
		}
	}

	budget := MaxMessages - systemCount
	if budget < 0 {
		budget = 0
	}

	nonSystem := 0
	for _, m := range c.Messages {
		if m.Role != RoleSystem {
			nonSystem++
		}
	}
	drop := nonSystem - budget

	kept := make([]Message, 0, MaxMessages)
	for _, m := range c.Messages {
		if m.Role != RoleSystem && drop > 0 {
			drop--
			continue
		}
		kept = append(kept, m)
	}
	c.Messages = kept
}

// Summary renders the derived metadata as one sentence per non-empty
// category, suitable for suffixing onto a provider system instruction.
func (c *ConversationContext) Summary() string {
	var lines []string
	if len(c.ProductInterests) > 0 {
		lines = append(lines, fmt.Sprintf("The customer has shown interest in: %s.", strings.Join(c.ProductInterests, ", ")))
	}
	if len(c.OrderReferences) > 0 {
		lines = append(lines, fmt.Sprintf("Order references mentioned: %s.", strings.Join(c.OrderReferences, ", ")))
	}
	if len(c.SupportTopics) > 0 {
		lines = append(lines, fmt.Sprintf("Support topics raised: %s.", strings.Join(c.SupportTopics, ", ")))
	}
	return strings.Join(lines, " ")
}

// Fixed vocabularies scanned against new user messages. Matching is
// case-insensitive whole-word for categories and topics.
var (
	productCategories = []string{
		"phone", "smartphone", "laptop", "tablet", "headphones", "earbuds",
		"camera", "monitor", "keyboard", "mouse", "speaker", "watch",
		"charger", "printer", "router", "console",
	}
	supportTopicKeywords = []string{
		"refund", "return", "shipping", "delivery", "warranty", "cancel",
		"exchange", "payment", "invoice", "tracking", "damaged", "missing",
	}
	orderReferencePattern = regexp.MustCompile(`\b(?:\d{3}-\d{7}-\d{7}|(?i:order)[\s#:]*([0-9]{5,12}))\b`)
	wordBoundary          = regexp.MustCompile(`[a-z]+`)
)

func (c *ConversationContext) deriveMetadata(content string) {
	lower := strings.ToLower(content)
	words := map[string]bool{}
	for _, w := range wordBoundary.FindAllString(lower, -1) {
		words[w] = true
	}

	for _, cat := range productCategories {
		if words[cat] {
			c.ProductInterests = appendUnique(c.ProductInterests, cat)
		}
	}
	for _, topic := range supportTopicKeywords {
		if words[topic] {
			c.SupportTopics = appendUnique(c.SupportTopics, topic)
		}
	}
	for _, m := range orderReferencePattern.FindAllStringSubmatch(content, -1) {
		ref := m[0]
		if m[1] != "" {
			ref = m[1]
		}
		c.OrderReferences = appendUnique(c.OrderReferences, ref)
	}
}

func appendUnique(set []string, value string) []string {
	idx := sort.SearchStrings(set, value)
	if idx < len(set) && set[idx] == value {
		return set
	}
	set = append(set, "")
	copy(set[idx+1:], set[idx:])
	set[idx] = value
	return set
}
