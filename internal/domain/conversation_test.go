package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAppendStampsAndBounds(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var conv ConversationContext

	conv.Append(NewMessage(RoleSystem, "persona"), now)
	for i := 0; i < 30; i++ {
		conv.Append(NewMessage(RoleUser, fmt.Sprintf("message %d", i)), now.Add(time.Duration(i)*time.Minute))
	}

	require.Len(t, conv.Messages, MaxMessages)
	require.Equal(t, RoleSystem, conv.Messages[0].Role, "system message survives trimming")
	require.Equal(t, "message 29", conv.Messages[len(conv.Messages)-1].Content, "newest message retained")
	require.Equal(t, "message 11", conv.Messages[1].Content, "oldest non-system messages dropped first")
	require.False(t, conv.Messages[1].Timestamp.IsZero(), "append stamps zero timestamps")
}

func TestTrimPreservesOrdering(t *testing.T) {
	now := time.Now()
	var conv ConversationContext
	for i := 0; i < 25; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		conv.Append(NewMessage(role, fmt.Sprintf("m%d", i)), now)
	}

	require.Len(t, conv.Messages, MaxMessages)
	for i := 1; i < len(conv.Messages); i++ {
		require.Equal(t, fmt.Sprintf("m%d", i+5), conv.Messages[i].Content)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	conv := ConversationContext{LastUpdated: now}

	require.False(t, conv.Expired(now.Add(ContextTTL)))
	require.True(t, conv.Expired(now.Add(ContextTTL+time.Second)))
}

func TestLastUpdatedNeverMovesBackwards(t *testing.T) {
	now := time.Now()
	var conv ConversationContext
	conv.Append(NewMessage(RoleUser, "hi"), now)
	conv.Append(NewMessage(RoleAssistant, "hello"), now.Add(-time.Hour))

	require.Equal(t, now, conv.LastUpdated)
}

func TestDeriveMetadata(t *testing.T) {
	now := time.Now()
	var conv ConversationContext

	conv.Append(NewMessage(RoleUser, "My laptop order 123-4567890-1234567 arrived damaged, I want a refund"), now)
	conv.Append(NewMessage(RoleUser, "Also checking order #88221133 for the headphones"), now)
	// assistant messages never contribute metadata
	conv.Append(NewMessage(RoleAssistant, "I can help with the refund for your camera"), now)

	require.Equal(t, []string{"headphones", "laptop"}, conv.ProductInterests)
	require.Equal(t, []string{"123-4567890-1234567", "88221133"}, conv.OrderReferences)
	require.Equal(t, []string{"damaged", "refund"}, conv.SupportTopics)
}

func TestDeriveMetadataDeduplicates(t *testing.T) {
	now := time.Now()
	var conv ConversationContext
	conv.Append(NewMessage(RoleUser, "refund for my laptop"), now)
	conv.Append(NewMessage(RoleUser, "about that laptop refund again"), now)

	require.Equal(t, []string{"laptop"}, conv.ProductInterests)
	require.Equal(t, []string{"refund"}, conv.SupportTopics)
}

func TestDeriveMetadataWholeWordsOnly(t *testing.T) {
	now := time.Now()
	var conv ConversationContext
	conv.Append(NewMessage(RoleUser, "the restaurant was returned to its watchman"), now)

	require.Empty(t, conv.ProductInterests)
	require.Empty(t, conv.SupportTopics)
}

func TestSummary(t *testing.T) {
	var conv ConversationContext
	require.Empty(t, conv.Summary())

	conv.ProductInterests = []string{"laptop"}
	conv.SupportTopics = []string{"shipping"}
	summary := conv.Summary()
	require.Contains(t, summary, "laptop")
	require.Contains(t, summary, "shipping")
}
