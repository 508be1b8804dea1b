package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"
)

func TestFinalText_LastAIMessageWins(t *testing.T) {
	state := map[string]any{
		"messages": []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, "anime like Cowboy Bebop"),
			llms.TextParts(llms.ChatMessageTypeAI, "intermediate routing step"),
			llms.TextParts(llms.ChatMessageTypeTool, "tool output"),
			llms.TextParts(llms.ChatMessageTypeAI, "1. **Trigun** – 9/10"),
		},
	}

	assert.Equal(t, "1. **Trigun** – 9/10", finalText(state))
}

func TestFinalText_SkipsNonAIMessages(t *testing.T) {
	state := map[string]any{
		"messages": []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeAI, "answer"),
			llms.TextParts(llms.ChatMessageTypeHuman, "follow-up"),
		},
	}

	assert.Equal(t, "answer", finalText(state))
}

func TestFinalText_EmptyState(t *testing.T) {
	assert.Empty(t, finalText(map[string]any{}))
	assert.Empty(t, finalText(map[string]any{"messages": "not a slice"}))
	assert.Empty(t, finalText(map[string]any{"messages": []llms.MessageContent{}}))
}

func TestNew_RequiresModel(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
