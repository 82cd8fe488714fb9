package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"parley/model"
)

// Stored messages carry display names as roles; these builders map them
// onto each API's role vocabulary. Classification against the bot name
// decides which side of the conversation a message belongs to.

// BuildOpenAIMessages converts an exchange into OpenAI chat messages:
// optional system message, history, then the new prompt.
func BuildOpenAIMessages(ex model.Exchange) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	if ex.System != "" {
		messages = append(messages, openai.SystemMessage(ex.System))
	}

	if ex.Chat != nil {
		for _, msg := range ex.Chat.Content {
			if model.IsAssistant(msg, ex.BotName) {
				messages = append(messages, openai.AssistantMessage(msg.Content))
			} else {
				messages = append(messages, openai.UserMessage(msg.Content))
			}
		}
	}

	return append(messages, openai.UserMessage(ex.Prompt))
}

// BuildAnthropicMessages converts an exchange into Anthropic messages and
// system blocks. The system prompt travels outside the message list.
func BuildAnthropicMessages(ex model.Exchange) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var messages []anthropic.MessageParam

	if ex.Chat != nil {
		for _, msg := range ex.Chat.Content {
			block := anthropic.NewTextBlock(msg.Content)
			if model.IsAssistant(msg, ex.BotName) {
				messages = append(messages, anthropic.NewAssistantMessage(block))
			} else {
				messages = append(messages, anthropic.NewUserMessage(block))
			}
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(ex.Prompt)))

	var system []anthropic.TextBlockParam
	if ex.System != "" {
		system = []anthropic.TextBlockParam{{Text: ex.System}}
	}
	return messages, system
}

// BuildOllamaMessages converts an exchange into Ollama chat messages.
func BuildOllamaMessages(ex model.Exchange) []api.Message {
	var messages []api.Message

	if ex.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: ex.System})
	}

	if ex.Chat != nil {
		for _, msg := range ex.Chat.Content {
			role := "user"
			if model.IsAssistant(msg, ex.BotName) {
				role = "assistant"
			}
			messages = append(messages, api.Message{Role: role, Content: msg.Content})
		}
	}

	return append(messages, api.Message{Role: "user", Content: ex.Prompt})
}
