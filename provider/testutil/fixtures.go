package testutil

import (
	"time"

	"parley/model"
)

// SampleChat returns a short two-turn conversation using the default
// display names.
func SampleChat() *model.Chat {
	base := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return &model.Chat{
		ID:    1,
		Title: "Goroutine basics",
		Content: []model.Message{
			{Role: "User", Content: "What is a goroutine?", Time: base},
			{Role: "Assistant", Content: "A goroutine is a lightweight thread managed by the Go runtime.", Time: base.Add(2 * time.Second), Model: "OpenAI · gpt-4o-mini"},
			{Role: "User", Content: "How do I start one?", Time: base.Add(30 * time.Second)},
		},
	}
}

// SampleExchange wraps SampleChat into an exchange for a follow-up turn.
func SampleExchange(prompt string) model.Exchange {
	return model.Exchange{
		Prompt:  prompt,
		Chat:    SampleChat(),
		BotName: "Assistant",
	}
}
