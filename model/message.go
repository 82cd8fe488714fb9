package model

import "time"

// Message represents a single entry in a chat transcript. Role holds the
// configured display name of the speaker (bot_name or user_name), not an
// API role string; conversion to API roles happens at request time.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
	// Model records which backend produced an assistant message, as
	// "Provider · model". Empty for user messages.
	Model string `json:"model,omitempty"`
	// Kind holds the result classification for failed requests, so
	// stored history can tell a reply from a failure message without
	// string-sniffing. Empty for successful turns.
	Kind string `json:"kind,omitempty"`
}

// IsAssistant reports whether a message was produced by the assistant.
// Classification is by comparing the stored role against the configured
// bot name, so renaming the bot reclassifies old messages.
func IsAssistant(m Message, botName string) bool {
	return m.Role == botName
}

// NewUserMessage builds a user message stamped with the current time.
func NewUserMessage(userName, content string) Message {
	return Message{
		Role:    userName,
		Content: content,
		Time:    time.Now(),
	}
}

// NewAssistantMessage builds an assistant message with backend attribution.
func NewAssistantMessage(botName, content, attribution string) Message {
	return Message{
		Role:    botName,
		Content: content,
		Time:    time.Now(),
		Model:   attribution,
	}
}

// NewErrorMessage builds an assistant message carrying a failure text and
// its result kind. Failures appear in the thread like any other reply;
// the Kind tag keeps them distinguishable in storage.
func NewErrorMessage(botName, content, kind string) Message {
	return Message{
		Role:    botName,
		Content: content,
		Time:    time.Now(),
		Kind:    kind,
	}
}
