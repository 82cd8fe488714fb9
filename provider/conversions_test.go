package provider

import (
	"testing"

	"parley/model"
	"parley/provider/testutil"
)

func TestBuildOpenAIMessages(t *testing.T) {
	ex := testutil.SampleExchange("And channels?")
	ex.System = "Answer briefly."

	messages := BuildOpenAIMessages(ex)

	// system + 3 history + prompt
	if len(messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(messages))
	}
	if messages[0].OfSystem == nil {
		t.Error("first message should be the system prompt")
	}
	if messages[1].OfUser == nil || messages[2].OfAssistant == nil || messages[3].OfUser == nil {
		t.Error("history roles mapped incorrectly")
	}
	if messages[4].OfUser == nil {
		t.Error("prompt should map to a user message")
	}
}

func TestBuildOpenAIMessagesNoSystemNoHistory(t *testing.T) {
	messages := BuildOpenAIMessages(model.Exchange{Prompt: "hi", BotName: "Assistant"})
	if len(messages) != 1 || messages[0].OfUser == nil {
		t.Fatalf("expected single user message, got %d", len(messages))
	}
}

func TestBuildAnthropicMessages(t *testing.T) {
	ex := testutil.SampleExchange("And channels?")
	ex.System = "Answer briefly."

	messages, system := BuildAnthropicMessages(ex)

	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if len(system) != 1 || system[0].Text != "Answer briefly." {
		t.Errorf("system blocks = %v", system)
	}
	if messages[0].Role != "user" || messages[1].Role != "assistant" {
		t.Errorf("history roles = %q/%q", messages[0].Role, messages[1].Role)
	}
	if messages[3].Role != "user" {
		t.Errorf("prompt role = %q", messages[3].Role)
	}
}

func TestBuildOllamaMessages(t *testing.T) {
	ex := testutil.SampleExchange("And channels?")
	ex.System = "Answer briefly."

	messages := BuildOllamaMessages(ex)

	if len(messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(messages))
	}
	roles := []string{"system", "user", "assistant", "user", "user"}
	for i, role := range roles {
		if messages[i].Role != role {
			t.Errorf("message %d role = %q, want %q", i, messages[i].Role, role)
		}
	}
	if messages[4].Content != "And channels?" {
		t.Errorf("prompt content = %q", messages[4].Content)
	}
}

func TestRoleMappingFollowsBotName(t *testing.T) {
	// With a different bot name the same transcript classifies as all-user
	ex := testutil.SampleExchange("next")
	ex.BotName = "SomeoneElse"

	messages := BuildOllamaMessages(ex)
	for i, msg := range messages {
		if msg.Role != "user" {
			t.Errorf("message %d role = %q, want user", i, msg.Role)
		}
	}
}
