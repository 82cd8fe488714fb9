package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"parley/model"
)

func compatForServer(t *testing.T, entry CompatEntry, handler http.Handler) (*CompatProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewCompatProvider(entry, Deps{
		APIKey: "test-key",
		Data: map[string]string{
			"base_url": server.URL,
			"model":    "gpt-4o-mini",
		},
	})
	return p, server
}

func TestCompatAsk(t *testing.T) {
	var gotBody map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hello from the API"}, "finish_reason": "stop"}]
		}`)
	})

	p, _ := compatForServer(t, CompatCatalog[0], handler)

	result := p.Ask(context.Background(), model.Exchange{Prompt: "hi", BotName: "Assistant"})
	if result.IsError() {
		t.Fatalf("unexpected error: %v %q", result.Kind, result.Text)
	}
	if result.Text != "Hello from the API" {
		t.Errorf("reply = %q", result.Text)
	}
	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("request model = %v", gotBody["model"])
	}
}

func TestCompatAskAuthFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`)
	})

	p, _ := compatForServer(t, CompatCatalog[0], handler)

	result := p.Ask(context.Background(), model.Exchange{Prompt: "hi", BotName: "Assistant"})
	if result.Kind != model.KindAuthFailure {
		t.Errorf("kind = %v, want auth failure", result.Kind)
	}
	if result.Text != msgInvalidKey {
		t.Errorf("text = %q", result.Text)
	}
}

func TestCompatAskRateLimit(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		expectedKind model.ResultKind
		expectedText string
	}{
		{
			name:         "plain rate limit",
			message:      "Rate limit reached for requests",
			expectedKind: model.KindRateLimited,
			expectedText: msgRateLimit,
		},
		{
			name:         "quota exhausted",
			message:      "You exceeded your current quota, please check your plan and billing details.",
			expectedKind: model.KindQuotaExceeded,
			expectedText: msgQuota,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprintf(w, `{"error": {"message": %q, "type": "requests"}}`, tt.message)
			})

			p, _ := compatForServer(t, CompatCatalog[0], handler)
			result := p.Ask(context.Background(), model.Exchange{Prompt: "hi", BotName: "Assistant"})

			if result.Kind != tt.expectedKind {
				t.Errorf("kind = %v, want %v", result.Kind, tt.expectedKind)
			}
			if result.Text != tt.expectedText {
				t.Errorf("text = %q, want %q", result.Text, tt.expectedText)
			}
		})
	}
}

func TestCompatNotConfiguredSkipsNetwork(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewCompatProvider(CompatCatalog[0], Deps{
		Data: map[string]string{"base_url": server.URL, "model": "gpt-4o-mini"},
	})

	result := p.Ask(context.Background(), model.Exchange{Prompt: "hi", BotName: "Assistant"})
	if result.Kind != model.KindNotConfigured {
		t.Errorf("kind = %v", result.Kind)
	}
	if result.Text != "Please configure your OpenAI API key in preferences." {
		t.Errorf("text = %q", result.Text)
	}
	if called {
		t.Error("unconfigured provider must not hit the network")
	}
}

func TestCompatNoKeyNeededForVLLM(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]
		}`)
	})
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var vllm CompatEntry
	for _, entry := range CompatCatalog {
		if entry.Slug == "vllm" {
			vllm = entry
		}
	}

	p := NewCompatProvider(vllm, Deps{
		Data: map[string]string{"base_url": server.URL, "model": "qwen2.5"},
	})

	result := p.Ask(context.Background(), model.Exchange{Prompt: "hi", BotName: "Assistant"})
	if result.IsError() {
		t.Errorf("keyless backend should work without credentials: %q", result.Text)
	}
}

func TestCompatNoModelSelected(t *testing.T) {
	p := NewCompatProvider(CompatCatalog[0], Deps{
		APIKey: "test-key",
		Data:   map[string]string{"model": ""},
	})
	p.SetModel("")

	result := p.Ask(context.Background(), model.Exchange{Prompt: "hi", BotName: "Assistant"})
	if result.Kind != model.KindNotConfigured || result.Text != msgNoModel {
		t.Errorf("kind=%v text=%q", result.Kind, result.Text)
	}
}

func TestCompatAskStream(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		deltas := []string{"Hel", "lo ", "world"}
		for _, delta := range deltas {
			fmt.Fprintf(w, "data: {\"id\":\"chatcmpl-1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", delta)
		}
		fmt.Fprint(w, "data: {\"id\":\"chatcmpl-1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	p, _ := compatForServer(t, CompatCatalog[0], handler)

	var chunks []string
	result := p.AskStream(context.Background(), model.Exchange{Prompt: "hi", BotName: "Assistant"},
		func(chunk string) { chunks = append(chunks, chunk) })

	if result.IsError() {
		t.Fatalf("unexpected error: %q", result.Text)
	}
	if result.Text != "Hello world" {
		t.Errorf("accumulated = %q", result.Text)
	}
	if strings.Join(chunks, "") != result.Text {
		t.Errorf("chunk concat %q != result %q", strings.Join(chunks, ""), result.Text)
	}
}

func TestCompatListModels(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object": "list", "data": [
			{"id": "gpt-4o-mini", "object": "model"},
			{"id": "gpt-4o", "object": "model"}
		]}`)
	})

	p, _ := compatForServer(t, CompatCatalog[0], handler)

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0] != "gpt-4o-mini" || models[1] != "gpt-4o" {
		t.Errorf("models = %v", models)
	}
}

func TestCompatPresetModels(t *testing.T) {
	var perplexity CompatEntry
	for _, entry := range CompatCatalog {
		if entry.Slug == "perplexity" {
			perplexity = entry
		}
	}

	// No server: preset listing must not touch the network
	p := NewCompatProvider(perplexity, Deps{APIKey: "test-key"})

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 3 || models[0] != "sonar" {
		t.Errorf("models = %v", models)
	}
}
