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

func geminiForServer(t *testing.T, handler http.Handler) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGeminiProvider(Deps{
		APIKey: "test-key",
		Data: map[string]string{
			"base_url": server.URL,
			"model":    "gemini-2.0-flash",
		},
	})
}

func TestGeminiAsk(t *testing.T) {
	var gotReq geminiRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"Gemini says hi"}],"role":"model"},"finishReason":"STOP"}]}`)
	})

	p := geminiForServer(t, handler)

	ex := model.Exchange{
		Prompt:  "hello",
		System:  "Be brief.",
		BotName: "Assistant",
		Chat: &model.Chat{Content: []model.Message{
			{Role: "User", Content: "earlier question"},
			{Role: "Assistant", Content: "earlier answer"},
		}},
	}
	result := p.Ask(context.Background(), ex)

	if result.IsError() {
		t.Fatalf("unexpected error: %q", result.Text)
	}
	if result.Text != "Gemini says hi" {
		t.Errorf("reply = %q", result.Text)
	}

	if gotReq.SystemInstruction == nil || gotReq.SystemInstruction.Parts[0].Text != "Be brief." {
		t.Error("system instruction not sent")
	}
	if len(gotReq.Contents) != 3 {
		t.Fatalf("contents = %d", len(gotReq.Contents))
	}
	if gotReq.Contents[1].Role != "model" {
		t.Errorf("assistant turn role = %q, want model", gotReq.Contents[1].Role)
	}
}

func TestGeminiAskStream(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":streamGenerateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("alt = %q", r.URL.Query().Get("alt"))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, text := range []string{"one ", "two ", "three"} {
			fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":%q}],\"role\":\"model\"}}]}\n\n", text)
		}
	})

	p := geminiForServer(t, handler)

	var chunks []string
	result := p.AskStream(context.Background(), model.Exchange{Prompt: "count", BotName: "Assistant"},
		func(chunk string) { chunks = append(chunks, chunk) })

	if result.IsError() {
		t.Fatalf("unexpected error: %q", result.Text)
	}
	if result.Text != "one two three" {
		t.Errorf("accumulated = %q", result.Text)
	}
	if strings.Join(chunks, "") != result.Text {
		t.Errorf("chunk concat mismatch")
	}
}

func TestGeminiErrorStatuses(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedKind model.ResultKind
		expectedText string
	}{
		{
			name:         "bad key",
			status:       403,
			body:         `{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`,
			expectedKind: model.KindAuthFailure,
			expectedText: msgInvalidKey,
		},
		{
			name:         "quota",
			status:       429,
			body:         `{"error":{"code":429,"message":"Quota exceeded for requests","status":"RESOURCE_EXHAUSTED"}}`,
			expectedKind: model.KindQuotaExceeded,
			expectedText: msgQuota,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			p := geminiForServer(t, handler)
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

func TestGeminiNotConfigured(t *testing.T) {
	p := NewGeminiProvider(Deps{})

	result := p.Ask(context.Background(), model.Exchange{Prompt: "hi", BotName: "Assistant"})
	if result.Kind != model.KindNotConfigured {
		t.Errorf("kind = %v", result.Kind)
	}
	if result.Text != "Please configure your Gemini API key in preferences." {
		t.Errorf("text = %q", result.Text)
	}
}

func TestGeminiListModels(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"models":[{"name":"models/gemini-2.0-flash"},{"name":"models/gemini-1.5-pro"}]}`)
	})

	p := geminiForServer(t, handler)

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 || models[0] != "gemini-2.0-flash" {
		t.Errorf("models = %v", models)
	}
}
