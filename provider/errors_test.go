package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/ollama/ollama/api"

	"parley/model"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		detail       string
		expectedKind model.ResultKind
		expectedText string
	}{
		{
			name:         "unauthorized",
			status:       401,
			expectedKind: model.KindAuthFailure,
			expectedText: msgInvalidKey,
		},
		{
			name:         "forbidden treated as auth",
			status:       403,
			expectedKind: model.KindAuthFailure,
			expectedText: msgInvalidKey,
		},
		{
			name:         "rate limited",
			status:       429,
			detail:       "Too many requests",
			expectedKind: model.KindRateLimited,
			expectedText: msgRateLimit,
		},
		{
			name:         "quota exhausted",
			status:       429,
			detail:       "You exceeded your current quota",
			expectedKind: model.KindQuotaExceeded,
			expectedText: msgQuota,
		},
		{
			name:         "server error",
			status:       500,
			detail:       "internal error",
			expectedKind: model.KindHTTPError,
			expectedText: "Error: 500 - internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifyStatus(tt.status, tt.detail)
			if result.Kind != tt.expectedKind {
				t.Errorf("kind = %v, want %v", result.Kind, tt.expectedKind)
			}
			if result.Text != tt.expectedText {
				t.Errorf("text = %q, want %q", result.Text, tt.expectedText)
			}
			if !result.IsError() {
				t.Error("classification must produce an error result")
			}
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	result := classifyTransportError(context.DeadlineExceeded)
	if result.Kind != model.KindTimeout || result.Text != msgTimeout {
		t.Errorf("deadline: kind=%v text=%q", result.Kind, result.Text)
	}

	result = classifyTransportError(errors.New("dial tcp: connection refused"))
	if result.Kind != model.KindConnectionFailure || result.Text != msgConnection {
		t.Errorf("refused: kind=%v text=%q", result.Kind, result.Text)
	}
}

func TestClassifyOllamaError(t *testing.T) {
	result := classifyOllamaError(api.StatusError{StatusCode: 404, ErrorMessage: "model not found"}, "llama3.1:latest")
	if result.Kind != model.KindNotFound {
		t.Errorf("kind = %v", result.Kind)
	}
	expected := "Model 'llama3.1:latest' not found. Please pull it first with: ollama pull llama3.1:latest"
	if result.Text != expected {
		t.Errorf("text = %q, want %q", result.Text, expected)
	}

	result = classifyOllamaError(errors.New("dial tcp 127.0.0.1:11434: connection refused"), "llama3.1:latest")
	if result.Kind != model.KindConnectionFailure || result.Text != msgOllamaConnection {
		t.Errorf("connection: kind=%v text=%q", result.Kind, result.Text)
	}

	result = classifyOllamaError(context.DeadlineExceeded, "llama3.1:latest")
	if result.Kind != model.KindTimeout || result.Text != msgOllamaTimeout {
		t.Errorf("timeout: kind=%v text=%q", result.Kind, result.Text)
	}
}

func TestNotConfiguredResult(t *testing.T) {
	result := notConfiguredResult("Groq")
	if result.Kind != model.KindNotConfigured {
		t.Errorf("kind = %v", result.Kind)
	}
	if result.Text != "Please configure your Groq API key in preferences." {
		t.Errorf("text = %q", result.Text)
	}
}
