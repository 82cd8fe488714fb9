// Package testutil provides mock providers and fixtures for tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"parley/model"
)

// MockProvider implements model.Provider with scripted responses and
// call counters.
type MockProvider struct {
	mu sync.Mutex

	ProviderName string
	ProviderSlug string
	ModelName    string

	// Reply is returned by Ask and streamed word by word by AskStream
	// unless Scripted is set.
	Reply string
	// Scripted, when non-nil, overrides Reply for every request.
	Scripted *model.Result

	Models    []string
	ModelsErr error

	AskCalls    int
	StreamCalls int
	ListCalls   int
	LastPrompt  string
	LastSystem  string
}

var _ model.Provider = (*MockProvider)(nil)

func (m *MockProvider) Name() string { return m.ProviderName }
func (m *MockProvider) Slug() string { return m.ProviderSlug }

func (m *MockProvider) Model() string      { return m.ModelName }
func (m *MockProvider) SetModel(mm string) { m.ModelName = mm }

func (m *MockProvider) ConfigSchema() map[string]string {
	return map[string]string{"api_key": "API Key"}
}

func (m *MockProvider) Ask(ctx context.Context, ex model.Exchange) model.Result {
	m.mu.Lock()
	m.AskCalls++
	m.LastPrompt = ex.Prompt
	m.LastSystem = ex.System
	m.mu.Unlock()

	if m.Scripted != nil {
		return *m.Scripted
	}
	return model.OKResult(m.Reply)
}

func (m *MockProvider) AskStream(ctx context.Context, ex model.Exchange, onToken model.StreamCallback) model.Result {
	m.mu.Lock()
	m.StreamCalls++
	m.LastPrompt = ex.Prompt
	m.LastSystem = ex.System
	m.mu.Unlock()

	if m.Scripted != nil {
		return *m.Scripted
	}
	if onToken != nil {
		for _, chunk := range strings.SplitAfter(m.Reply, " ") {
			onToken(chunk)
		}
	}
	return model.OKResult(m.Reply)
}

func (m *MockProvider) ListModels(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	m.ListCalls++
	m.mu.Unlock()
	return m.Models, m.ModelsErr
}

// MockSettings implements provider.SettingsSource backed by maps.
type MockSettings struct {
	Enabled map[string]bool
	Data    map[string]map[string]string
	Keys    map[string]string
}

func (s *MockSettings) ProviderEnabled(slug string) bool {
	return s.Enabled[slug]
}

func (s *MockSettings) ProviderData(slug string) map[string]string {
	if s.Data == nil {
		return nil
	}
	return s.Data[slug]
}

func (s *MockSettings) APIKey(slug string) string {
	if s.Keys == nil {
		return ""
	}
	return s.Keys[slug]
}
