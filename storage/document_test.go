package storage

import (
	"os"
	"path/filepath"
	"testing"

	"parley/model"
)

func TestOpenMissingFileGivesDefaults(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.Chats()) != 0 {
		t.Error("fresh store should have no chats")
	}
	if !s.ProviderEnabled("ollama") {
		t.Error("ollama should be enabled by default")
	}
	if s.ProviderEnabled("openai") {
		t.Error("openai should start disabled")
	}
}

func TestOpenMalformedFileFallsBack(t *testing.T) {
	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := Open(dataDir)
	if err != nil {
		t.Fatalf("malformed file must not fail open: %v", err)
	}
	if !s.ProviderEnabled("ollama") {
		t.Error("fallback should use the default document")
	}

	// The broken file is kept for recovery
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("corrupt file not preserved: %v", err)
	}
}

func TestChatLifecycle(t *testing.T) {
	dataDir := t.TempDir()
	s, err := Open(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	first, err := s.NewChat()
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.NewChat()
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("ids = %d, %d", first.ID, second.ID)
	}
	if second.Title != "New Chat 2" {
		t.Errorf("title = %q", second.Title)
	}

	if err := s.DeleteChat(1); err != nil {
		t.Fatal(err)
	}
	third, err := s.NewChat()
	if err != nil {
		t.Fatal(err)
	}
	// Deleted ids are not reused
	if third.ID != 3 {
		t.Errorf("id after delete = %d, want 3", third.ID)
	}

	if err := s.RenameChat(2, "Renamed"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStarred(2, true); err != nil {
		t.Fatal(err)
	}

	// Round trip through disk
	reopened, err := Open(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	chat, ok := reopened.ChatByID(2)
	if !ok {
		t.Fatal("chat 2 missing after reopen")
	}
	if chat.Title != "Renamed" || !chat.Starred {
		t.Errorf("chat = %+v", chat)
	}
	if _, ok := reopened.ChatByID(1); ok {
		t.Error("deleted chat survived reopen")
	}
}

func TestClearAllKeepsSettings(t *testing.T) {
	dataDir := t.TempDir()
	s, err := Open(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.NewChat(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProviderEnabled("openai", true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProviderField("openai", "model", "gpt-4o"); err != nil {
		t.Fatal(err)
	}

	if err := s.ClearAll(); err != nil {
		t.Fatal(err)
	}

	if len(s.Chats()) != 0 {
		t.Error("chats not cleared")
	}
	if !s.ProviderEnabled("openai") {
		t.Error("provider settings lost on clear")
	}
	if s.ProviderData("openai")["model"] != "gpt-4o" {
		t.Error("provider data lost on clear")
	}

	// Ids restart once the store is empty
	chat, err := s.NewChat()
	if err != nil {
		t.Fatal(err)
	}
	if chat.ID != 1 {
		t.Errorf("id after clear = %d, want 1", chat.ID)
	}
}

func TestProviderSettingsRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	s, err := Open(dataDir)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetProviderEnabled("groq", true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProviderField("groq", "api_key", "gsk-123"); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if !reopened.ProviderEnabled("groq") {
		t.Error("enabled flag lost")
	}
	if reopened.APIKey("groq") != "gsk-123" {
		t.Errorf("api key = %q", reopened.APIKey("groq"))
	}

	// data.json carries conversation history and keys
	info, err := os.Stat(filepath.Join(dataDir, "data.json"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}
}

func TestModelSettingsLazyDefaults(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	settings := s.ModelSettings("tinyllama")
	defaults := model.DefaultModelSettings()
	if settings != defaults {
		t.Errorf("settings = %+v, want defaults", settings)
	}

	settings.Temperature = 0.2
	if err := s.SetModelSettings("tinyllama", settings); err != nil {
		t.Fatal(err)
	}
	if got := s.ModelSettings("tinyllama"); got.Temperature != 0.2 {
		t.Errorf("temperature = %v", got.Temperature)
	}
	// Other models are unaffected
	if got := s.ModelSettings("other"); got.Temperature != defaults.Temperature {
		t.Errorf("other model temperature = %v", got.Temperature)
	}
}
