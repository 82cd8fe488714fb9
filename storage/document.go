// Package storage persists chats, provider settings, and model settings
// as a single JSON document under the data directory, with a sqlite
// full-text index over message content alongside it.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"parley/config"
	"parley/model"
)

// ProviderSettings is the persisted per-provider state. Data holds the
// provider's config fields except credentials, which live in the
// credential store.
type ProviderSettings struct {
	Enabled bool              `json:"enabled"`
	Data    map[string]string `json:"data,omitempty"`
}

// Document is the on-disk shape of data.json.
type Document struct {
	Chats     []*model.Chat                   `json:"chats"`
	Providers map[string]*ProviderSettings    `json:"providers"`
	Models    map[string]*model.ModelSettings `json:"models"`
}

// DefaultDocument returns the state of a fresh installation: no chats,
// Ollama enabled, no stored model settings.
func DefaultDocument() *Document {
	return &Document{
		Providers: map[string]*ProviderSettings{
			"ollama": {Enabled: true},
		},
		Models: map[string]*model.ModelSettings{},
	}
}

// Store owns data.json. All access goes through its methods; mutating
// methods persist before returning.
type Store struct {
	mu   sync.Mutex
	path string
	doc  *Document
}

// Open loads data.json from the data directory, falling back to the
// default document when the file is missing or malformed. A malformed
// file is preserved under a .corrupt suffix rather than overwritten.
func Open(dataDir string) (*Store, error) {
	s := &Store{
		path: filepath.Join(dataDir, "data.json"),
		doc:  DefaultDocument(),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("data.json is malformed, starting fresh: %v", err)
		}
		// keep the broken file for manual recovery
		_ = os.Rename(s.path, s.path+".corrupt")
		return s, nil
	}

	if doc.Providers == nil {
		doc.Providers = DefaultDocument().Providers
	}
	if doc.Models == nil {
		doc.Models = map[string]*model.ModelSettings{}
	}
	s.doc = &doc
	return s, nil
}

// Save writes the document to disk. Chats contain conversation history,
// so the file is user-only.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Chats returns the stored chats in insertion order.
func (s *Store) Chats() []*model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	chats := make([]*model.Chat, len(s.doc.Chats))
	copy(chats, s.doc.Chats)
	return chats
}

// ChatByID resolves a chat id.
func (s *Store) ChatByID(id int) (*model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chat := range s.doc.Chats {
		if chat.ID == id {
			return chat, true
		}
	}
	return nil, false
}

// NewChat creates and persists an empty chat with the next free id and a
// placeholder title.
func (s *Store) NewChat() (*model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.NextChatID(s.doc.Chats)
	chat := &model.Chat{
		ID:    id,
		Title: model.NewChatTitle(id),
	}
	s.doc.Chats = append(s.doc.Chats, chat)

	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return chat, nil
}

// DeleteChat removes a chat. Freed ids are not reused.
func (s *Store) DeleteChat(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, chat := range s.doc.Chats {
		if chat.ID == id {
			s.doc.Chats = append(s.doc.Chats[:i], s.doc.Chats[i+1:]...)
			return s.saveLocked()
		}
	}
	return fmt.Errorf("chat %d not found", id)
}

// ClearAll deletes every chat but keeps provider and model settings.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Chats = nil
	return s.saveLocked()
}

// RenameChat sets a chat's title.
func (s *Store) RenameChat(id int, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chat := range s.doc.Chats {
		if chat.ID == id {
			chat.Title = title
			return s.saveLocked()
		}
	}
	return fmt.Errorf("chat %d not found", id)
}

// SetStarred toggles the starred flag on a chat.
func (s *Store) SetStarred(id int, starred bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chat := range s.doc.Chats {
		if chat.ID == id {
			chat.Starred = starred
			return s.saveLocked()
		}
	}
	return fmt.Errorf("chat %d not found", id)
}

// providerLocked returns the settings entry for a slug, creating it
// lazily so unknown providers read as disabled with no data.
func (s *Store) providerLocked(slug string) *ProviderSettings {
	entry, ok := s.doc.Providers[slug]
	if !ok {
		entry = &ProviderSettings{}
		s.doc.Providers[slug] = entry
	}
	return entry
}

// ProviderEnabled implements provider.SettingsSource.
func (s *Store) ProviderEnabled(slug string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.providerLocked(slug).Enabled
}

// ProviderData implements provider.SettingsSource.
func (s *Store) ProviderData(slug string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.providerLocked(slug).Data
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// APIKey implements provider.SettingsSource for installations that keep
// keys in data.json. The credential store overlays this at wiring time.
func (s *Store) APIKey(slug string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.providerLocked(slug).Data["api_key"]
}

// SetProviderEnabled switches a provider on or off and persists.
func (s *Store) SetProviderEnabled(slug string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providerLocked(slug).Enabled = enabled
	return s.saveLocked()
}

// SetProviderField stores one provider config value and persists.
func (s *Store) SetProviderField(slug, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.providerLocked(slug)
	if entry.Data == nil {
		entry.Data = map[string]string{}
	}
	entry.Data[key] = value
	return s.saveLocked()
}

// ModelSettings returns the stored sampling settings for a model,
// creating defaults lazily.
func (s *Store) ModelSettings(name string) model.ModelSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if settings, ok := s.doc.Models[name]; ok {
		return *settings
	}
	defaults := model.DefaultModelSettings()
	s.doc.Models[name] = &defaults
	return defaults
}

// SetModelSettings stores sampling settings for a model and persists.
func (s *Store) SetModelSettings(name string, settings model.ModelSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Models[name] = &settings
	return s.saveLocked()
}
