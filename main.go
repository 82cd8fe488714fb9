package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"parley/config"
	"parley/local"
	"parley/model"
	"parley/provider"
	"parley/storage"
	"parley/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

// clipboardSystemPrompt frames the first turn when the app is launched
// with --clipboard and the pasted text becomes the initial prompt.
const clipboardSystemPrompt = "The user's first message is content pasted from their clipboard. " +
	"It may be source code, an error message, log output, or plain text.\n\n" +
	"If it is code, explain what it does and point out problems. " +
	"If it is an error message or log output, diagnose the likely cause. " +
	"If it is plain text, summarize it and wait for a follow-up question."

// settingsSource resolves provider settings from the document store but
// prefers API keys held in the credential store.
type settingsSource struct {
	store *storage.Store
	creds *config.CredentialStore
}

func (s settingsSource) ProviderEnabled(slug string) bool {
	return s.store.ProviderEnabled(slug)
}

func (s settingsSource) ProviderData(slug string) map[string]string {
	return s.store.ProviderData(slug)
}

func (s settingsSource) APIKey(slug string) string {
	if s.creds != nil {
		if key := s.creds.Get(slug); key != "" {
			return key
		}
	}
	return s.store.APIKey(slug)
}

func main() {
	var (
		initialPrompt string
		fromClipboard bool
		showVersion   bool
	)
	flag.StringVar(&initialPrompt, "p", "", "prefill the input with this prompt")
	flag.StringVar(&initialPrompt, "prompt", "", "prefill the input with this prompt")
	flag.BoolVar(&fromClipboard, "c", false, "prefill the input with clipboard content")
	flag.BoolVar(&fromClipboard, "clipboard", false, "prefill the input with clipboard content")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("parley %s (%s)\n", Version, License)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	config.InitDebugLog(cfg.DataDir())

	store, err := storage.Open(cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to open chat storage: %v\n", err)
		os.Exit(1)
	}

	// Search is optional; the app runs without the index.
	index, err := storage.NewSearchIndex(cfg.DataDir())
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("search index unavailable: %v", err)
		}
		index = nil
	} else {
		defer index.Close()
		if err := index.Rebuild(store.Chats()); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("search index rebuild failed: %v", err)
		}
	}

	registry := provider.NewRegistry(
		settingsSource{store: store, creds: cfg.CredentialStore},
		provider.Deps{OllamaHost: cfg.OllamaHost, DefaultModel: cfg.DefaultModel},
	)

	runtime := local.New(cfg.OllamaHost, cfg.LocalModel)

	dispatcher := model.NewDispatcher(
		registry,
		runtime,
		cfg.BotName,
		cfg.UserName,
		cfg.DefaultSystemPrompt,
		store.ModelSettings,
	)

	// An explicit -p wins over clipboard content.
	if initialPrompt == "" && fromClipboard {
		text, err := clipboard.ReadAll()
		if err != nil {
			fmt.Printf("Failed to read clipboard: %v\n", err)
			os.Exit(1)
		}
		if text != "" {
			initialPrompt = text
			dispatcher.StageSystemPrompt(clipboardSystemPrompt)
		}
	}

	app := ui.New(cfg, store, index, registry, dispatcher)
	if initialPrompt != "" {
		app.SetInitialPrompt(initialPrompt)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running parley: %v\n", err)
		os.Exit(1)
	}
}
