package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"parley/config"
)

// User-facing messages for requests that never reach a provider.
const (
	NoProviderMessage   = "Please enable a provider from the menu"
	LocalNoModelMessage = "Please download a model from Preferences first."
)

// localSystemTemplate is the system prompt used for local generation when
// no explicit system prompt is staged.
const localSystemTemplate = "You are a helpful and friendly AI assistant with the name %s. The name of the user is %s. Respond very concisely."

// ProviderLookup resolves provider slugs to live adapters. Implemented by
// the provider registry.
type ProviderLookup interface {
	Get(slug string) (Provider, bool)
	Enabled(slug string) bool
}

// LocalRuntime generates text against a locally hosted model. onToken may
// be nil for non-streaming generation.
type LocalRuntime interface {
	Ready() bool
	ModelName() string
	Generate(ctx context.Context, system, prompt string, settings ModelSettings, onToken StreamCallback) (string, error)
}

// SendRequest describes one user turn for the dispatcher.
type SendRequest struct {
	Prompt       string
	Chat         *Chat
	ProviderSlug string
	Local        bool
	Streaming    bool
	OnToken      StreamCallback
}

// Dispatcher routes user turns to the selected provider or the local
// runtime, manages the one-shot system prompt, appends the exchanged
// messages to the chat, and derives the chat title from the first reply.
type Dispatcher struct {
	providers ProviderLookup
	local     LocalRuntime

	botName  string
	userName string

	defaultSystemPrompt string
	settingsFor         func(model string) ModelSettings

	mu     sync.Mutex
	staged string
}

// NewDispatcher wires a dispatcher. local and settingsFor may be nil when
// local generation is unavailable.
func NewDispatcher(providers ProviderLookup, local LocalRuntime, botName, userName, defaultSystemPrompt string, settingsFor func(model string) ModelSettings) *Dispatcher {
	if settingsFor == nil {
		settingsFor = func(string) ModelSettings { return DefaultModelSettings() }
	}
	return &Dispatcher{
		providers:           providers,
		local:               local,
		botName:             botName,
		userName:            userName,
		defaultSystemPrompt: defaultSystemPrompt,
		settingsFor:         settingsFor,
	}
}

// StageSystemPrompt sets a system prompt consumed by exactly the next
// Send call. Staging again before a Send replaces the previous value.
func (d *Dispatcher) StageSystemPrompt(prompt string) {
	d.mu.Lock()
	d.staged = prompt
	d.mu.Unlock()
}

// consumeSystemPrompt returns the staged prompt and clears it, falling
// back to the configured default.
func (d *Dispatcher) consumeSystemPrompt() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.staged != "" {
		prompt := d.staged
		d.staged = ""
		return prompt
	}
	return d.defaultSystemPrompt
}

// Send runs one user turn. The user message and the reply are appended
// to req.Chat; failures are appended as assistant messages tagged with
// their result kind. On the first successful reply a default title is
// replaced with one derived from the reply.
func (d *Dispatcher) Send(ctx context.Context, req SendRequest) Result {
	reqID := uuid.NewString()[:8]

	if config.DebugLog != nil {
		config.DebugLog.Printf("[%s] dispatch: provider=%s local=%v streaming=%v prompt_len=%d",
			reqID, req.ProviderSlug, req.Local, req.Streaming, len(req.Prompt))
	}

	var (
		result      Result
		attribution string
	)

	if req.Local {
		result = d.askLocal(ctx, req)
		if d.local != nil {
			attribution = "Local · " + d.local.ModelName()
		}
	} else {
		provider, ok := d.providers.Get(req.ProviderSlug)
		if !ok || !d.providers.Enabled(req.ProviderSlug) {
			// The staged system prompt is not consumed here; it
			// survives for a retry after the user enables a provider.
			result = ErrorResult(KindNotConfigured, NoProviderMessage)
			d.record(req.Chat, req.Prompt, result, "")
			return result
		}

		ex := Exchange{
			Prompt:  req.Prompt,
			System:  d.consumeSystemPrompt(),
			Chat:    req.Chat,
			BotName: d.botName,
		}
		if req.Streaming && req.OnToken != nil {
			result = provider.AskStream(ctx, ex, req.OnToken)
		} else {
			result = provider.Ask(ctx, ex)
		}
		attribution = fmt.Sprintf("%s · %s", provider.Name(), provider.Model())
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[%s] dispatch done: kind=%s reply_len=%d", reqID, result.Kind, len(result.Text))
	}

	d.record(req.Chat, req.Prompt, result, attribution)
	return result
}

func (d *Dispatcher) askLocal(ctx context.Context, req SendRequest) Result {
	if d.local == nil || !d.local.Ready() {
		// Staged system prompt stays for the next attempt.
		return ErrorResult(KindNotConfigured, LocalNoModelMessage)
	}

	if greeting, ok := d.localGreeting(req.Prompt); ok {
		if req.Streaming && req.OnToken != nil {
			req.OnToken(greeting)
		}
		return OKResult(greeting)
	}

	system := d.consumeSystemPrompt()
	if system == "" {
		system = fmt.Sprintf(localSystemTemplate, d.botName, d.userName)
	}

	settings := d.settingsFor(d.local.ModelName())

	var onToken StreamCallback
	if req.Streaming {
		onToken = req.OnToken
	}
	reply, err := d.local.Generate(ctx, system, req.Prompt, settings, onToken)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrorResult(KindTimeout, "Request timed out. The model might be loading or processing.")
		}
		return ErrorResult(KindConnectionFailure, err.Error())
	}
	return OKResult(reply)
}

// localGreeting short-circuits plain greetings so the local model is not
// exercised for them.
func (d *Dispatcher) localGreeting(prompt string) (string, bool) {
	lower := strings.ToLower(prompt)
	if len(strings.Fields(prompt)) <= 3 && (strings.Contains(lower, "hello") || strings.Contains(lower, "hi")) {
		return fmt.Sprintf("Hello %s! How can I help you today?", d.userName), true
	}
	return "", false
}

func (d *Dispatcher) record(chat *Chat, prompt string, result Result, attribution string) {
	if chat == nil {
		return
	}

	firstReply := chat.HasDefaultTitle()

	chat.Append(NewUserMessage(d.userName, prompt))
	if result.IsError() {
		// Failures join the thread like any reply; the Kind tag keeps
		// them apart in storage and they never become the title.
		chat.Append(NewErrorMessage(d.botName, result.Text, result.Kind.String()))
		return
	}
	chat.Append(NewAssistantMessage(d.botName, result.Text, attribution))

	if firstReply && result.Kind == KindOK {
		if title := AutoTitle(result.Text, prompt); title != "" {
			chat.Title = title
		}
	}
}
