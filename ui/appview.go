package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"parley/config"
	appmodel "parley/model"
	"parley/provider"
	"parley/storage"
)

type viewMode int

const (
	modeChat viewMode = iota
	modeChatList
	modeProviderMenu
	modeModelSelector
	modeSearch
	modeProviderSettings
)

// AppView is the bubbletea root model.
type AppView struct {
	cfg        *config.Config
	store      *storage.Store
	index      *storage.SearchIndex
	registry   *provider.Registry
	dispatcher *appmodel.Dispatcher

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	mode viewMode
	chat *appmodel.Chat

	// Streaming state
	streaming   bool
	currentResp *strings.Builder
	streamCh    chan tea.Msg

	selector selectorState
	settings settingsState

	status      string
	statusError bool
}

// New wires the root view. index may be nil when the search index could
// not be opened; search is then disabled.
func New(cfg *config.Config, store *storage.Store, index *storage.SearchIndex, registry *provider.Registry, dispatcher *appmodel.Dispatcher) *AppView {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	ApplyColorScheme(cfg.ColorScheme)

	return &AppView{
		cfg:         cfg,
		store:       store,
		index:       index,
		registry:    registry,
		dispatcher:  dispatcher,
		textarea:    ta,
		spinner:     sp,
		currentResp: &strings.Builder{},
	}
}

// SetInitialPrompt prefills the input with text supplied on the command
// line; the user still reviews and sends it.
func (a *AppView) SetInitialPrompt(prompt string) {
	a.textarea.SetValue(prompt)
}

func (a *AppView) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.spinner.Tick)
}

// currentProviderLabel names the active backend for the status bar.
func (a *AppView) currentProviderLabel() string {
	if a.cfg.LocalMode {
		return "Local · " + a.cfg.LocalModel
	}
	if p, ok := a.registry.Get(a.cfg.CurrentProvider); ok {
		return fmt.Sprintf("%s · %s", p.Name(), p.Model())
	}
	return "no provider"
}

func (a *AppView) View() string {
	if !a.ready {
		return "Loading..."
	}

	switch a.mode {
	case modeChatList, modeProviderMenu, modeModelSelector, modeSearch:
		return a.selector.view(a.width, a.height)
	case modeProviderSettings:
		return a.settings.view(a.width, a.height)
	}

	var b strings.Builder
	b.WriteString(a.headerView())
	b.WriteString("\n")
	b.WriteString(a.viewport.View())
	b.WriteString("\n")

	if a.streaming {
		b.WriteString(a.spinner.View() + DimStyle.Render(" waiting for reply..."))
		b.WriteString("\n")
	}

	b.WriteString(a.textarea.View())
	b.WriteString("\n")
	b.WriteString(a.footerView())
	return b.String()
}

func (a *AppView) headerView() string {
	title := "New Chat"
	star := ""
	if a.chat != nil {
		title = a.chat.Title
		if a.chat.Starred {
			star = HighlightStyle.Render("★ ")
		}
	}
	left := star + TitleStyle.Render(title)
	right := StatusStyle.Render(a.currentProviderLabel())

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	return line + "\n" + BorderStyle.Render(strings.Repeat("─", a.width))
}

func (a *AppView) footerView() string {
	if a.status != "" {
		if a.statusError {
			return ErrorStyle.Render(a.status)
		}
		return DimStyle.Render(a.status)
	}
	return FormatFooter(
		"Enter", "Send",
		"C-n", "New",
		"C-l", "Chats",
		"C-p", "Providers",
		"C-o", "Models",
		"C-f", "Search",
		"C-c", "Quit",
	)
}

// refreshViewport rerenders the transcript.
func (a *AppView) refreshViewport(gotoBottom bool) {
	if !a.ready {
		return
	}

	var b strings.Builder
	if a.chat != nil {
		for _, msg := range a.chat.Content {
			b.WriteString(messageHeader(msg, a.cfg.BotName) + "\n")
			switch {
			case msg.Kind != "":
				b.WriteString(ErrorStyle.Render(msg.Content) + "\n")
			case appmodel.IsAssistant(msg, a.cfg.BotName):
				b.WriteString(RenderMarkdown(msg.Content, a.width))
			default:
				b.WriteString(msg.Content + "\n")
			}
			b.WriteString("\n")
		}
	}

	if a.streaming && a.currentResp.Len() > 0 {
		b.WriteString(AssistantStyle.Render(a.cfg.BotName) + "\n")
		b.WriteString(a.currentResp.String() + "\n")
	}

	a.viewport.SetContent(b.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// messageHeader renders the speaker line of one transcript entry: the
// styled role, backend attribution for assistant turns, and the time of
// day the message was recorded.
func messageHeader(msg appmodel.Message, botName string) string {
	var header string
	if appmodel.IsAssistant(msg, botName) {
		header = AssistantStyle.Render(msg.Role)
		if msg.Model != "" {
			header += DimStyle.Render("  " + msg.Model)
		}
	} else {
		header = UserStyle.Render(msg.Role)
	}
	if !msg.Time.IsZero() {
		header += DimStyle.Render("  " + msg.Time.Format("15:04"))
	}
	return header
}

func (a *AppView) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusError = isErr
}
