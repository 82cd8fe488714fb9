package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"parley/config"
	appmodel "parley/model"
)

func (a *AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// header (2) + textarea (3) + footer + spinner line + separators
		chromeHeight := 8
		if !a.ready {
			a.viewport = viewport.New(msg.Width, msg.Height-chromeHeight)
			a.ready = true
		} else {
			a.viewport.Width = msg.Width
			a.viewport.Height = msg.Height - chromeHeight
		}
		a.textarea.SetWidth(msg.Width - 2)
		a.refreshViewport(true)
		return a, nil

	case spinner.TickMsg:
		if !a.streaming {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case appmodel.StreamChunkMsg:
		a.currentResp.WriteString(msg.Chunk)
		a.refreshViewport(true)
		return a, appmodel.WaitForStreamMsg(a.streamCh)

	case appmodel.StreamDoneMsg:
		return a, a.finishStream(msg.Result)

	case appmodel.SendDoneMsg:
		return a, a.finishStream(msg.Result)

	case appmodel.ClipboardReadMsg:
		if msg.Err != nil {
			a.setStatus("Failed to read clipboard: "+msg.Err.Error(), true)
		} else if msg.Text != "" {
			a.textarea.InsertString(msg.Text)
		}
		return a, nil

	case appmodel.ModelsListMsg:
		return a, a.openModelSelector(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.updateComponents(msg)
}

func (a *AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeChat:
		return a.handleChatKey(msg)
	case modeChatList:
		return a.handleChatListKey(msg)
	case modeProviderMenu:
		return a.handleProviderMenuKey(msg)
	case modeModelSelector:
		return a.handleModelSelectorKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeProviderSettings:
		return a.handleSettingsKey(msg)
	}
	return a, nil
}

func (a *AppView) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return a, a.sendPrompt()

	case "ctrl+n":
		chat, err := a.store.NewChat()
		if err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		a.chat = chat
		a.setStatus("", false)
		a.refreshViewport(true)
		return a, nil

	case "ctrl+l":
		a.openChatList()
		return a, nil

	case "ctrl+p":
		a.openProviderMenu()
		return a, nil

	case "ctrl+o":
		if a.cfg.LocalMode {
			a.setStatus("Model selection applies to providers; local model is set in config", false)
			return a, nil
		}
		p, ok := a.registry.Get(a.cfg.CurrentProvider)
		if !ok {
			a.setStatus(appmodel.NoProviderMessage, true)
			return a, nil
		}
		return a, appmodel.ListModelsCmd(p)

	case "ctrl+f":
		a.openSearch()
		return a, nil

	case "ctrl+s":
		if a.chat != nil {
			if err := a.store.SetStarred(a.chat.ID, !a.chat.Starred); err != nil {
				a.setStatus(err.Error(), true)
			}
		}
		return a, nil

	case "ctrl+g":
		a.cfg.LocalMode = !a.cfg.LocalMode
		if err := a.cfg.Save(); err != nil {
			a.setStatus(err.Error(), true)
		}
		return a, nil

	case "ctrl+v":
		return a, func() tea.Msg {
			text, err := clipboard.ReadAll()
			return appmodel.ClipboardReadMsg{Text: text, Err: err}
		}
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// sendPrompt dispatches the textarea content as one streamed turn.
func (a *AppView) sendPrompt() tea.Cmd {
	if a.streaming {
		return nil
	}
	prompt := a.textarea.Value()
	if prompt == "" {
		return nil
	}

	if a.chat == nil {
		chat, err := a.store.NewChat()
		if err != nil {
			a.setStatus(err.Error(), true)
			return nil
		}
		a.chat = chat
	}

	a.textarea.Reset()
	a.streaming = true
	a.currentResp.Reset()
	a.setStatus("", false)

	req := appmodel.SendRequest{
		Prompt:       prompt,
		Chat:         a.chat,
		ProviderSlug: a.cfg.CurrentProvider,
		Local:        a.cfg.LocalMode,
	}

	// Image generation has no token stream; a single round trip is enough.
	if !req.Local && req.ProviderSlug == "dall-e" {
		return tea.Batch(appmodel.SendCmd(a.dispatcher, req), a.spinner.Tick)
	}

	cmd, ch := appmodel.StreamCmd(a.dispatcher, req)
	a.streamCh = ch

	return tea.Batch(cmd, appmodel.WaitForStreamMsg(ch), a.spinner.Tick)
}

// finishStream persists the completed turn and updates the transcript.
// Failures are part of the thread too, so they are saved and rendered
// like any reply, with the status bar flagging them.
func (a *AppView) finishStream(result appmodel.Result) tea.Cmd {
	a.streaming = false
	a.currentResp.Reset()

	if result.IsError() {
		a.setStatus(result.Text, true)
	}

	if result.Kind == appmodel.KindImage {
		if path, err := a.saveImage(result.Image); err != nil {
			a.setStatus(err.Error(), true)
		} else {
			a.setStatus("Image saved to "+path, false)
		}
	}

	if err := a.store.Save(); err != nil {
		a.setStatus(err.Error(), true)
	}
	if a.index != nil && a.chat != nil {
		if err := a.index.IndexChat(a.chat); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("failed to index chat %d: %v", a.chat.ID, err)
		}
	}

	a.refreshViewport(true)
	return nil
}

func (a *AppView) saveImage(data []byte) (string, error) {
	dir := filepath.Join(a.cfg.DataDir(), "images")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	name := fmt.Sprintf("image-%d.png", time.Now().Unix())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}

func (a *AppView) openChatList() {
	chats := a.store.Chats()
	items := make([]selectorItem, 0, len(chats))
	// starred chats first, then the rest in stored order
	for _, starred := range []bool{true, false} {
		for _, chat := range chats {
			if chat.Starred == starred {
				items = append(items, selectorItem{
					label: chatListLabel(chat.Title, chat.Starred, len(chat.Content)),
					value: strconv.Itoa(chat.ID),
				})
			}
		}
	}

	a.selector = newSelector("Chats", items,
		FormatFooter("Enter", "Open", "s", "Star", "d", "Delete", "C", "Clear all", "Esc", "Back"))
	a.mode = modeChatList
}

func (a *AppView) handleChatListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if consumed, cmd := a.selector.update(msg); consumed {
		return a, cmd
	}

	switch msg.String() {
	case "esc":
		a.mode = modeChat
		return a, nil

	case "enter":
		if item, ok := a.selector.selected(); ok {
			id, _ := strconv.Atoi(item.value)
			if chat, found := a.store.ChatByID(id); found {
				a.chat = chat
				a.refreshViewport(true)
			}
		}
		a.mode = modeChat
		return a, nil

	case "s":
		if item, ok := a.selector.selected(); ok {
			id, _ := strconv.Atoi(item.value)
			if chat, found := a.store.ChatByID(id); found {
				if err := a.store.SetStarred(id, !chat.Starred); err != nil {
					a.setStatus(err.Error(), true)
				}
			}
			a.openChatList()
		}
		return a, nil

	case "d":
		if item, ok := a.selector.selected(); ok {
			id, _ := strconv.Atoi(item.value)
			if err := a.store.DeleteChat(id); err != nil {
				a.setStatus(err.Error(), true)
			} else {
				if a.index != nil {
					_ = a.index.RemoveChat(id)
				}
				if a.chat != nil && a.chat.ID == id {
					a.chat = nil
				}
			}
			a.openChatList()
		}
		return a, nil

	case "C":
		if err := a.store.ClearAll(); err != nil {
			a.setStatus(err.Error(), true)
		} else {
			a.chat = nil
			if a.index != nil {
				_ = a.index.Rebuild(nil)
			}
		}
		a.openChatList()
		return a, nil
	}
	return a, nil
}

func (a *AppView) openProviderMenu() {
	providers := a.registry.All()
	items := make([]selectorItem, 0, len(providers))
	for _, p := range providers {
		label := fmt.Sprintf("%s %s", checkbox(a.registry.Enabled(p.Slug())), p.Name())
		if p.Slug() == a.cfg.CurrentProvider {
			label += DimStyle.Render("  (current)")
		}
		items = append(items, selectorItem{
			label: label,
			value: p.Slug(),
			dim:   !a.registry.Enabled(p.Slug()),
		})
	}

	a.selector = newSelector("Providers", items,
		FormatFooter("Enter", "Use", "Space", "Enable", "e", "Settings", "Esc", "Back"))
	a.mode = modeProviderMenu
}

func (a *AppView) handleProviderMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if consumed, cmd := a.selector.update(msg); consumed {
		return a, cmd
	}

	switch msg.String() {
	case "esc":
		a.mode = modeChat
		return a, nil

	case "enter":
		if item, ok := a.selector.selected(); ok {
			if !a.registry.Enabled(item.value) {
				a.setStatus(appmodel.NoProviderMessage, true)
				return a, nil
			}
			a.cfg.CurrentProvider = item.value
			a.cfg.LocalMode = false
			if err := a.cfg.Save(); err != nil {
				a.setStatus(err.Error(), true)
			}
		}
		a.mode = modeChat
		return a, nil

	case " ":
		if item, ok := a.selector.selected(); ok {
			enabled := a.registry.Enabled(item.value)
			if err := a.store.SetProviderEnabled(item.value, !enabled); err != nil {
				a.setStatus(err.Error(), true)
			}
			idx := a.selector.idx
			a.openProviderMenu()
			a.selector.idx = idx
		}
		return a, nil

	case "e":
		if item, ok := a.selector.selected(); ok {
			a.openProviderSettings(item.value)
		}
		return a, nil
	}
	return a, nil
}

func (a *AppView) openProviderSettings(slug string) {
	p, ok := a.registry.Get(slug)
	if !ok {
		return
	}

	values := a.store.ProviderData(slug)
	if a.cfg.CredentialStore != nil {
		if key := a.cfg.CredentialStore.Get(slug); key != "" {
			values["api_key"] = key
		}
	}

	a.settings = newSettings(slug, p.Name(), a.registry.Enabled(slug), p.ConfigSchema(), values)
	a.mode = modeProviderSettings
}

func (a *AppView) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &a.settings

	if s.editing {
		switch msg.String() {
		case "enter":
			key := s.commitEdit()
			a.persistSettingsField(key, s.values[key])
			return a, nil
		case "esc":
			s.editing = false
			s.input.Blur()
			return a, nil
		default:
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			return a, cmd
		}
	}

	switch msg.String() {
	case "esc":
		a.registry.Reload()
		a.openProviderMenu()
		return a, nil
	case "up", "k":
		if s.idx > 0 {
			s.idx--
		}
	case "down", "j":
		if s.idx < s.rowCount()-1 {
			s.idx++
		}
	case " ":
		if s.idx == 0 {
			s.enabled = !s.enabled
			if err := a.store.SetProviderEnabled(s.slug, s.enabled); err != nil {
				a.setStatus(err.Error(), true)
			}
		}
	case "enter":
		if s.idx == 0 {
			s.enabled = !s.enabled
			if err := a.store.SetProviderEnabled(s.slug, s.enabled); err != nil {
				a.setStatus(err.Error(), true)
			}
		} else if s.beginEdit() {
			return a, textinput.Blink
		}
	}
	return a, nil
}

// persistSettingsField routes an edited value to the right store:
// credentials go to the credential store, everything else to data.json.
func (a *AppView) persistSettingsField(key, value string) {
	if key == "" {
		return
	}

	var err error
	if key == "api_key" && a.cfg.CredentialStore != nil {
		if value == "" {
			err = a.cfg.CredentialStore.Delete(a.settings.slug)
		} else {
			err = a.cfg.CredentialStore.Set(a.settings.slug, value)
		}
	} else {
		err = a.store.SetProviderField(a.settings.slug, key, value)
	}
	if err != nil {
		a.setStatus(err.Error(), true)
		return
	}
	a.registry.Reload()
}

func (a *AppView) openModelSelector(msg appmodel.ModelsListMsg) tea.Cmd {
	if msg.Err != nil {
		a.setStatus("Could not list models: "+msg.Err.Error(), true)
		return nil
	}

	items := make([]selectorItem, 0, len(msg.Models))
	for _, name := range msg.Models {
		items = append(items, selectorItem{label: name, value: name})
	}

	a.selector = newSelector("Models · "+msg.Slug, items, "")
	a.mode = modeModelSelector
	return nil
}

func (a *AppView) handleModelSelectorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if consumed, cmd := a.selector.update(msg); consumed {
		return a, cmd
	}

	switch msg.String() {
	case "esc":
		a.mode = modeChat
		return a, nil

	case "enter":
		if item, ok := a.selector.selected(); ok {
			if p, found := a.registry.Get(a.cfg.CurrentProvider); found {
				p.SetModel(item.value)
				if err := a.store.SetProviderField(p.Slug(), "model", item.value); err != nil {
					a.setStatus(err.Error(), true)
				}
			}
		}
		a.mode = modeChat
		return a, nil
	}
	return a, nil
}

func (a *AppView) openSearch() {
	a.selector = newSelector("Search Messages", nil,
		FormatFooter("type", "Query", "Enter", "Open chat", "Esc", "Back"))
	a.selector.filtering = true
	a.selector.filter.Focus()
	a.mode = modeSearch
}

func (a *AppView) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &a.selector

	switch msg.String() {
	case "esc":
		a.mode = modeChat
		return a, nil

	case "enter":
		if item, ok := s.selected(); ok {
			id, _ := strconv.Atoi(item.value)
			if chat, found := a.store.ChatByID(id); found {
				a.chat = chat
				a.refreshViewport(true)
			}
			a.mode = modeChat
		}
		return a, nil

	case "up", "ctrl+k":
		if s.idx > 0 {
			s.idx--
		}
		return a, nil
	case "down", "ctrl+j":
		if s.idx < len(s.filtered)-1 {
			s.idx++
		}
		return a, nil
	}

	// Every other key edits the query and reruns the search
	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	a.runSearch(s.filter.Value())
	return a, cmd
}

func (a *AppView) runSearch(query string) {
	s := &a.selector
	if a.index == nil || query == "" {
		s.items = nil
		s.filtered = nil
		s.idx = 0
		return
	}

	hits, err := a.index.Search(query)
	if err != nil {
		a.setStatus(err.Error(), true)
		return
	}

	items := make([]selectorItem, 0, len(hits))
	for _, hit := range hits {
		title := "?"
		if chat, ok := a.store.ChatByID(hit.ChatID); ok {
			title = chat.Title
		}
		items = append(items, selectorItem{
			label: fmt.Sprintf("%s %s %s", TitleStyle.Render(title), DimStyle.Render(hit.Role+":"), hit.Preview),
			value: strconv.Itoa(hit.ChatID),
		})
	}
	s.items = items
	s.filtered = items
	if s.idx >= len(items) {
		s.idx = 0
	}
}

func (a *AppView) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	a.textarea, cmd = a.textarea.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}
