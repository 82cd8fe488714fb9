package model

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"
)

// TitleWidth is the display-cell cap for derived chat titles.
const TitleWidth = 40

// Chat is a stored conversation. IDs are small integers assigned
// sequentially and never reused within a session of the store.
type Chat struct {
	ID      int       `json:"id"`
	Title   string    `json:"title"`
	Starred bool      `json:"starred,omitempty"`
	Content []Message `json:"content"`
}

// Append adds a message to the transcript.
func (c *Chat) Append(msg Message) {
	c.Content = append(c.Content, msg)
}

// IsEmpty reports whether the chat has no messages yet.
func (c *Chat) IsEmpty() bool {
	return len(c.Content) == 0
}

// FirstUserMessage returns the content of the earliest message not
// attributed to the assistant, or "" when there is none.
func (c *Chat) FirstUserMessage(botName string) string {
	for _, msg := range c.Content {
		if !IsAssistant(msg, botName) {
			return msg.Content
		}
	}
	return ""
}

// HasDefaultTitle reports whether the chat still carries its placeholder
// "New Chat N" title.
func (c *Chat) HasDefaultTitle() bool {
	return c.Title == NewChatTitle(c.ID)
}

// NextChatID returns one more than the highest existing ID, starting at 1.
// Gaps from deleted chats are not reused.
func NextChatID(chats []*Chat) int {
	max := 0
	for _, chat := range chats {
		if chat.ID > max {
			max = chat.ID
		}
	}
	return max + 1
}

// NewChatTitle returns the placeholder title for a freshly created chat.
func NewChatTitle(id int) string {
	return fmt.Sprintf("New Chat %d", id)
}

// DeriveTitle turns model output into a one-line chat title: the first
// non-empty line is selected, markdown is stripped, whitespace collapsed,
// and the result capped at TitleWidth display cells with an ellipsis.
func DeriveTitle(text string) string {
	plain := stripMarkdown(firstNonEmptyLine(text))
	plain = strings.Join(strings.Fields(plain), " ")
	if plain == "" {
		return ""
	}
	return runewidth.Truncate(plain, TitleWidth, "…")
}

// AutoTitle derives a chat title from the first assistant reply, falling
// back to the first user prompt when the reply is unusable as a title
// (leads with an apology, or looks like encoded data).
func AutoTitle(assistantReply, userPrompt string) string {
	if !looksLikeEncodedData(assistantReply) {
		title := DeriveTitle(assistantReply)
		if title != "" && !strings.HasPrefix(strings.ToLower(title), "sorry") {
			return title
		}
	}
	return DeriveTitle(userPrompt)
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

func stripMarkdown(text string) string {
	p := parser.New()
	doc := p.Parse([]byte(text))

	var b strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Text:
			b.Write(n.Literal)
			b.WriteByte(' ')
		case *ast.Code:
			b.Write(n.Literal)
			b.WriteByte(' ')
		case *ast.CodeBlock:
			// fenced blocks are never good titles
			return ast.SkipChildren
		}
		return ast.GoToNext
	})
	return b.String()
}

// looksLikeEncodedData detects replies dominated by base64-style runs,
// which happens when a model echoes an attachment back.
func looksLikeEncodedData(text string) bool {
	for _, field := range strings.Fields(text) {
		if len(field) < 100 {
			continue
		}
		encoded := true
		for _, r := range field {
			if !isBase64Rune(r) {
				encoded = false
				break
			}
		}
		if encoded {
			return true
		}
	}
	return false
}

func isBase64Rune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '+', r == '/', r == '=':
		return true
	}
	return false
}
