package chattui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fieldhand/fieldhand/internal/chat"
	"github.com/fieldhand/fieldhand/internal/chattui/styles"
)

// threadOpenedMsg reports the outcome of opening a conversation.
type threadOpenedMsg struct {
	err error
}

// sendResultMsg reports the outcome of a send. draft carries the
// original input so a failed send can restore it.
type sendResultMsg struct {
	err   error
	draft string
}

// loadOlderMsg reports the outcome of an older-page fetch.
type loadOlderMsg struct {
	err error
}

// threadView renders the open conversation and the compose line.
type threadView struct {
	inbox          *chat.Inbox
	conversationID string
	title          string

	draft  string
	status string
}

func newThreadView(inbox *chat.Inbox) *threadView {
	return &threadView{inbox: inbox}
}

// SetTarget points the view at a conversation and kicks off the load.
func (v *threadView) SetTarget(conversationID, title string) tea.Cmd {
	v.conversationID = conversationID
	v.title = title
	v.draft = ""
	v.status = ""
	return func() tea.Msg {
		return threadOpenedMsg{err: v.inbox.Thread.Open(context.Background(), conversationID)}
	}
}

// Reset clears per-conversation state when the screen closes.
func (v *threadView) Reset() {
	v.conversationID = ""
	v.title = ""
	v.draft = ""
	v.status = ""
}

func (v *threadView) Init() tea.Cmd {
	return nil
}

func (v *threadView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case threadOpenedMsg:
		if typed.err != nil {
			v.status = "load failed, ctrl+r to retry"
		}
		return nil
	case loadOlderMsg:
		if typed.err != nil {
			v.status = "could not load older messages, ctrl+r to retry"
		}
		return nil
	case sendResultMsg:
		if typed.err != nil {
			// Put the text back so nothing the user typed is lost.
			v.draft = typed.draft
			var sendErr *chat.SendError
			if errors.As(typed.err, &sendErr) {
				v.status = "send failed, press enter to retry"
			} else {
				v.status = "send failed"
			}
		}
		return nil
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *threadView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return popViewCmd()
	case "enter":
		content := strings.TrimSpace(v.draft)
		if content == "" {
			return nil
		}
		v.draft = ""
		v.status = ""
		return func() tea.Msg {
			return sendResultMsg{
				err:   v.inbox.Thread.Send(context.Background(), content),
				draft: content,
			}
		}
	case "pgup":
		return func() tea.Msg {
			return loadOlderMsg{err: v.inbox.Thread.LoadOlder(context.Background())}
		}
	case "ctrl+r":
		v.status = ""
		return func() tea.Msg {
			return threadOpenedMsg{err: v.inbox.Thread.Retry(context.Background())}
		}
	case "backspace":
		if len(v.draft) > 0 {
			runes := []rune(v.draft)
			v.draft = string(runes[:len(runes)-1])
		}
		return nil
	}

	switch msg.Type {
	case tea.KeyRunes:
		v.draft += string(msg.Runes)
	case tea.KeySpace:
		v.draft += " "
	}
	return nil
}

func (v *threadView) View(width, height int, theme styles.Theme) string {
	snapshot := v.inbox.Thread.Snapshot()

	var b strings.Builder
	b.WriteString(theme.Accent().Render(truncate(v.title, width)))
	b.WriteString("\n")

	compose := v.renderCompose(width, theme)
	bodyHeight := height - 1 - lipgloss.Height(compose)
	if v.status != "" {
		bodyHeight--
	}
	b.WriteString(v.renderMessages(snapshot, width, maxInt(0, bodyHeight), theme))
	b.WriteString("\n")
	if v.status != "" {
		b.WriteString(theme.ErrorBanner().Render(truncate(v.status, width)))
		b.WriteString("\n")
	}
	b.WriteString(compose)
	return b.String()
}

func (v *threadView) renderMessages(snapshot chat.ThreadSnapshot, width, height int, theme styles.Theme) string {
	switch snapshot.State {
	case chat.ThreadInitialLoading:
		return theme.Muted().Render("loading…")
	case chat.ThreadFailed:
		if len(snapshot.Messages) == 0 {
			return theme.ErrorBanner().Render("failed to load conversation")
		}
	case chat.ThreadIdle:
		return ""
	}

	lines := make([]string, 0, len(snapshot.Messages)+1)
	// Loading takes priority over the hint: hasMore stays true for the
	// whole older-page fetch.
	if snapshot.State == chat.ThreadLoadingMore {
		lines = append(lines, theme.Muted().Render("loading older…"))
	} else if snapshot.HasMore {
		lines = append(lines, theme.Muted().Render("↑ PgUp for older messages"))
	}

	// The window is newest-first; render oldest at the top the way a
	// chat transcript reads.
	for i := len(snapshot.Messages) - 1; i >= 0; i-- {
		msg := snapshot.Messages[i]
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Other))
		prefix := "them"
		if msg.SenderID == v.viewerID() {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Message.Own))
			prefix = "you"
		}
		stamp := msg.CreatedAt.Local().Format("15:04")
		line := fmt.Sprintf("%s %s  %s", theme.Muted().Render(stamp), style.Render(prefix+":"), msg.Content)
		lines = append(lines, truncate(line, maxInt(0, width)))
	}

	// Keep the newest lines visible when the transcript overflows.
	if height > 0 && len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}

func (v *threadView) renderCompose(width int, theme styles.Theme) string {
	prompt := "> "
	return theme.Accent().Render(prompt) + truncate(v.draft, maxInt(0, width-len(prompt)))
}

func (v *threadView) viewerID() string {
	return v.inbox.List.Viewer()
}
