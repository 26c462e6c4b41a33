package chattui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldhand/fieldhand/internal/chat"
	"github.com/fieldhand/fieldhand/internal/chattui/styles"
)

// listRefreshedMsg reports the outcome of a list refresh.
type listRefreshedMsg struct {
	err error
}

// deleteResultMsg reports the outcome of a conversation delete.
type deleteResultMsg struct {
	err error
}

// inboxView renders the conversation list with unread markers.
type inboxView struct {
	inbox    *chat.Inbox
	selected int
	status   string
}

func newInboxView(inbox *chat.Inbox) *inboxView {
	return &inboxView{inbox: inbox}
}

func (v *inboxView) Init() tea.Cmd {
	return v.refreshCmd()
}

func (v *inboxView) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return listRefreshedMsg{err: v.inbox.List.Refresh(context.Background())}
	}
}

func (v *inboxView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case listRefreshedMsg:
		if typed.err != nil {
			v.status = "refresh failed, press r to retry"
		} else {
			v.status = ""
		}
		return nil
	case deleteResultMsg:
		if typed.err != nil {
			v.status = "delete failed"
		}
		return nil
	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *inboxView) handleKey(msg tea.KeyMsg) tea.Cmd {
	rows := v.inbox.List.Snapshot()
	v.clampSelection(len(rows))

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(rows)-1 {
			v.selected++
		}
	case "enter":
		if v.selected < len(rows) {
			row := rows[v.selected]
			return openThreadCmd(row.ConversationID, row.CounterpartID, counterpartTitle(row.CounterpartName, row.CounterpartID))
		}
	case "r":
		return v.refreshCmd()
	case "d":
		if v.selected < len(rows) {
			id := rows[v.selected].ConversationID
			return func() tea.Msg {
				return deleteResultMsg{err: v.inbox.List.Delete(context.Background(), id)}
			}
		}
	}
	return nil
}

func (v *inboxView) View(width, height int, theme styles.Theme) string {
	rows := v.inbox.List.Snapshot()
	v.clampSelection(len(rows))

	var b strings.Builder
	if v.status != "" {
		b.WriteString(theme.ErrorBanner().Render(truncate(v.status, width)))
		b.WriteString("\n")
	}
	if len(rows) == 0 {
		b.WriteString(theme.Muted().Render("no conversations yet"))
		return b.String()
	}

	visible := height
	if v.status != "" {
		visible--
	}
	for i, row := range rows {
		if visible > 0 && i >= visible {
			break
		}
		line := v.renderRow(row.ConversationID, counterpartTitle(row.CounterpartName, row.CounterpartID), row.LastMessage, row.ActivityTime(), width, theme)
		if i == v.selected {
			line = theme.Selected().Render(line)
		}
		b.WriteString(line)
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (v *inboxView) renderRow(conversationID, title, preview string, at time.Time, width int, theme styles.Theme) string {
	marker := "  "
	if v.inbox.Unread.Contains(conversationID) {
		marker = theme.UnreadBadge().Render("● ")
	}
	stamp := relativeTime(at)
	body := fmt.Sprintf("%-20s %s", truncate(title, 20), preview)
	avail := width - 2 - len(stamp) - 1
	return marker + truncate(body, maxInt(0, avail)) + " " + theme.Muted().Render(stamp)
}

func (v *inboxView) clampSelection(n int) {
	if v.selected >= n {
		v.selected = n - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
}

func counterpartTitle(name, id string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return id
}

func relativeTime(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	d := time.Since(at)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return at.Format("Jan 2")
	}
}
