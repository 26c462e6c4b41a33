// Package chattui is the terminal UI for the Fieldhand chat inbox.
package chattui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fieldhand/fieldhand/internal/chat"
	"github.com/fieldhand/fieldhand/internal/chattui/styles"
	"github.com/fieldhand/fieldhand/internal/models"
)

type ViewID string

const (
	ViewInbox  ViewID = "inbox"
	ViewThread ViewID = "thread"
)

// Config configures the chat TUI.
type Config struct {
	// ViewerName is the signed-in viewer's display name for the header.
	ViewerName string
	// Theme selects the color palette.
	Theme string
}

type Model struct {
	inbox      *chat.Inbox
	viewerName string
	theme      styles.Theme

	width    int
	height   int
	showHelp bool

	viewStack []ViewID
	views     map[ViewID]viewModel

	// updates coalesces change notifications from the chat stores into
	// wakeups for the bubbletea event loop.
	updates chan struct{}
	unsubs  []func()
}

type viewModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int, theme styles.Theme) string
}

type pushViewMsg struct {
	id ViewID
}

type popViewMsg struct{}

// openThreadMsg asks the app to open a conversation's thread screen.
type openThreadMsg struct {
	conversationID string
	counterpartID  string
	title          string
}

// feedUpdatedMsg wakes the event loop after a store change.
type feedUpdatedMsg struct{}

func popViewCmd() tea.Cmd {
	return func() tea.Msg {
		return popViewMsg{}
	}
}

func openThreadCmd(conversationID, counterpartID, title string) tea.Cmd {
	return func() tea.Msg {
		return openThreadMsg{conversationID: conversationID, counterpartID: counterpartID, title: title}
	}
}

// NewModel builds the TUI model over an already-started inbox.
func NewModel(inbox *chat.Inbox, cfg Config) (*Model, error) {
	themeName := strings.TrimSpace(cfg.Theme)
	if themeName == "" {
		themeName = "default"
	}
	theme, ok := styles.Themes[themeName]
	if !ok {
		return nil, fmt.Errorf("invalid theme %q", cfg.Theme)
	}

	m := &Model{
		inbox:      inbox,
		viewerName: cfg.ViewerName,
		theme:      theme,
		viewStack:  []ViewID{ViewInbox},
		views:      make(map[ViewID]viewModel),
		updates:    make(chan struct{}, 1),
	}
	m.views[ViewInbox] = newInboxView(inbox)
	m.views[ViewThread] = newThreadView(inbox)

	wake := func() {
		select {
		case m.updates <- struct{}{}:
		default:
		}
	}
	m.unsubs = append(m.unsubs,
		inbox.List.Subscribe(func([]models.ConversationSummary) { wake() }),
		inbox.Unread.Subscribe(func(map[string]struct{}) { wake() }),
		inbox.Thread.Subscribe(func(chat.ThreadSnapshot) { wake() }),
	)
	return m, nil
}

// Run starts the TUI and blocks until the user quits.
func Run(inbox *chat.Inbox, cfg Config) error {
	model, err := NewModel(inbox, cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// Close detaches the model from the chat stores.
func (m *Model) Close() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForUpdate()}
	if view := m.activeView(); view != nil {
		cmds = append(cmds, view.Init())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case feedUpdatedMsg:
		// Stores changed; the re-render picks up fresh snapshots.
		return m, m.waitForUpdate()
	case openThreadMsg:
		m.inbox.Focus.OnFocus(typed.conversationID)
		// Follow the counterpart's profile while their name is on screen.
		m.inbox.WatchProfile(typed.counterpartID)
		m.pushView(ViewThread)
		view := m.views[ViewThread].(*threadView)
		return m, view.SetTarget(typed.conversationID, typed.title)
	case pushViewMsg:
		m.pushView(typed.id)
		if view := m.activeView(); view != nil {
			return m, view.Init()
		}
		return m, nil
	case popViewMsg:
		if m.activeViewID() == ViewThread {
			view := m.views[ViewThread].(*threadView)
			m.inbox.Focus.OnBlur(view.conversationID)
			view.Reset()
			m.inbox.Thread.Close()
			m.inbox.UnwatchProfile()
		}
		m.popView()
		if view := m.activeView(); view != nil {
			return m, view.Init()
		}
		return m, nil
	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(typed); handled {
			return m, cmd
		}
	}

	if active := m.activeView(); active != nil {
		return m, active.Update(msg)
	}
	return m, nil
}

func (m *Model) View() string {
	if active := m.activeView(); active != nil {
		header := m.renderHeader()
		footer := m.renderFooter()
		contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
		if contentHeight < 0 {
			contentHeight = 0
		}
		body := active.View(m.width, contentHeight, m.theme)
		return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	}
	return "no active view"
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}

	// The thread screen owns the keyboard for composing; only ctrl+c is
	// global there.
	if m.activeViewID() != ViewInbox {
		return nil, false
	}

	switch msg.String() {
	case "q":
		return tea.Quit, true
	case "?":
		m.showHelp = !m.showHelp
		return nil, true
	}
	return nil, false
}

func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return feedUpdatedMsg{}
	}
}

func (m *Model) activeView() viewModel {
	return m.views[m.activeViewID()]
}

func (m *Model) activeViewID() ViewID {
	if len(m.viewStack) == 0 {
		return ViewInbox
	}
	return m.viewStack[len(m.viewStack)-1]
}

func (m *Model) pushView(id ViewID) {
	if id == "" {
		return
	}
	if _, ok := m.views[id]; !ok {
		return
	}
	if m.activeViewID() == id {
		return
	}
	m.viewStack = append(m.viewStack, id)
}

func (m *Model) popView() {
	if len(m.viewStack) <= 1 {
		return
	}
	m.viewStack = m.viewStack[:len(m.viewStack)-1]
}
