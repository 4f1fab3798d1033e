package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voxxy/internal/blocked"
	"voxxy/internal/model"
	"voxxy/internal/util"
)

type blockedChangedMsg struct {
	users []model.BlockedUser
	info  string
	err   error
}

// BlockedModel lists blocked accounts and edits the list.
type BlockedModel struct {
	cache  *blocked.Cache
	keys   KeyMap
	users  []model.BlockedUser
	cursor int
	busy   bool
	error  string

	adding bool
	input  textinput.Model
}

// NewBlockedModel creates the screen from the cache's current contents.
func NewBlockedModel(cache *blocked.Cache) *BlockedModel {
	in := textinput.New()
	in.Placeholder = "user id"
	in.CharLimit = 19
	in.Prompt = "Block user #"
	return &BlockedModel{
		cache: cache,
		keys:  DefaultKeyMap(),
		users: cache.List(),
		input: in,
	}
}

// Typing reports whether keystrokes go to the id input.
func (m *BlockedModel) Typing() bool {
	return m.adding
}

// Update handles messages for the blocked screen.
func (m BlockedModel) Update(msg tea.Msg) (BlockedModel, tea.Cmd) {
	switch msg := msg.(type) {
	case model.BlockedLoadedMsg:
		m.users = msg.Users
		m.clampCursor()
		return m, nil
	case blockedChangedMsg:
		m.busy = false
		if msg.err != nil {
			m.error = msg.err.Error()
			return m, nil
		}
		m.error = ""
		m.users = msg.users
		m.clampCursor()
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		if m.busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.users)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Block):
			m.adding = true
			m.error = ""
			m.input.SetValue("")
			cmd := m.input.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.Unblock):
			if len(m.users) == 0 {
				return m, nil
			}
			target := m.users[m.cursor]
			m.busy = true
			return m, unblockUserCmd(m.cache, target)
		}
	}
	return m, nil
}

func (m BlockedModel) updateInput(msg tea.KeyMsg) (BlockedModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		return m, nil
	case "enter":
		id, err := strconv.ParseInt(strings.TrimSpace(m.input.Value()), 10, 64)
		if err != nil || id <= 0 {
			m.error = "Enter a numeric user id"
			return m, nil
		}
		m.adding = false
		m.input.Blur()
		m.busy = true
		return m, blockUserCmd(m.cache, id)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *BlockedModel) clampCursor() {
	if m.cursor >= len(m.users) {
		m.cursor = max(0, len(m.users)-1)
	}
}

// View renders the blocked list.
func (m *BlockedModel) View(width, height int) string {
	var sections []string

	synced := "never synced"
	if t := m.cache.LastSynced(); !t.IsZero() {
		synced = "synced " + util.FormatDateHuman(t)
	}
	sections = append(sections, StatusBarStyle.Render(fmt.Sprintf("%d blocked  ·  %s", len(m.users), synced)))

	if m.adding {
		sections = append(sections, ActiveBorderStyle.Width(min(50, width-4)).Render(m.input.View()))
	}
	if m.error != "" {
		sections = append(sections, ErrorStyle.Render(m.error))
	}

	if len(m.users) == 0 {
		sections = append(sections, EmptyStateStyle.Render("You haven't blocked anyone."))
		return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(sections, "\n"))
	}

	var rows []string
	for i, u := range m.users {
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		name := u.Name
		if name == "" {
			name = fmt.Sprintf("User #%d", u.ID)
		}
		line := fmt.Sprintf("%-28s %s", util.TruncateString(name, 26), HelpDescStyle.Render(u.Email))
		if i == m.cursor {
			line = fmt.Sprintf("%-28s %s", util.TruncateString(name, 26), u.Email)
		}
		rows = append(rows, style.Width(width-4).Render(line))
	}
	sections = append(sections, strings.Join(rows, "\n"))

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(sections, "\n\n"))
}

func initBlockedCmd(cache *blocked.Cache, token string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = cache.Initialize(ctx, token)
		return model.BlockedLoadedMsg{Users: cache.List()}
	}
}

func blockUserCmd(cache *blocked.Cache, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if cache.IsBlocked(ctx, id) {
			return blockedChangedMsg{users: cache.List(), info: fmt.Sprintf("User #%d is already blocked", id)}
		}
		if err := cache.Block(ctx, id); err != nil {
			return blockedChangedMsg{err: err}
		}
		return blockedChangedMsg{users: cache.List(), info: fmt.Sprintf("Blocked user #%d", id)}
	}
}

func unblockUserCmd(cache *blocked.Cache, u model.BlockedUser) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := cache.Unblock(ctx, u.ID); err != nil {
			return blockedChangedMsg{err: err}
		}
		name := u.Name
		if name == "" {
			name = fmt.Sprintf("user #%d", u.ID)
		}
		return blockedChangedMsg{users: cache.List(), info: "Unblocked " + name}
	}
}
