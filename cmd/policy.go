package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"voxxy/internal/db"
)

// PolicyVersion is bumped whenever the terms change; older acceptances
// are asked again.
const PolicyVersion = "2024-06"

var (
	// ErrPolicyDeclined is returned when the user declines the terms.
	ErrPolicyDeclined = errors.New("terms and privacy policy were not accepted")
	// ErrNotInteractive is returned when the terms still need accepting but
	// there is no terminal to ask on.
	ErrNotInteractive = errors.New("terms and privacy policy need accepting in a terminal")
)

// PolicyAcceptance is the record kept in device storage.
type PolicyAcceptance struct {
	Version    string    `json:"version"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// PolicyStorage is where the acceptance is cached.
type PolicyStorage interface {
	GetValue(key string, dst any) error
	SetValue(key string, value any) error
}

// PolicyAccepted reports whether the current terms were already accepted.
func PolicyAccepted(storage PolicyStorage) (bool, error) {
	var rec PolicyAcceptance
	err := storage.GetValue(db.KeyPolicyAcceptance, &rec)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read policy acceptance: %w", err)
	}
	return rec.Version == PolicyVersion, nil
}

// EnsurePolicy shows the policy prompt unless the current version was
// accepted before. Declining returns ErrPolicyDeclined.
func EnsurePolicy(storage PolicyStorage) error {
	accepted, err := PolicyAccepted(storage)
	if err != nil {
		return err
	}
	if accepted {
		return nil
	}
	if !interactive() {
		return fmt.Errorf("%w: run voxxy interactively once to review them", ErrNotInteractive)
	}

	prog := tea.NewProgram(newPolicyModel(), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return fmt.Errorf("policy prompt failed: %w", err)
	}
	m, ok := finalModel.(policyModel)
	if !ok {
		return fmt.Errorf("unexpected policy model type")
	}
	if !m.accepted {
		return ErrPolicyDeclined
	}
	return savePolicyAcceptance(storage, time.Now())
}

func savePolicyAcceptance(storage PolicyStorage, now time.Time) error {
	rec := PolicyAcceptance{Version: PolicyVersion, AcceptedAt: now.UTC()}
	if err := storage.SetValue(db.KeyPolicyAcceptance, rec); err != nil {
		return fmt.Errorf("failed to save policy acceptance: %w", err)
	}
	log.Info().Str("version", PolicyVersion).Msg("policy accepted")
	return nil
}

var interactive = func() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

var (
	pColorMuted  = lipgloss.Color("#8A82A6")
	pColorText   = lipgloss.Color("#E6E1F5")
	pColorAccent = lipgloss.Color("#B388FF")

	pTitleStyle = lipgloss.NewStyle().
			Foreground(pColorAccent).
			Bold(true)

	pHeaderStyle = lipgloss.NewStyle().
			Foreground(pColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(pColorMuted)

	pPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pColorMuted).
			Padding(1, 2)

	pMutedStyle = lipgloss.NewStyle().
			Foreground(pColorMuted)

	pOptionStyle = lipgloss.NewStyle().
			Foreground(pColorText)

	pOptionSelected = lipgloss.NewStyle().
			Foreground(pColorAccent).
			Bold(true)

	pFooterStyle = lipgloss.NewStyle().
			Foreground(pColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(pColorMuted)
)

type policyModel struct {
	accept   bool
	accepted bool
	width    int
	height   int
}

func newPolicyModel() policyModel {
	return policyModel{accept: true}
}

func (m policyModel) Init() tea.Cmd { return nil }

func (m policyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.accepted = true
			return m, tea.Quit
		case "n", "N", "q", "ctrl+c", "esc":
			m.accepted = false
			return m, tea.Quit
		case "up", "k", "left", "h":
			m.accept = true
		case "down", "j", "right", "l":
			m.accept = false
		case "enter":
			// Enter commits the highlighted option
			m.accepted = m.accept
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m policyModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	left := "  " + pTitleStyle.Render("voxxy") + " " + pMutedStyle.Render("› Terms")
	right := pMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	header := pHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)

	yes := "I agree to the Terms of Service and Privacy Policy"
	no := "Decline and quit"
	var yesDisplay, noDisplay string
	if m.accept {
		yesDisplay = "  " + pOptionSelected.Render("→ "+yes)
		noDisplay = "    " + pOptionStyle.Render(no)
	} else {
		yesDisplay = "    " + pOptionStyle.Render(yes)
		noDisplay = "  " + pOptionSelected.Render("→ "+no)
	}

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		pTitleStyle.Render("Before you start planning"),
		"",
		pOptionStyle.Render("Voxxy stores your activities and preferences to plan with your group."),
		pOptionStyle.Render("Read the terms at https://www.voxxyai.com/terms"),
		pOptionStyle.Render("and the privacy policy at https://www.voxxyai.com/privacy"),
		"",
		yesDisplay,
		noDisplay,
	)
	cardWidth := min(92, width-6)
	card := pPanelStyle.Width(cardWidth).Render(body)

	footer := pFooterStyle.Width(width).Render("↑↓/jk to choose  y/n enter to confirm  q quit")
	content := lipgloss.Place(width, max(8, height-4), lipgloss.Center, lipgloss.Top, card)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}
