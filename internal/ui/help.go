package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"voxxy/internal/model"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	if mode == model.ModeInsert {
		return renderWizardHelp(width)
	}

	switch screen {
	case model.ScreenHome:
		return renderHomeHelp(width)
	case model.ScreenBlocked:
		return renderBlockedHelp(width)
	case model.ScreenRecommendations:
		return renderRecommendationsHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderHomeHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("enter", "details"),
		helpKey("1", "game night"),
		helpKey("2", "cocktails"),
		helpKey("3", "restaurant/bar"),
		helpKey("t", "try voxxy"),
		helpKey("L", "saved location"),
		helpKey("b", "blocked"),
		helpKey("r", "refresh"),
		helpKey("?", "help"),
	}
	return renderHelpLine(keys, width)
}

func renderBlockedHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("a", "block by id"),
		helpKey("d", "unblock"),
		helpKey("h/esc", "back"),
	}
	return renderHelpLine(keys, width)
}

func renderRecommendationsHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("h/esc", "back"),
	}
	return renderHelpLine(keys, width)
}

func renderWizardHelp(width int) string {
	keys := []string{
		helpKey("↑/↓", "move"),
		helpKey("enter", "choose"),
		helpKey("space", "toggle"),
		helpKey("tab", "next"),
		helpKey("esc", "back"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("h/l", "back/select"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Activities"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"gg / G", "Jump to top / bottom"},
			{"enter / esc", "Show / hide activity details"},
			{"tab / shift+tab", "Cycle active column"},
			{"s / S", "Sort active column asc/desc"},
			{"1", "Plan a game night"},
			{"2", "Plan cocktails"},
			{"3", "Plan a restaurant or bar outing"},
			{"r", "Refresh from the server"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Account"),
		helpSection([]helpItem{
			{"t", "Try Voxxy recommendations (no account needed)"},
			{"L", "Change your saved location"},
			{"b", "Blocked users"},
		}),
		titleSection("Blocked Users"),
		helpSection([]helpItem{
			{"a", "Block a user by id"},
			{"d / x", "Unblock selected"},
			{"h / esc", "Back"},
		}),
		titleSection("Wizards"),
		helpSection([]helpItem{
			{"↑ / ↓", "Move between options"},
			{"enter", "Choose (single choice steps advance on their own)"},
			{"space", "Toggle a multi-select option"},
			{"tab / ctrl+s", "Next step, or finish on the last one"},
			{"esc / shift+tab", "Previous step, or close on the first one"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
