package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"voxxy/internal/model"
	"voxxy/internal/util"
)

// RecommendationsModel shows try-voxxy results.
type RecommendationsModel struct {
	recs    []model.Recommendation
	cached  bool
	retryIn time.Duration
	cursor  int
}

func NewRecommendationsModel(msg model.RecommendationsMsg) *RecommendationsModel {
	return &RecommendationsModel{
		recs:    msg.Recommendations,
		cached:  msg.Cached,
		retryIn: msg.RetryIn,
	}
}

// MoveDown moves the cursor down.
func (m *RecommendationsModel) MoveDown() {
	if m.cursor < len(m.recs)-1 {
		m.cursor++
	}
}

// MoveUp moves the cursor up.
func (m *RecommendationsModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// View renders the list on the left and the selected venue on the right.
func (m *RecommendationsModel) View(width, height int) string {
	var notice string
	if m.cached {
		notice = "Showing your last recommendations."
		if m.retryIn > 0 {
			notice += fmt.Sprintf(" You can ask again in %s.", util.FormatWait(m.retryIn))
		}
		notice = StatusBarStyle.Render(notice)
	}

	if len(m.recs) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, notice,
			EmptyStateStyle.Width(width).Render("No recommendations this time. Try different answers."))
	}

	listWidth := min(36, width/3)
	var rows []string
	for i, r := range m.recs {
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		line := util.TruncateString(r.Name, listWidth-8)
		if r.PriceRange != "" {
			line += " " + r.PriceRange
		}
		rows = append(rows, style.Width(listWidth).Render(line))
	}
	list := BorderStyle.Width(listWidth + 4).Render(strings.Join(rows, "\n"))

	r := m.recs[m.cursor]
	var detail []string
	detail = append(detail, LabelStyle.Render(r.Name))
	if r.Address != "" {
		detail = append(detail, HelpDescStyle.Render(r.Address))
	}
	if r.Description != "" {
		detail = append(detail, "", r.Description)
	}
	if r.Reason != "" {
		detail = append(detail, "", LabelStyle.Render("Why it fits"), r.Reason)
	}
	if r.Website != "" {
		detail = append(detail, "", HelpDescStyle.Render(r.Website))
	}
	detailWidth := max(20, width-listWidth-14)
	panel := PanelStyle.Width(detailWidth).Render(strings.Join(detail, "\n"))

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", panel)
	if notice != "" {
		return lipgloss.JoinVertical(lipgloss.Left, notice, "", body)
	}
	return body
}
