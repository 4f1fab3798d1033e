package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"voxxy/internal/model"
	"voxxy/internal/util"
)

type activityColumn struct {
	key   string
	label string
	width int
}

// ActivitiesModel is the home screen list of the user's activities.
type ActivitiesModel struct {
	rows   []model.Activity
	cursor int
	offset int

	columns      []activityColumn
	activeColumn int
	sortKey      string
	sortDesc     bool
}

// NewActivitiesModel creates the list, newest first.
func NewActivitiesModel(rows []model.Activity) *ActivitiesModel {
	m := &ActivitiesModel{
		rows: append([]model.Activity(nil), rows...),
		columns: []activityColumn{
			{key: "created", label: "created", width: 12},
			{key: "name", label: "name", width: 24},
			{key: "type", label: "type", width: 14},
			{key: "location", label: "location", width: 26},
			{key: "when", label: "when", width: 16},
			{key: "status", label: "status", width: 12},
		},
		sortKey:  "created",
		sortDesc: true,
	}
	m.rebuild()
	return m
}

func (m *ActivitiesModel) rebuild() {
	sort.SliceStable(m.rows, func(i, j int) bool {
		if m.sortKey == "created" {
			left, right := m.rows[i].CreatedAt, m.rows[j].CreatedAt
			if left.Equal(right) {
				return m.rows[i].ID > m.rows[j].ID
			}
			if m.sortDesc {
				return left.After(right)
			}
			return left.Before(right)
		}
		left := strings.ToLower(m.getValue(m.rows[i], m.sortKey))
		right := strings.ToLower(m.getValue(m.rows[j], m.sortKey))
		if left == right {
			return m.rows[i].ID > m.rows[j].ID
		}
		if m.sortDesc {
			return left > right
		}
		return left < right
	})
	m.clampCursor()
}

func (m *ActivitiesModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

func (m *ActivitiesModel) getValue(row model.Activity, key string) string {
	switch key {
	case "name":
		return row.ActivityName
	case "type":
		return row.ActivityType
	case "location":
		return row.ActivityLocation
	case "when":
		return util.FormatSchedule(row.DateDay, row.DateTime)
	case "status":
		return activityStatus(row)
	default:
		return ""
	}
}

func activityStatus(a model.Activity) string {
	switch {
	case a.Finalized:
		return "finalized"
	case a.Collecting:
		return "collecting"
	default:
		return "draft"
	}
}

// NextColumn moves the active column right.
func (m *ActivitiesModel) NextColumn() {
	m.activeColumn = (m.activeColumn + 1) % len(m.columns)
}

// PrevColumn moves the active column left.
func (m *ActivitiesModel) PrevColumn() {
	m.activeColumn--
	if m.activeColumn < 0 {
		m.activeColumn = len(m.columns) - 1
	}
}

// SortActiveColumn sorts by the active column.
func (m *ActivitiesModel) SortActiveColumn(desc bool) {
	m.sortKey = m.columns[m.activeColumn].key
	m.sortDesc = desc
	m.rebuild()
}

// Selected returns the activity under the cursor.
func (m *ActivitiesModel) Selected() (model.Activity, bool) {
	if len(m.rows) == 0 {
		return model.Activity{}, false
	}
	return m.rows[m.cursor], true
}

// Len returns the number of rows.
func (m *ActivitiesModel) Len() int {
	return len(m.rows)
}

// View renders the activity list.
func (m *ActivitiesModel) View(width, height int) string {
	if len(m.rows) == 0 {
		emptyMsg := `    No activities yet.
    Press  1  for game night,  2  for cocktails or  3  for a restaurant or bar.`
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render(emptyMsg)
	}

	widths := make([]int, 0, len(m.columns))
	headers := make([]string, 0, len(m.columns))
	totalFixed := 0
	for i, col := range m.columns {
		label := strings.ToUpper(col.label)
		if i == m.activeColumn {
			label = "❋ " + label
		}
		if m.sortKey == col.key {
			if m.sortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		cellWidth := max(col.width, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	if extra := width - totalFixed - 4; extra > 0 {
		widths[len(widths)-1] += extra
	}

	header := renderTableRow(headers, widths, LabelStyle)

	visibleHeight := height - 3
	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		row := m.rows[i]
		style := NormalRowStyle
		if i%2 == 1 {
			style = style.Background(ColorSurface)
		}
		if i == m.cursor {
			style = SelectedRowStyle
		}

		cells := make([]string, 0, len(m.columns))
		for _, col := range m.columns {
			switch col.key {
			case "created":
				cells = append(cells, util.FormatDateHuman(row.CreatedAt))
			case "status":
				statusStyle := lipgloss.NewStyle().Foreground(ColorMuted)
				if row.Finalized {
					statusStyle = statusStyle.Foreground(ColorGreen)
				} else if row.Collecting {
					statusStyle = statusStyle.Foreground(ColorYellow)
				}
				if i == m.cursor {
					statusStyle = lipgloss.NewStyle()
				}
				cells = append(cells, statusStyle.Render(activityStatus(row)))
			default:
				cells = append(cells, util.TruncateString(m.getValue(row, col.key), col.width-2))
			}
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	order := "asc"
	if m.sortDesc {
		order = "desc"
	}
	status := StatusBarStyle.Render(fmt.Sprintf("Activities: %d  ·  sort %s %s",
		len(m.rows), strings.ToUpper(m.sortKey), order))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		strings.Join(rows, "\n"),
		"",
		status,
	)
}

// MoveDown moves the cursor down.
func (m *ActivitiesModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
		if m.cursor >= m.offset+10 {
			m.offset++
		}
	}
}

// MoveUp moves the cursor up.
func (m *ActivitiesModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		if m.cursor < m.offset {
			m.offset--
		}
	}
}

// JumpToTop jumps to the first item.
func (m *ActivitiesModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last item.
func (m *ActivitiesModel) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
		if m.cursor >= 10 {
			m.offset = m.cursor - 9
		}
	}
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func renderActivityDetail(a model.Activity, width int) string {
	field := func(label, value string) string {
		if strings.TrimSpace(value) == "" {
			value = "—"
		}
		return LabelStyle.Render(fmt.Sprintf("%-10s", label)) + " " + value
	}
	audience := a.GroupSize
	audienceLabel := "group"
	if a.TimeOfDay != "" {
		audience, audienceLabel = a.TimeOfDay, "time"
	}
	lines := []string{
		LabelStyle.Render(a.ActivityName) + "  " + HelpDescStyle.Render(a.ActivityType),
		field("where", a.ActivityLocation),
		field("when", util.FormatSchedule(a.DateDay, a.DateTime)),
		field(audienceLabel, audience),
		field("status", activityStatus(a)),
		field("created", util.FormatDateHuman(a.CreatedAt)),
	}
	if a.DateNotes != "" {
		lines = append(lines, field("notes", a.DateNotes))
	}
	return PanelStyle.Width(max(20, width-4)).Render(strings.Join(lines, "\n"))
}
