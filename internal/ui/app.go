package ui

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"voxxy/internal/api"
	"voxxy/internal/blocked"
	"voxxy/internal/location"
	"voxxy/internal/model"
	"voxxy/internal/store"
	"voxxy/internal/submit"
	"voxxy/internal/tryvoxxy"
	"voxxy/internal/wizard"
)

// Backend is the part of the API the root model loads from.
type Backend interface {
	Token() string
	SetToken(token string)
	CurrentUser(ctx context.Context) (model.User, error)
	ListActivities(ctx context.Context) ([]model.Activity, error)
}

// Locator resolves the three location sources of a wizard.
type Locator interface {
	Current(ctx context.Context) (location.Selection, error)
	Search(ctx context.Context, query string) ([]api.PlaceSuggestion, error)
	Details(ctx context.Context, s api.PlaceSuggestion) location.Selection
}

// ProfileUpdater saves profile fields.
type ProfileUpdater interface {
	UpdateUser(ctx context.Context, id int64, update api.UserUpdate) (model.User, error)
}

// Deps are the services shared by every screen.
type Deps struct {
	Backend   Backend
	Locations Locator
	Profiles  ProfileUpdater
	Submitter *submit.Submitter
	Store     *store.Store
	Blocked   *blocked.Cache
	TryVoxxy  *tryvoxxy.Session
}

type crashReport struct {
	id      string
	message string
}

// errorBoundary is shared by every copy of the root model so a failure
// caught while rendering survives until the next update.
type errorBoundary struct {
	report *crashReport
}

func (b *errorBoundary) capture(r any) {
	if b.report != nil {
		return
	}
	id := uuid.NewString()
	log.Error().
		Str("error_id", id).
		Str("panic", fmt.Sprint(r)).
		Str("stack", string(debug.Stack())).
		Msg("recovered from UI failure")
	b.report = &crashReport{id: id, message: fmt.Sprint(r)}
}

// Model is the root Bubble Tea model.
type Model struct {
	deps     Deps
	screen   model.Screen
	mode     model.Mode
	boundary *errorBoundary

	width  int
	height int

	error       string
	info        string
	showingHelp bool
	pendingG    bool
	showDetail  bool

	// Screen models
	activities *ActivitiesModel
	form       *WizardFormModel
	blocked    *BlockedModel
	recs       *RecommendationsModel

	keys KeyMap
}

// New creates a new root model.
func New(deps Deps) Model {
	return Model{
		deps:       deps,
		screen:     model.ScreenHome,
		mode:       model.ModeNav,
		boundary:   &errorBoundary{},
		activities: NewActivitiesModel(nil),
		keys:       DefaultKeyMap(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if !m.signedIn() {
		return nil
	}
	cmds := []tea.Cmd{
		loadUserCmd(m.deps.Backend),
		loadActivitiesCmd(m.deps.Backend),
	}
	if m.deps.Blocked != nil {
		cmds = append(cmds, initBlockedCmd(m.deps.Blocked, m.deps.Backend.Token()))
	}
	return tea.Batch(cmds...)
}

// Update handles messages. A panic anywhere below is turned into the
// error screen instead of tearing the program down.
func (m Model) Update(msg tea.Msg) (next tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.boundary.capture(r)
			next, cmd = m, nil
		}
	}()
	return m.update(msg)
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.boundary.report != nil {
			return m.handleCrashKeys(msg)
		}

		if m.mode == model.ModeInsert {
			return m.updateForm(msg)
		}
		if m.screen == model.ScreenBlocked && m.blocked != nil && m.blocked.Typing() {
			return m.updateBlocked(msg)
		}

		// Handle help toggle
		if key.Matches(msg, m.keys.Help) {
			m.showingHelp = !m.showingHelp
			return m, nil
		}
		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}
		return m.handleNavMode(msg)

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil

	case model.UserLoadedMsg:
		m.deps.Store.SetUser(msg.User)
		m.error = ""
		return m, nil

	case model.ActivitiesLoadedMsg:
		dropped := m.deps.Store.ReconcileActivities(msg.Activities)
		if len(dropped) > 0 {
			log.Warn().Int("count", len(dropped)).Msg("local activities missing from server were dropped")
		}
		m.activities = NewActivitiesModel(m.storedActivities())
		m.error = ""
		return m, nil

	case model.ActivityCreatedMsg:
		m.closeForm()
		m.activities = NewActivitiesModel(m.storedActivities())
		m.info = fmt.Sprintf("Created %s", msg.Activity.ActivityName)
		return m, loadActivitiesCmd(m.deps.Backend)

	case model.ProfileLocationSavedMsg:
		m.closeForm()
		m.info = fmt.Sprintf("Saved location set to %s, %s", msg.User.City, msg.User.State)
		return m, nil

	case model.RecommendationsMsg:
		m.closeForm()
		m.recs = NewRecommendationsModel(msg)
		m.screen = model.ScreenRecommendations
		return m, nil

	case model.BlockedLoadedMsg:
		if m.blocked != nil {
			return m.updateBlocked(msg)
		}
		return m, nil

	case blockedChangedMsg:
		if msg.info != "" {
			m.info = msg.info
		}
		if m.blocked != nil {
			return m.updateBlocked(msg)
		}
		return m, nil

	case model.SignedOutMsg:
		return m.signOut(), nil

	case model.FormCancelledMsg:
		m.closeForm()
		return m, nil
	}

	// Async messages for the active form or input
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.screen == model.ScreenBlocked && m.blocked != nil {
		return m.updateBlocked(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.mode = model.ModeNav
		return m, nil
	}
	newForm, cmd := m.form.Update(msg)
	m.form = &newForm
	return m, cmd
}

func (m Model) updateBlocked(msg tea.Msg) (tea.Model, tea.Cmd) {
	newBlocked, cmd := m.blocked.Update(msg)
	m.blocked = &newBlocked
	return m, cmd
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = model.ModeNav
	if m.screen == model.ScreenWizard {
		m.screen = model.ScreenHome
	}
}

func (m Model) openWizard(s wizard.Schema) (tea.Model, tea.Cmd) {
	m.form = NewWizardFormModel(s, m.deps)
	m.screen = model.ScreenWizard
	m.mode = model.ModeInsert
	m.error = ""
	m.info = ""
	return m, m.form.Init()
}

func (m Model) storedActivities() []model.Activity {
	if m.deps.Store == nil {
		return nil
	}
	return m.deps.Store.Activities()
}

// signOut drops the rejected token and everything loaded with it.
func (m Model) signOut() Model {
	log.Warn().Msg("token rejected by backend, signing out")
	m.deps.Backend.SetToken("")
	if m.deps.Store != nil {
		m.deps.Store.ClearUser()
	}
	if m.form == nil || m.form.wiz.Schema().Kind != wizard.KindTryVoxxy {
		m.closeForm()
	}
	if m.screen == model.ScreenBlocked {
		m.screen = model.ScreenHome
		m.blocked = nil
	}
	m.showDetail = false
	m.activities = NewActivitiesModel(nil)
	m.error = ""
	m.info = "Your session expired. Sign in again with --token (or VOXXY_TOKEN)."
	return m
}

func (m Model) signedIn() bool {
	return m.deps.Backend != nil && m.deps.Backend.Token() != ""
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case model.ScreenHome:
		return m.handleHomeNav(msg)
	case model.ScreenBlocked:
		return m.handleBlockedNav(msg)
	case model.ScreenRecommendations:
		return m.handleRecommendationsNav(msg)
	}
	return m, nil
}

func (m Model) handleHomeNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingG {
		m.pendingG = false
		if msg.String() == "g" {
			m.activities.JumpToTop()
			return m, nil
		}
	}

	switch msg.String() {
	case "g":
		m.pendingG = true
		return m, nil
	case "G":
		m.activities.JumpToBottom()
		return m, nil
	case "tab":
		m.activities.NextColumn()
		return m, nil
	case "shift+tab":
		m.activities.PrevColumn()
		return m, nil
	case "s":
		m.activities.SortActiveColumn(false)
		return m, nil
	case "S":
		m.activities.SortActiveColumn(true)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.activities.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.activities.MoveUp()
	case key.Matches(msg, m.keys.Select):
		_, ok := m.activities.Selected()
		m.showDetail = ok && !m.showDetail
	case key.Matches(msg, m.keys.Back):
		m.showDetail = false
	case key.Matches(msg, m.keys.TryVoxxy):
		return m.openWizard(wizard.TryVoxxy())
	case key.Matches(msg, m.keys.GameNight),
		key.Matches(msg, m.keys.Cocktails),
		key.Matches(msg, m.keys.RestaurantBar),
		key.Matches(msg, m.keys.Location),
		key.Matches(msg, m.keys.Blocked),
		key.Matches(msg, m.keys.Refresh):
		if !m.signedIn() {
			m.info = "Sign in with --token (or VOXXY_TOKEN) to plan activities. Press t to try Voxxy without an account."
			return m, nil
		}
		return m.handleSignedInNav(msg)
	}
	return m, nil
}

func (m Model) handleSignedInNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.GameNight):
		return m.openWizard(wizard.GameNight())
	case key.Matches(msg, m.keys.Cocktails):
		return m.openWizard(wizard.Cocktails())
	case key.Matches(msg, m.keys.RestaurantBar):
		return m.openWizard(wizard.RestaurantBar())
	case key.Matches(msg, m.keys.Location):
		return m.openWizard(wizard.ProfileLocation())
	case key.Matches(msg, m.keys.Blocked):
		if m.deps.Blocked == nil {
			return m, nil
		}
		m.blocked = NewBlockedModel(m.deps.Blocked)
		m.screen = model.ScreenBlocked
		m.info = ""
		return m, initBlockedCmd(m.deps.Blocked, "")
	case key.Matches(msg, m.keys.Refresh):
		m.info = "Refreshing..."
		return m, tea.Batch(loadUserCmd(m.deps.Backend), loadActivitiesCmd(m.deps.Backend))
	}
	return m, nil
}

func (m Model) handleBlockedNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = model.ScreenHome
		m.blocked = nil
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m.updateBlocked(msg)
}

func (m Model) handleRecommendationsNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = model.ScreenHome
		m.recs = nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.recs.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.recs.MoveUp()
	}
	return m, nil
}

// handleCrashKeys offers "Try Again", which drops the screen state that
// failed and returns home. Data in the store is untouched.
func (m Model) handleCrashKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "r":
		m.boundary.report = nil
		m.screen = model.ScreenHome
		m.mode = model.ModeNav
		m.form = nil
		m.blocked = nil
		m.recs = nil
		m.showingHelp = false
		m.showDetail = false
		m.error = ""
		m.info = ""
		m.activities = NewActivitiesModel(m.storedActivities())
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

// View renders the current screen.
func (m Model) View() (out string) {
	if m.boundary.report != nil {
		return m.renderCrash()
	}
	defer func() {
		if r := recover(); r != nil {
			m.boundary.capture(r)
			out = m.renderCrash()
		}
	}()
	return m.view()
}

func (m Model) view() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	var breadcrumbParts []string

	// Header: 1 line, Footer: 1 line
	contentHeight := m.height - 4

	switch m.screen {
	case model.ScreenHome:
		breadcrumbParts = []string{"Activities"}
		content = m.activities.View(m.width, contentHeight)
		if a, ok := m.activities.Selected(); ok && m.showDetail {
			breadcrumbParts = append(breadcrumbParts, a.ActivityName)
			panel := renderActivityDetail(a, m.width)
			list := m.activities.View(m.width, max(3, contentHeight-lipgloss.Height(panel)))
			content = lipgloss.JoinVertical(lipgloss.Left, list, panel)
		}
	case model.ScreenWizard:
		breadcrumbParts = []string{"New"}
		if m.form != nil {
			breadcrumbParts = []string{"New", m.form.wiz.Schema().Name}
			content = m.form.View(m.width, contentHeight)
		}
	case model.ScreenBlocked:
		breadcrumbParts = []string{"Blocked Users"}
		if m.blocked != nil {
			content = m.blocked.View(m.width, contentHeight)
		}
	case model.ScreenRecommendations:
		breadcrumbParts = []string{"Try Voxxy", "Recommendations"}
		if m.recs != nil {
			content = m.recs.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumbParts, m.accountLabel(), m.width)
	footer := RenderHelp(m.screen, m.mode, m.width)

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Render(content)

	parts := []string{header}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) accountLabel() string {
	if m.deps.Store != nil {
		if u, _, ok := m.deps.Store.User(); ok {
			return u.Name
		}
	}
	if m.signedIn() {
		return "signing in..."
	}
	return "guest"
}

func (m Model) renderCrash() string {
	report := m.boundary.report
	body := lipgloss.JoinVertical(lipgloss.Left,
		ErrorStyle.Render("Something went wrong."),
		"",
		HelpDescStyle.Render("Error ID: "+report.id),
		"",
		HelpKeyStyle.Render("enter")+" "+HelpDescStyle.Render("try again")+"  "+
			HelpKeyStyle.Render("q")+" "+HelpDescStyle.Render("quit"),
	)
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, AlertStyle.Render(body))
}

func renderHeader(breadcrumbParts []string, account string, width int) string {
	// Left side: app name + breadcrumb
	title := HeaderStyle.Render("voxxy")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	// Right side: account + current date
	right := BreadcrumbStyle.Render(account+"  ·  "+time.Now().Format("Mon 02 Jan")) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// Commands

func loadUserCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		u, err := b.CurrentUser(ctx)
		if api.IsUnauthorized(err) {
			return model.SignedOutMsg{}
		}
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load profile: %w", err)}
		}
		return model.UserLoadedMsg{User: u}
	}
}

func loadActivitiesCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		activities, err := b.ListActivities(ctx)
		if api.IsUnauthorized(err) {
			return model.SignedOutMsg{}
		}
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load activities: %w", err)}
		}
		return model.ActivitiesLoadedMsg{Activities: activities}
	}
}
