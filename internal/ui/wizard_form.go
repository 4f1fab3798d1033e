package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"voxxy/internal/api"
	"voxxy/internal/location"
	"voxxy/internal/model"
	"voxxy/internal/store"
	"voxxy/internal/submit"
	"voxxy/internal/util"
	"voxxy/internal/wizard"
)

// AutoAdvanceDelay is how long a single-select choice stays on screen
// before the wizard moves on.
const AutoAdvanceDelay = 300 * time.Millisecond

// Message types for location search
type placesResultMsg struct {
	seq     int
	results []api.PlaceSuggestion
	err     error
}

type debounceTick struct {
	seq int
}

type placeResolvedMsg struct {
	seq int
	sel location.Selection
}

type currentLocationMsg struct {
	sel location.Selection
	err error
}

type autoAdvanceMsg struct {
	step     int
	renderID int
}

type rotateTick struct {
	seq int
}

type submitDoneMsg struct {
	done tea.Msg
	err  error
}

type successHoldDone struct {
	msg tea.Msg
}

type locationOption int

const (
	optSaved locationOption = iota
	optCurrent
	optSearch
)

// WizardFormModel renders any wizard schema.
type WizardFormModel struct {
	deps    Deps
	keys    WizardKeyMap
	wiz     *wizard.Wizard
	user    *model.User
	version uint64
	profile *location.Selection
	choice  location.Choice
	cursor  int
	error   string
	alert   string

	// Location search state
	search        textinput.Model
	searchFocused bool
	searchSeq     int
	searching     bool
	resolving     bool
	results       []api.PlaceSuggestion
	resultCursor  int
	showDropdown  bool
	locating      bool
	spinner       spinner.Model

	// Submission state
	gate       *submit.Gate
	submitting bool
	succeeded  bool
	messages   *submit.Messages
	rotateSeq  int
}

// NewWizardFormModel opens a wizard. The signed-in user's saved location,
// when present, is offered and preselected.
func NewWizardFormModel(schema wizard.Schema, deps Deps) *WizardFormModel {
	in := textinput.New()
	in.Placeholder = "Search neighborhood, city or address..."
	in.CharLimit = 120
	in.Prompt = "⌕ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &WizardFormModel{
		deps:     deps,
		keys:     DefaultWizardKeyMap(),
		search:   in,
		spinner:  sp,
		gate:     &submit.Gate{},
		messages: submit.NewMessages(nil),
	}

	if deps.Store != nil {
		if u, version, ok := deps.Store.User(); ok {
			m.user = &u
			m.version = version
			if sel, err := location.ProfileSelection(u); err == nil {
				m.profile = &sel
			}
		}
	}

	m.wiz = wizard.New(schema, m.profile)
	if m.profile != nil {
		m.choice.UseProfile(*m.profile)
	}
	return m
}

// Init implements the form half of tea.Model.
func (m WizardFormModel) Init() tea.Cmd {
	return nil
}

// Update handles all messages.
func (m WizardFormModel) Update(msg tea.Msg) (WizardFormModel, tea.Cmd) {
	// Handle async messages first
	switch msg := msg.(type) {
	case debounceTick:
		if msg.seq == m.searchSeq && m.searchFocused {
			return m, m.doSearch(m.search.Value(), msg.seq)
		}
		return m, nil
	case placesResultMsg:
		if msg.seq == m.searchSeq {
			m.searching = false
			if msg.err != nil {
				m.error = "Location search is unavailable right now."
				m.showDropdown = false
			} else {
				m.error = ""
				m.results = msg.results
				m.resultCursor = 0
				m.showDropdown = len(msg.results) > 0
			}
		}
		return m, nil
	case placeResolvedMsg:
		m.resolving = false
		if msg.seq != m.searchSeq {
			return m, nil
		}
		m.choice.UseCustom(msg.sel)
		m.syncLocation()
		m.search.SetValue(m.choice.Query())
		m.results = nil
		m.blurSearch()
		return m, nil
	case currentLocationMsg:
		m.locating = false
		if msg.err != nil {
			m.alert = submit.FailureMessage(msg.err)
			return m, nil
		}
		m.choice.UseCurrent(msg.sel)
		m.syncLocation()
		m.search.SetValue("")
		m.results = nil
		return m, nil
	case autoAdvanceMsg:
		if msg.renderID != m.wiz.RenderID() {
			return m, nil
		}
		return m.applyTransition(m.wiz.AutoAdvance(msg.step))
	case rotateTick:
		if !m.submitting || msg.seq != m.rotateSeq {
			return m, nil
		}
		m.messages.Next()
		return m, m.rotateCmd()
	case submitDoneMsg:
		return m.handleSubmitDone(msg)
	case successHoldDone:
		done := msg.msg
		return m, func() tea.Msg { return done }
	case spinner.TickMsg:
		if !m.searching && !m.locating && !m.submitting && !m.resolving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	// The overlay owns the screen while a request is out.
	if m.submitting || m.succeeded {
		return m, nil
	}
	if m.alert != "" {
		if keyMsg.String() == "enter" || keyMsg.String() == "esc" {
			m.alert = ""
		}
		return m, nil
	}
	if m.searchFocused {
		return m.updateSearch(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Back):
		return m.applyTransition(m.wiz.Back())
	case key.Matches(keyMsg, m.keys.Next):
		return m.applyTransition(m.wiz.Next())
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < m.optionCount()-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Choose), key.Matches(keyMsg, m.keys.Toggle):
		return m.choose()
	}
	return m, nil
}

func (m WizardFormModel) updateSearch(keyMsg tea.KeyMsg) (WizardFormModel, tea.Cmd) {
	// Handle dropdown navigation when visible
	if m.showDropdown {
		switch {
		case keyMsg.String() == "esc":
			m.showDropdown = false
			return m, nil
		case key.Matches(keyMsg, m.keys.Down):
			if m.resultCursor < len(m.results)-1 {
				m.resultCursor++
			}
			return m, nil
		case key.Matches(keyMsg, m.keys.Up):
			if m.resultCursor > 0 {
				m.resultCursor--
			}
			return m, nil
		case key.Matches(keyMsg, m.keys.Choose):
			if m.resultCursor < len(m.results) {
				m.showDropdown = false
				m.resolving = true
				return m, tea.Batch(m.resolveCmd(m.results[m.resultCursor], m.searchSeq), m.spinner.Tick)
			}
			return m, nil
		}
	}

	switch {
	case key.Matches(keyMsg, m.keys.Back):
		m.blurSearch()
		return m, nil
	case key.Matches(keyMsg, m.keys.Next):
		m.blurSearch()
		return m.applyTransition(m.wiz.Next())
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(keyMsg)
	cmds = append(cmds, cmd)

	if m.search.Value() == m.choice.Query() {
		return m, tea.Batch(cmds...)
	}
	m.choice.SetQuery(m.search.Value())
	m.syncLocation()

	// Every edit bumps the sequence so only the last query is ever sent.
	m.searchSeq++
	query := strings.TrimSpace(m.search.Value())
	if len([]rune(query)) >= location.MinQueryLength {
		seq := m.searchSeq
		m.searching = true
		m.showDropdown = false
		cmds = append(cmds, m.spinner.Tick)
		cmds = append(cmds, tea.Tick(location.DebounceDelay, func(t time.Time) tea.Msg {
			return debounceTick{seq: seq}
		}))
	} else {
		m.showDropdown = false
		m.results = nil
		m.searching = false
	}
	return m, tea.Batch(cmds...)
}

func (m WizardFormModel) choose() (WizardFormModel, tea.Cmd) {
	step := m.wiz.CurrentStep()
	switch step.Kind {
	case wizard.StepLocation:
		opts := m.locationOptions()
		if m.cursor >= len(opts) {
			return m, nil
		}
		switch opts[m.cursor] {
		case optSaved:
			m.choice.UseProfile(*m.profile)
			m.syncLocation()
			m.search.SetValue("")
			m.results = nil
		case optCurrent:
			if m.locating {
				return m, nil
			}
			m.locating = true
			return m, tea.Batch(m.currentCmd(), m.spinner.Tick)
		case optSearch:
			m.choice.BeginSearch()
			m.syncLocation()
			m.search.SetValue(m.choice.Query())
			m.searchFocused = true
			cmd := m.search.Focus()
			return m, cmd
		}
	case wizard.StepSingle:
		if m.cursor >= len(step.Options) {
			return m, nil
		}
		advance := m.wiz.Select(step.Field, step.Options[m.cursor].Value)
		if advance && !m.wiz.IsLastStep() {
			current, renderID := m.wiz.Step(), m.wiz.RenderID()
			return m, tea.Tick(AutoAdvanceDelay, func(t time.Time) tea.Msg {
				return autoAdvanceMsg{step: current, renderID: renderID}
			})
		}
	case wizard.StepMulti:
		if m.cursor < len(step.Options) {
			m.wiz.Toggle(step.Field, step.Options[m.cursor].Value)
		}
	}
	return m, nil
}

func (m WizardFormModel) applyTransition(tr wizard.Transition) (WizardFormModel, tea.Cmd) {
	switch tr {
	case wizard.TransitionAdvanced, wizard.TransitionRetreated:
		m.cursor = 0
		m.error = ""
		m.blurSearch()
	case wizard.TransitionClose:
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case wizard.TransitionSubmit:
		return m.submit()
	}
	return m, nil
}

func (m WizardFormModel) submit() (WizardFormModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	schema := m.wiz.Schema()
	answers := m.wiz.Answers()

	var cmd tea.Cmd
	switch schema.Kind {
	case wizard.KindActivity:
		p, err := wizard.BuildActivityPayload(schema, answers)
		if err != nil {
			m.alert = "Please finish every step before submitting."
			return m, nil
		}
		if m.deps.Submitter.Submitting() {
			return m, nil
		}
		cmd = m.createCmd(p)
	case wizard.KindProfileLocation:
		if m.user == nil {
			m.alert = "Sign in to save a location to your profile."
			return m, nil
		}
		sel, _ := answers.Location()
		cmd = m.saveProfileCmd(sel)
	case wizard.KindTryVoxxy:
		token, err := m.deps.TryVoxxy.Token()
		if err != nil {
			m.alert = submit.GenericFailure
			return m, nil
		}
		req, err := wizard.BuildTryVoxxyRequest(schema, answers, token)
		if err != nil {
			m.alert = "Please finish every step before submitting."
			return m, nil
		}
		cmd = m.recommendCmd(req)
	}

	m.submitting = true
	m.alert = ""
	m.messages.Reset()
	m.rotateSeq++
	return m, tea.Batch(cmd, m.rotateCmd(), m.spinner.Tick)
}

func (m WizardFormModel) handleSubmitDone(msg submitDoneMsg) (WizardFormModel, tea.Cmd) {
	if errors.Is(msg.err, submit.ErrInFlight) {
		return m, nil
	}

	m.submitting = false
	m.rotateSeq++

	if msg.err != nil {
		m.alert = submit.FailureMessage(msg.err)
		return m, nil
	}

	m.succeeded = true
	done := msg.done
	return m, tea.Tick(submit.SuccessHold, func(t time.Time) tea.Msg {
		return successHoldDone{msg: done}
	})
}

// Commands

func (m WizardFormModel) doSearch(query string, seq int) tea.Cmd {
	locations := m.deps.Locations
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		results, err := locations.Search(ctx, query)
		return placesResultMsg{seq: seq, results: results, err: err}
	}
}

func (m WizardFormModel) resolveCmd(s api.PlaceSuggestion, seq int) tea.Cmd {
	locations := m.deps.Locations
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return placeResolvedMsg{seq: seq, sel: locations.Details(ctx, s)}
	}
}

func (m WizardFormModel) currentCmd() tea.Cmd {
	locations := m.deps.Locations
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sel, err := locations.Current(ctx)
		return currentLocationMsg{sel: sel, err: err}
	}
}

func (m WizardFormModel) rotateCmd() tea.Cmd {
	seq := m.rotateSeq
	return tea.Tick(submit.RotationInterval, func(t time.Time) tea.Msg {
		return rotateTick{seq: seq}
	})
}

func (m WizardFormModel) createCmd(p model.ActivityCreationPayload) tea.Cmd {
	submitter := m.deps.Submitter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		activity, err := submitter.CreateActivity(ctx, p)
		return submitDoneMsg{done: model.ActivityCreatedMsg{Activity: activity}, err: err}
	}
}

func (m WizardFormModel) saveProfileCmd(sel location.Selection) tea.Cmd {
	gate, profiles, st := m.gate, m.deps.Profiles, m.deps.Store
	userID, version := m.user.ID, m.version
	return func() tea.Msg {
		if !gate.TryAcquire() {
			return submitDoneMsg{err: submit.ErrInFlight}
		}
		defer gate.Release()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		updated, err := profiles.UpdateUser(ctx, userID, location.ProfileUpdate(sel))
		if err != nil {
			return submitDoneMsg{err: err}
		}
		if _, err := st.ReplaceUser(version, updated); errors.Is(err, store.ErrStaleVersion) {
			// The PATCH already landed; the server's copy is authoritative.
			log.Warn().Int64("user_id", userID).Msg("profile changed during save, keeping server copy")
			st.SetUser(updated)
		}
		return submitDoneMsg{done: model.ProfileLocationSavedMsg{User: updated}}
	}
}

func (m WizardFormModel) recommendCmd(req model.TryVoxxyRequest) tea.Cmd {
	gate, session := m.gate, m.deps.TryVoxxy
	return func() tea.Msg {
		if !gate.TryAcquire() {
			return submitDoneMsg{err: submit.ErrInFlight}
		}
		defer gate.Release()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		res, err := session.Recommend(ctx, req)
		if err != nil {
			return submitDoneMsg{err: err}
		}
		return submitDoneMsg{done: model.RecommendationsMsg{
			Recommendations: res.Recommendations,
			Cached:          res.Cached,
			RetryIn:         res.RetryIn,
		}}
	}
}

// Helpers

func (m *WizardFormModel) syncLocation() {
	if sel, ok := m.choice.Active(); ok {
		m.wiz.SetLocation(sel)
		return
	}
	m.wiz.ClearLocation()
}

func (m *WizardFormModel) blurSearch() {
	m.searchFocused = false
	m.showDropdown = false
	m.searching = false
	m.search.Blur()
}

func (m WizardFormModel) locationOptions() []locationOption {
	var opts []locationOption
	if m.profile != nil {
		opts = append(opts, optSaved)
	}
	return append(opts, optCurrent, optSearch)
}

func (m WizardFormModel) optionCount() int {
	step := m.wiz.CurrentStep()
	if step.Kind == wizard.StepLocation {
		return len(m.locationOptions())
	}
	return len(step.Options)
}

func (m WizardFormModel) locationOptionLabel(opt locationOption) (string, location.Provenance) {
	switch opt {
	case optSaved:
		return fmt.Sprintf("Use saved location (%s)", m.profile.Display()), location.ProvenanceProfile
	case optCurrent:
		label := "Use current location"
		if m.locating {
			label += "  " + m.spinner.View()
		}
		return label, location.ProvenanceCurrent
	default:
		return "Search for a place", location.ProvenanceCustom
	}
}

// View renders the form.
func (m *WizardFormModel) View(width, height int) string {
	switch {
	case m.submitting:
		body := lipgloss.JoinVertical(lipgloss.Center,
			m.spinner.View()+" "+LabelStyle.Render(m.wiz.Schema().Name),
			"",
			m.messages.Current(),
		)
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, OverlayStyle.Render(body))
	case m.succeeded:
		body := SuccessStyle.Render("✓ All set!")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, OverlayStyle.Render(body))
	case m.alert != "":
		body := lipgloss.JoinVertical(lipgloss.Left,
			ErrorStyle.Render(m.alert),
			"",
			HelpDescStyle.Render("enter to dismiss"),
		)
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, AlertStyle.Width(min(60, width-4)).Render(body))
	}

	step := m.wiz.CurrentStep()
	var sections []string

	sections = append(sections, m.renderProgress(width-12))
	title := LabelStyle.Render(step.Title)
	if step.Subtitle != "" {
		title = lipgloss.JoinVertical(lipgloss.Left, title, HelpDescStyle.Render(step.Subtitle))
	}
	sections = append(sections, title)

	switch step.Kind {
	case wizard.StepLocation:
		sections = append(sections, m.renderLocationStep(width-12))
	default:
		sections = append(sections, m.renderOptions(step))
	}

	if m.error != "" {
		sections = append(sections, ErrorStyle.Render(m.error))
	}

	label := "Next →"
	if m.wiz.IsLastStep() {
		label = "Finish"
	}
	button := ButtonStyle.Render(label)
	if m.wiz.IsNextDisabled() {
		button = ButtonDisabledStyle.Render(label)
	}
	sections = append(sections, button)

	return PanelStyle.
		Width(width - 4).
		Height(height - 4).
		Render(strings.Join(sections, "\n\n"))
}

func (m *WizardFormModel) renderProgress(width int) string {
	total := m.wiz.TotalSteps()
	current := m.wiz.Step()
	label := HelpDescStyle.Render(fmt.Sprintf("%s  ·  step %d of %d", m.wiz.Schema().Name, current, total))

	barWidth := max(10, min(40, width))
	done := barWidth * current / total
	bar := ProgressDoneStyle.Render(strings.Repeat("━", done)) +
		ProgressTodoStyle.Render(strings.Repeat("━", barWidth-done))
	return lipgloss.JoinVertical(lipgloss.Left, label, bar)
}

func (m *WizardFormModel) renderOptions(step wizard.Step) string {
	answers := m.wiz.Answers()
	var lines []string
	for i, opt := range step.Options {
		marker := "( )"
		chosen := false
		if step.Kind == wizard.StepMulti {
			marker = "[ ]"
			for _, v := range answers.Values(step.Field) {
				if v == opt.Value {
					chosen = true
				}
			}
			if chosen {
				marker = "[x]"
			}
		} else if answers.Value(step.Field) == opt.Value {
			chosen = true
			marker = "(•)"
		}

		text := marker + " " + opt.Label
		if chosen {
			text = OptionChosenStyle.Render(text)
		}
		style := OptionStyle
		if i == m.cursor {
			style = OptionCursorStyle
			text = "› " + text
		} else {
			text = "  " + text
		}
		lines = append(lines, style.Render(text))
	}
	return strings.Join(lines, "\n")
}

func (m *WizardFormModel) renderLocationStep(width int) string {
	var lines []string
	for i, opt := range m.locationOptions() {
		label, provenance := m.locationOptionLabel(opt)
		marker := "( )"
		if m.choice.Provenance() == provenance {
			marker = "(•)"
			label = OptionChosenStyle.Render(label)
		}
		text := marker + " " + label
		style := OptionStyle
		if i == m.cursor && !m.searchFocused {
			style = OptionCursorStyle
			text = "› " + text
		} else {
			text = "  " + text
		}
		lines = append(lines, style.Render(text))
	}
	parts := []string{strings.Join(lines, "\n")}

	if m.choice.Provenance() == location.ProvenanceCustom {
		style := BorderStyle
		if m.searchFocused {
			style = ActiveBorderStyle
		}
		field := style.Width(min(60, width)).Render(m.search.View())
		switch {
		case m.showDropdown && len(m.results) > 0:
			field = lipgloss.JoinVertical(lipgloss.Left, field, m.renderDropdown(min(60, width)))
		case m.searching || m.resolving:
			field = lipgloss.JoinVertical(lipgloss.Left, field, HelpDescStyle.Render(m.spinner.View()+" Searching..."))
		case m.searchFocused && len([]rune(strings.TrimSpace(m.search.Value()))) < location.MinQueryLength:
			field = lipgloss.JoinVertical(lipgloss.Left, field, HelpDescStyle.Render("Type at least 2 characters to search."))
		}
		parts = append(parts, field)
	}

	if sel, ok := m.wiz.Answers().Location(); ok && !sel.IsZero() {
		parts = append(parts, HelpDescStyle.Render("Selected: ")+NormalRowStyle.Render(sel.Display()))
	}
	return strings.Join(parts, "\n\n")
}

func (m *WizardFormModel) renderDropdown(width int) string {
	var items []string
	for i, result := range m.results {
		style := NormalRowStyle
		if i == m.resultCursor {
			style = SelectedRowStyle
		}

		left := result.MainText
		if left == "" {
			left = result.Description
		}
		left = util.TruncateString(left, 40)
		right := ""
		if result.SecondaryText != "" {
			right = HelpDescStyle.Render(util.TruncateString(result.SecondaryText, 24))
		}

		availableWidth := width - 4
		padding := max(0, availableWidth-lipgloss.Width(left)-lipgloss.Width(right))
		items = append(items, style.Width(availableWidth).Render(left+strings.Repeat(" ", padding)+right))
	}

	return BorderStyle.
		Width(width).
		Render(strings.Join(items, "\n"))
}

// Step exposes the current wizard step for the footer.
func (m *WizardFormModel) Step() wizard.Step {
	return m.wiz.CurrentStep()
}

// SearchFocused reports whether keystrokes go to the location search box.
func (m *WizardFormModel) SearchFocused() bool {
	return m.searchFocused
}

// Submitting reports whether the form is waiting on the backend.
func (m *WizardFormModel) Submitting() bool {
	return m.submitting
}
