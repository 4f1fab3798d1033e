package ui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"voxxy/internal/api"
	"voxxy/internal/model"
	"voxxy/internal/store"
)

func TestErrorBoundaryRecoversAndRetries(t *testing.T) {
	// No store: loading a user panics inside Update.
	m := New(Deps{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	next, cmd := next.Update(model.UserLoadedMsg{User: model.User{ID: 1}})
	if cmd != nil {
		t.Fatalf("a recovered update must not return a command")
	}

	root := next.(Model)
	if root.boundary.report == nil || root.boundary.report.id == "" {
		t.Fatalf("expected a crash report with an error id")
	}
	view := root.View()
	if !strings.Contains(view, "Something went wrong") || !strings.Contains(view, root.boundary.report.id) {
		t.Fatalf("crash screen missing, got %q", view)
	}

	// Keys other than retry/quit are swallowed.
	next, _ = root.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	if next.(Model).screen != model.ScreenHome || next.(Model).boundary.report == nil {
		t.Fatalf("crash screen must stay until retried")
	}

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	root = next.(Model)
	if root.boundary.report != nil {
		t.Fatalf("try again must clear the crash report")
	}
	if strings.Contains(root.View(), "Something went wrong") {
		t.Fatalf("expected the normal screen after retrying")
	}
}

func TestSignedOutCannotPlan(t *testing.T) {
	m := New(Deps{Store: store.New()})
	if m.Init() != nil {
		t.Fatalf("signed out start must not load anything")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	root := next.(Model)
	if root.screen != model.ScreenHome || root.form != nil {
		t.Fatalf("activity wizard opened while signed out")
	}
	if !strings.Contains(root.info, "Sign in") {
		t.Fatalf("expected a sign-in hint, got %q", root.info)
	}

	next, _ = root.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	root = next.(Model)
	if root.screen != model.ScreenWizard || root.mode != model.ModeInsert {
		t.Fatalf("try voxxy must open without an account")
	}

	next, _ = root.Update(model.FormCancelledMsg{})
	root = next.(Model)
	if root.screen != model.ScreenHome || root.form != nil {
		t.Fatalf("cancel must close the wizard")
	}
}

func TestActivityCreatedReturnsHome(t *testing.T) {
	st := store.New()
	st.AppendActivity(model.Activity{ID: 3, ActivityName: "Cocktail Night", ActivityType: "Cocktails"})
	m := New(Deps{Store: st, Backend: nil})
	m.screen = model.ScreenWizard
	m.mode = model.ModeInsert

	next, _ := m.Update(model.ActivityCreatedMsg{Activity: model.Activity{ID: 3, ActivityName: "Cocktail Night"}})
	root := next.(Model)
	if root.screen != model.ScreenHome || root.mode != model.ModeNav {
		t.Fatalf("expected to return home")
	}
	if root.activities.Len() != 1 {
		t.Fatalf("expected the new activity in the list")
	}
	if root.info != "Created Cocktail Night" {
		t.Fatalf("unexpected banner %q", root.info)
	}
}

func TestRejectedTokenSignsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid token"}`))
	}))
	defer srv.Close()

	client := api.NewClient(srv.URL, "expired")
	st := store.New()
	st.SetUser(model.User{ID: 7, Name: "Sam"})
	st.AppendActivity(model.Activity{ID: 1, ActivityName: "Game Night"})

	m := New(Deps{Backend: client, Store: st})
	msg := loadUserCmd(client)()
	if _, ok := msg.(model.SignedOutMsg); !ok {
		t.Fatalf("expected SignedOutMsg, got %T", msg)
	}

	next, _ := m.Update(msg)
	root := next.(Model)
	if client.Token() != "" {
		t.Fatalf("the rejected token must be dropped")
	}
	if _, _, ok := st.User(); ok || len(st.Activities()) != 0 {
		t.Fatalf("expected the store to be cleared")
	}
	if root.activities.Len() != 0 || !strings.Contains(root.info, "session expired") {
		t.Fatalf("unexpected home state: %d rows, info %q", root.activities.Len(), root.info)
	}

	next, _ = root.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	if next.(Model).form != nil {
		t.Fatalf("signed out users cannot plan")
	}
}

func TestActivityDetailFollowsSelection(t *testing.T) {
	st := store.New()
	st.ReconcileActivities([]model.Activity{
		{ID: 1, ActivityName: "Game Night", ActivityType: "Game Night", GroupSize: "4-6"},
		{ID: 2, ActivityName: "Cocktail Night", ActivityType: "Cocktails", TimeOfDay: "evening"},
	})
	// Only the detail panel shows these fields.
	unique := map[int64]string{1: "4-6", 2: "evening"}

	m := New(Deps{Store: st})
	m.activities = NewActivitiesModel(st.Activities())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if strings.Contains(next.View(), "evening") || strings.Contains(next.View(), "4-6") {
		t.Fatalf("details must stay hidden until requested")
	}

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	root := next.(Model)
	selected, _ := root.activities.Selected()
	if !root.showDetail || !strings.Contains(root.View(), unique[selected.ID]) {
		t.Fatalf("expected the detail panel for %q", selected.ActivityName)
	}

	next, _ = root.Update(tea.KeyMsg{Type: tea.KeyDown})
	root = next.(Model)
	moved, _ := root.activities.Selected()
	if moved.ID == selected.ID {
		t.Fatalf("cursor did not move")
	}
	view := root.View()
	if !strings.Contains(view, unique[moved.ID]) || strings.Contains(view, unique[selected.ID]) {
		t.Fatalf("detail panel must follow the cursor")
	}

	next, _ = root.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next.(Model).showDetail {
		t.Fatalf("esc must close the detail panel")
	}
}
