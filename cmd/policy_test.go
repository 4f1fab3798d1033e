package cmd

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"voxxy/internal/db"
)

func openKV(t *testing.T) *db.KV {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "voxxy.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return db.NewKV(database)
}

func TestPolicyAcceptanceIsCached(t *testing.T) {
	kv := openKV(t)

	accepted, err := PolicyAccepted(kv)
	if err != nil || accepted {
		t.Fatalf("fresh storage: accepted=%v err=%v", accepted, err)
	}

	if err := savePolicyAcceptance(kv, time.Now()); err != nil {
		t.Fatalf("savePolicyAcceptance: %v", err)
	}
	accepted, err = PolicyAccepted(kv)
	if err != nil || !accepted {
		t.Fatalf("after accepting: accepted=%v err=%v", accepted, err)
	}

	// A cached acceptance skips the prompt entirely.
	if err := EnsurePolicy(kv); err != nil {
		t.Fatalf("EnsurePolicy: %v", err)
	}
}

func TestPolicyWithoutTerminalFails(t *testing.T) {
	kv := openKV(t)
	prev := interactive
	interactive = func() bool { return false }
	t.Cleanup(func() { interactive = prev })

	err := EnsurePolicy(kv)
	if !errors.Is(err, ErrNotInteractive) || errors.Is(err, ErrPolicyDeclined) {
		t.Fatalf("expected ErrNotInteractive, got %v", err)
	}
	if accepted, _ := PolicyAccepted(kv); accepted {
		t.Fatalf("acceptance must never be recorded implicitly")
	}
}

func TestOlderPolicyVersionAsksAgain(t *testing.T) {
	kv := openKV(t)
	if err := kv.SetValue(db.KeyPolicyAcceptance, PolicyAcceptance{Version: "2020-01"}); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	accepted, err := PolicyAccepted(kv)
	if err != nil || accepted {
		t.Fatalf("old version must not count: accepted=%v err=%v", accepted, err)
	}
}

func TestPolicyModelKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want bool
	}{
		{"y accepts", []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("y")}}, true},
		{"enter on default accepts", []tea.KeyMsg{{Type: tea.KeyEnter}}, true},
		{"down then enter declines", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyEnter}}, false},
		{"q declines", []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("q")}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m tea.Model = newPolicyModel()
			for _, k := range tt.keys {
				m, _ = m.Update(k)
			}
			if got := m.(policyModel).accepted; got != tt.want {
				t.Fatalf("accepted = %v, want %v", got, tt.want)
			}
		})
	}
}
