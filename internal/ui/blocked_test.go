package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"voxxy/internal/blocked"
	"voxxy/internal/db"
	"voxxy/internal/model"
)

type fakeBlockList struct {
	users      []model.BlockedUser
	listCalls  int
	blockCalls int
}

func (f *fakeBlockList) Token() string { return "tok" }

func (f *fakeBlockList) ListBlocked(ctx context.Context) ([]model.BlockedUser, error) {
	f.listCalls++
	return f.users, nil
}

func (f *fakeBlockList) BlockUser(ctx context.Context, id int64) (model.BlockedUser, error) {
	f.blockCalls++
	return model.BlockedUser{ID: id, Name: "Blocked"}, nil
}

func (f *fakeBlockList) UnblockUser(ctx context.Context, id int64) error {
	return nil
}

func newBlockedCache(t *testing.T, backend blocked.Backend) *blocked.Cache {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "voxxy.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return blocked.New(backend, db.NewKV(database))
}

func blockByID(t *testing.T, m BlockedModel, id string) blockedChangedMsg {
	t.Helper()
	m, _ = m.Update(typed("a"))
	if !m.Typing() {
		t.Fatalf("expected the id prompt")
	}
	for _, r := range id {
		m, _ = m.Update(typed(string(r)))
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected a block command")
	}
	msg, ok := cmd().(blockedChangedMsg)
	if !ok {
		t.Fatalf("expected blockedChangedMsg")
	}
	return msg
}

func TestBlockingAnAlreadyBlockedUserSkipsTheBackend(t *testing.T) {
	backend := &fakeBlockList{users: []model.BlockedUser{{ID: 5, Name: "Pat"}}}
	cache := newBlockedCache(t, backend)
	screen := *NewBlockedModel(cache)

	msg := blockByID(t, screen, "5")
	if msg.err != nil || !strings.Contains(msg.info, "already blocked") {
		t.Fatalf("unexpected result %+v", msg)
	}
	if backend.listCalls != 1 {
		t.Fatalf("expected the cache to sync lazily once, got %d list calls", backend.listCalls)
	}
	if backend.blockCalls != 0 {
		t.Fatalf("an already blocked id must not be blocked again")
	}

	msg = blockByID(t, screen, "6")
	if msg.info != "Blocked user #6" || backend.blockCalls != 1 {
		t.Fatalf("unexpected result %+v with %d block calls", msg, backend.blockCalls)
	}
	if len(msg.users) != 2 {
		t.Fatalf("expected both users listed, got %+v", msg.users)
	}
}
