package blocked

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"voxxy/internal/db"
	"voxxy/internal/model"
)

type fakeBackend struct {
	token     string
	users     []model.BlockedUser
	listErr   error
	blockErr  error
	listCalls int
}

func (f *fakeBackend) Token() string { return f.token }

func (f *fakeBackend) ListBlocked(ctx context.Context) ([]model.BlockedUser, error) {
	f.listCalls++
	return f.users, f.listErr
}

func (f *fakeBackend) BlockUser(ctx context.Context, id int64) (model.BlockedUser, error) {
	if f.blockErr != nil {
		return model.BlockedUser{}, f.blockErr
	}
	return model.BlockedUser{ID: id, Name: "User"}, nil
}

func (f *fakeBackend) UnblockUser(ctx context.Context, id int64) error {
	return f.blockErr
}

func openKV(t *testing.T) *db.KV {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "voxxy.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return db.NewKV(database)
}

func TestBlockIsVisibleWithoutResync(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{token: "t"}
	c := New(backend, openKV(t))

	if err := c.Initialize(ctx, "t"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := c.Block(ctx, 7); err != nil {
		t.Fatalf("Block: %v", err)
	}
	if !c.IsBlocked(ctx, 7) {
		t.Fatalf("expected 7 to be blocked")
	}
	if backend.listCalls != 1 {
		t.Fatalf("block must not trigger a resync, got %d list calls", backend.listCalls)
	}

	if err := c.Unblock(ctx, 7); err != nil {
		t.Fatalf("Unblock: %v", err)
	}
	if c.IsBlocked(ctx, 7) {
		t.Fatalf("expected 7 to be unblocked")
	}
}

func TestBlockErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{blockErr: errors.New("boom")}
	c := New(backend, openKV(t))
	c.Initialize(ctx, "")

	if err := c.Block(ctx, 3); err == nil {
		t.Fatalf("expected an error")
	}
	if c.IsBlocked(ctx, 3) {
		t.Fatalf("failed block must not mutate the cache")
	}
}

func TestSyncFailureFallsBackToPersisted(t *testing.T) {
	ctx := context.Background()
	kv := openKV(t)

	first := New(&fakeBackend{users: []model.BlockedUser{{ID: 1, Name: "Bo"}, {ID: 2, Name: "Al"}}}, kv)
	if err := first.Initialize(ctx, "t"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if first.LastSynced().IsZero() {
		t.Fatalf("expected a sync timestamp")
	}

	offline := &fakeBackend{listErr: errors.New("offline")}
	second := New(offline, kv)
	if err := second.Initialize(ctx, "t"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if second.State() != StateReady {
		t.Fatalf("expected ready, got %s", second.State())
	}
	list := second.List()
	if len(list) != 2 || list[0].Name != "Al" || list[1].Name != "Bo" {
		t.Fatalf("unexpected fallback list %+v", list)
	}
	if !second.LastSynced().Equal(first.LastSynced()) {
		t.Fatalf("last synced should come from the persisted copy")
	}
}

func TestInitializeIsIdempotentWithoutToken(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{users: []model.BlockedUser{{ID: 1}}}
	c := New(backend, openKV(t))

	c.Initialize(ctx, "t")
	c.Initialize(ctx, "")
	if backend.listCalls != 1 {
		t.Fatalf("tokenless init after ready must not sync")
	}
	c.Initialize(ctx, "t")
	if backend.listCalls != 2 {
		t.Fatalf("a token forces a resync")
	}
}

func TestIsBlockedInitializesLazily(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{token: "t", users: []model.BlockedUser{{ID: 9}}}
	c := New(backend, openKV(t))

	if c.State() != StateUninitialized {
		t.Fatalf("expected uninitialized")
	}
	if !c.IsBlocked(ctx, 9) {
		t.Fatalf("expected 9 to be blocked after lazy init")
	}
	if c.State() != StateReady || backend.listCalls != 1 {
		t.Fatalf("expected one lazy sync")
	}
}
