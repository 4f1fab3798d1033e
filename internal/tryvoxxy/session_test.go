package tryvoxxy

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"voxxy/internal/api"
	"voxxy/internal/db"
	"voxxy/internal/model"
)

type fakeBackend struct {
	calls       int
	cachedCalls int
	recs        []model.Recommendation
	err         error
	cached      []model.Recommendation
}

func (f *fakeBackend) TryVoxxyRecommendations(ctx context.Context, req model.TryVoxxyRequest) ([]model.Recommendation, error) {
	f.calls++
	return f.recs, f.err
}

func (f *fakeBackend) TryVoxxyCached(ctx context.Context, sessionToken string) ([]model.Recommendation, error) {
	f.cachedCalls++
	return f.cached, nil
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

func TestTokenIsStable(t *testing.T) {
	kv := openKV(t)
	first, err := NewSession(&fakeBackend{}, kv).Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("token is not a uuid: %v", err)
	}
	second, _ := NewSession(&fakeBackend{}, kv).Token()
	if first != second {
		t.Fatalf("token must survive restarts: %q != %q", first, second)
	}
}

func TestRecommendCooldown(t *testing.T) {
	kv := openKV(t)
	backend := &fakeBackend{recs: []model.Recommendation{{Name: "Lucali"}}}
	s := NewSession(backend, kv)
	now := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	res, err := s.Recommend(context.Background(), model.TryVoxxyRequest{})
	if err != nil || res.Cached || len(res.Recommendations) != 1 {
		t.Fatalf("first run: %+v, %v", res, err)
	}

	now = now.Add(20 * time.Minute)
	if got := s.CooldownRemaining(); got != 40*time.Minute {
		t.Fatalf("cooldown remaining %v", got)
	}
	res, err = s.Recommend(context.Background(), model.TryVoxxyRequest{})
	if err != nil || !res.Cached || res.RetryIn != 40*time.Minute {
		t.Fatalf("cooling down run: %+v, %v", res, err)
	}
	if backend.calls != 1 {
		t.Fatalf("no request while cooling down, got %d", backend.calls)
	}

	now = now.Add(time.Hour)
	if _, err := s.Recommend(context.Background(), model.TryVoxxyRequest{}); err != nil {
		t.Fatalf("after cooldown: %v", err)
	}
	if backend.calls != 2 {
		t.Fatalf("expected a fresh request after the cooldown")
	}
}

func TestRateLimitFallsBackToCached(t *testing.T) {
	backend := &fakeBackend{
		err:    &api.APIError{Status: http.StatusTooManyRequests, RetryAfter: 30 * time.Minute},
		cached: []model.Recommendation{{Name: "Roberta's"}},
	}
	s := NewSession(backend, openKV(t))

	res, err := s.Recommend(context.Background(), model.TryVoxxyRequest{})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !res.Cached || res.RetryIn != 30*time.Minute || res.Recommendations[0].Name != "Roberta's" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRateLimitWithoutCacheFails(t *testing.T) {
	backend := &fakeBackend{err: &api.APIError{Status: http.StatusTooManyRequests}}
	s := NewSession(backend, openKV(t))

	_, err := s.Recommend(context.Background(), model.TryVoxxyRequest{})
	if !api.IsRateLimited(err) {
		t.Fatalf("expected the rate-limit error, got %v", err)
	}
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected an APIError")
	}
}
