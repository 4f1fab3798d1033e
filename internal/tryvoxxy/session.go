package tryvoxxy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"voxxy/internal/api"
	"voxxy/internal/db"
	"voxxy/internal/model"
)

// Cooldown is how long the backend is assumed to rate-limit a session
// after a successful run.
const Cooldown = time.Hour

// Backend is the subset of the API used by the anonymous flow.
type Backend interface {
	TryVoxxyRecommendations(ctx context.Context, req model.TryVoxxyRequest) ([]model.Recommendation, error)
	TryVoxxyCached(ctx context.Context, sessionToken string) ([]model.Recommendation, error)
}

// Storage persists the session between runs.
type Storage interface {
	GetValue(key string, dst any) error
	SetValue(key string, value any) error
}

// Result is what a recommendation request produced.
type Result struct {
	Recommendations []model.Recommendation
	Cached          bool
	RetryIn         time.Duration
}

// Session is the device's anonymous recommendation session.
type Session struct {
	backend Backend
	storage Storage
	now     func() time.Time

	mu    sync.Mutex
	token string
}

func NewSession(backend Backend, storage Storage) *Session {
	return &Session{backend: backend, storage: storage, now: time.Now}
}

// Token returns the session token, generating and persisting one on first use.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}

	var token string
	err := s.storage.GetValue(db.KeyTryVoxxySession, &token)
	if err == nil && token != "" {
		s.token = token
		return token, nil
	}
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return "", err
	}

	token = uuid.NewString()
	if err := s.storage.SetValue(db.KeyTryVoxxySession, token); err != nil {
		return "", fmt.Errorf("failed to save session token: %w", err)
	}
	s.token = token
	log.Info().Msg("created try-voxxy session")
	return token, nil
}

// CooldownRemaining returns how long until a fresh request is allowed.
func (s *Session) CooldownRemaining() time.Duration {
	var last time.Time
	if err := s.storage.GetValue(db.KeyTryVoxxyLastRun, &last); err != nil {
		return 0
	}
	remaining := last.Add(Cooldown).Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Recommend runs req unless the session is cooling down, in which case the
// previous results are returned. A 429 from the backend is answered the
// same way when earlier results exist.
func (s *Session) Recommend(ctx context.Context, req model.TryVoxxyRequest) (Result, error) {
	if wait := s.CooldownRemaining(); wait > 0 {
		if recs, ok := s.storedResults(); ok {
			return Result{Recommendations: recs, Cached: true, RetryIn: wait}, nil
		}
	}

	recs, err := s.backend.TryVoxxyRecommendations(ctx, req)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && api.IsRateLimited(err) {
			if cached, cerr := s.Cached(ctx); cerr == nil && len(cached.Recommendations) > 0 {
				cached.RetryIn = apiErr.RetryAfter
				return cached, nil
			}
		}
		return Result{}, err
	}

	if err := s.storage.SetValue(db.KeyTryVoxxyLastRun, s.now()); err != nil {
		log.Warn().Err(err).Msg("failed to save try-voxxy run time")
	}
	s.storeResults(recs)
	return Result{Recommendations: recs}, nil
}

// Cached fetches the backend's stored results for this session, falling back
// to the copy kept on the device.
func (s *Session) Cached(ctx context.Context) (Result, error) {
	token, err := s.Token()
	if err != nil {
		return Result{}, err
	}

	recs, err := s.backend.TryVoxxyCached(ctx, token)
	if err == nil && len(recs) > 0 {
		s.storeResults(recs)
		return Result{Recommendations: recs, Cached: true, RetryIn: s.CooldownRemaining()}, nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("cached recommendations unavailable from backend")
	}

	if stored, ok := s.storedResults(); ok {
		return Result{Recommendations: stored, Cached: true, RetryIn: s.CooldownRemaining()}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Cached: true}, nil
}

func (s *Session) storedResults() ([]model.Recommendation, bool) {
	var recs []model.Recommendation
	if err := s.storage.GetValue(db.KeyTryVoxxyResults, &recs); err != nil || len(recs) == 0 {
		return nil, false
	}
	return recs, true
}

func (s *Session) storeResults(recs []model.Recommendation) {
	if err := s.storage.SetValue(db.KeyTryVoxxyResults, recs); err != nil {
		log.Warn().Err(err).Msg("failed to save recommendations")
	}
}
