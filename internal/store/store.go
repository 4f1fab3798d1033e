package store

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"voxxy/internal/model"
)

// ErrStaleVersion is returned when an update was computed from an older
// snapshot than the one currently held.
var ErrStaleVersion = errors.New("store was updated concurrently")

// Store is the shared user and activity state. The user and the activity
// list are versioned separately so a list refresh never invalidates a
// profile edit.
type Store struct {
	mu              sync.RWMutex
	userVersion     uint64
	activityVersion uint64
	user            *model.User
	activities      []model.Activity
}

func New() *Store {
	return &Store{}
}

// User returns the signed-in user and the version it was read at.
func (s *Store) User() (model.User, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, s.userVersion, false
	}
	return *s.user, s.userVersion, true
}

// SetUser installs the user unconditionally, e.g. after sign-in.
func (s *Store) SetUser(u model.User) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.userVersion++
	return s.userVersion
}

// ReplaceUser installs u only if nothing changed since expected.
func (s *Store) ReplaceUser(expected uint64, u model.User) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userVersion != expected {
		log.Warn().Uint64("expected", expected).Uint64("current", s.userVersion).Msg("rejected stale user update")
		return s.userVersion, ErrStaleVersion
	}
	s.user = &u
	s.userVersion++
	return s.userVersion, nil
}

// ClearUser signs the user out and drops their activities.
func (s *Store) ClearUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.activities = nil
	s.userVersion++
	s.activityVersion++
}

// Activities returns a copy of the activity list, newest last.
func (s *Store) Activities() []model.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Activity(nil), s.activities...)
}

// AppendActivity records a freshly created activity before the server list
// is refetched.
func (s *Store) AppendActivity(a model.Activity) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, a)
	s.activityVersion++
	return s.activityVersion
}

// ReconcileActivities replaces the list with the server's view and returns
// the activities that only existed locally.
func (s *Store) ReconcileActivities(server []model.Activity) []model.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := lo.KeyBy(server, func(a model.Activity) int64 { return a.ID })
	localOnly := lo.Filter(s.activities, func(a model.Activity, _ int) bool {
		_, ok := known[a.ID]
		return !ok
	})
	if len(localOnly) > 0 {
		log.Info().Int("count", len(localOnly)).Msg("dropping activities the server does not know about")
	}

	s.activities = append([]model.Activity(nil), server...)
	s.activityVersion++
	return localOnly
}
