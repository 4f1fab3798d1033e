package blocked

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"voxxy/internal/db"
	"voxxy/internal/model"
)

// State is where the cache is in its lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateSyncing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateSyncing:
		return "syncing"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Backend is the subset of the API the cache talks to.
type Backend interface {
	Token() string
	ListBlocked(ctx context.Context) ([]model.BlockedUser, error)
	BlockUser(ctx context.Context, id int64) (model.BlockedUser, error)
	UnblockUser(ctx context.Context, id int64) error
}

// Storage persists the cache between runs.
type Storage interface {
	GetValue(key string, dst any) error
	SetValue(key string, value any) error
}

type snapshot struct {
	IDs        []int64                     `json:"ids"`
	Details    map[int64]model.BlockedUser `json:"details"`
	LastSynced time.Time                   `json:"last_synced"`
}

// Cache keeps the blocked-user ids and their display records.
type Cache struct {
	backend Backend
	storage Storage
	now     func() time.Time

	mu         sync.Mutex
	state      State
	ids        map[int64]struct{}
	details    map[int64]model.BlockedUser
	lastSynced time.Time
}

func New(backend Backend, storage Storage) *Cache {
	return &Cache{
		backend: backend,
		storage: storage,
		now:     time.Now,
		ids:     map[int64]struct{}{},
		details: map[int64]model.BlockedUser{},
	}
}

// State returns the lifecycle state.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastSynced returns when the list was last fetched from the backend.
func (c *Cache) LastSynced() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSynced
}

// Initialize loads the cache. With a token it syncs the full list from the
// backend, falling back to the persisted copy on error. Without a token it
// loads the persisted copy, and does nothing once the cache is ready.
func (c *Cache) Initialize(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token == "" && c.state == StateReady {
		return nil
	}
	c.state = StateSyncing

	if token != "" {
		users, err := c.backend.ListBlocked(ctx)
		if err == nil {
			c.replace(users)
			c.lastSynced = c.now()
			c.persist()
			c.state = StateReady
			log.Debug().Int("count", len(c.ids)).Msg("blocked users synced")
			return nil
		}
		log.Warn().Err(err).Msg("blocked users sync failed, using cached list")
	}

	if err := c.load(); err != nil {
		log.Warn().Err(err).Msg("failed to load blocked users cache")
	}
	c.state = StateReady
	return nil
}

// IsBlocked reports whether id is blocked, initializing the cache first if
// needed.
func (c *Cache) IsBlocked(ctx context.Context, id int64) bool {
	if c.State() == StateUninitialized {
		c.Initialize(ctx, c.backend.Token())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[id]
	return ok
}

// Block blocks id on the backend, then records it locally.
func (c *Cache) Block(ctx context.Context, id int64) error {
	user, err := c.backend.BlockUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to block user %d: %w", id, err)
	}
	if user.ID == 0 {
		user.ID = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[id] = struct{}{}
	if prev, ok := c.details[id]; ok && user.Name == "" {
		user = prev
	}
	c.details[id] = user
	c.persist()
	return nil
}

// Unblock unblocks id on the backend, then forgets it locally.
func (c *Cache) Unblock(ctx context.Context, id int64) error {
	if err := c.backend.UnblockUser(ctx, id); err != nil {
		return fmt.Errorf("failed to unblock user %d: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, id)
	delete(c.details, id)
	c.persist()
	return nil
}

// List returns the blocked users ordered by name, then id.
func (c *Cache) List() []model.BlockedUser {
	c.mu.Lock()
	users := lo.Map(lo.Keys(c.ids), func(id int64, _ int) model.BlockedUser {
		if u, ok := c.details[id]; ok {
			return u
		}
		return model.BlockedUser{ID: id}
	})
	c.mu.Unlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users
}

func (c *Cache) replace(users []model.BlockedUser) {
	c.ids = make(map[int64]struct{}, len(users))
	c.details = make(map[int64]model.BlockedUser, len(users))
	for _, u := range users {
		c.ids[u.ID] = struct{}{}
		c.details[u.ID] = u
	}
}

func (c *Cache) load() error {
	var snap snapshot
	err := c.storage.GetValue(db.KeyBlockedUsers, &snap)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	c.ids = make(map[int64]struct{}, len(snap.IDs))
	c.details = make(map[int64]model.BlockedUser, len(snap.IDs))
	for _, id := range snap.IDs {
		c.ids[id] = struct{}{}
		if u, ok := snap.Details[id]; ok {
			c.details[id] = u
		}
	}
	c.lastSynced = snap.LastSynced
	return nil
}

func (c *Cache) persist() {
	ids := lo.Keys(c.ids)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	snap := snapshot{
		IDs:        ids,
		Details:    c.details,
		LastSynced: c.lastSynced,
	}
	if err := c.storage.SetValue(db.KeyBlockedUsers, snap); err != nil {
		log.Error().Err(err).Msg("failed to persist blocked users cache")
	}
}
