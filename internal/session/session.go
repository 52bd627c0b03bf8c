// Package session implements server-side sessions stored in Redis and keyed
// by an opaque cookie. Session payloads are JSON; the cookie carries only a
// random identifier.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the session cookie sent to browsers.
	CookieName = "zenith_session"

	// BaseTTL is the lifetime of a freshly established session.
	BaseTTL = 7 * 24 * time.Hour

	// ExtendedTTL is applied when the user expresses a persistent preference,
	// such as toggling the theme.
	ExtendedTTL = 30 * 24 * time.Hour

	// SignupStashTTL bounds how long step-one registration data survives
	// before step two must complete.
	SignupStashTTL = 30 * time.Minute

	keyPrefix = "sess:%s"
)

// FlashMessage is a one-shot notification rendered on the next page load.
type FlashMessage struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// SignupStash holds validated step-one registration fields while the user
// completes step two.
type SignupStash struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	BirthDate time.Time `json:"birth_date"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the stash has outlived its window.
func (s *SignupStash) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Data is the JSON payload stored in Redis for one session.
type Data struct {
	UserID   uint           `json:"user_id,omitempty"`
	DarkMode *bool          `json:"dark_mode,omitempty"`
	Signup   *SignupStash   `json:"signup,omitempty"`
	Flashes  []FlashMessage `json:"flashes,omitempty"`
}

// Session is a loaded (or freshly created) session. Mutations mark it dirty;
// the middleware persists dirty sessions after the handler returns.
type Session struct {
	id        string
	isNew     bool
	dirty     bool
	destroyed bool
	ttl       time.Duration // 0 keeps the existing Redis TTL
	Data      Data
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// IsAuthenticated reports whether a user is bound to this session.
func (s *Session) IsAuthenticated() bool { return s.Data.UserID != 0 }

// SetUserID binds a user to this session.
func (s *Session) SetUserID(id uint) {
	s.Data.UserID = id
	s.dirty = true
}

// SetDarkMode records the theme preference on the session itself.
func (s *Session) SetDarkMode(dark bool) {
	s.Data.DarkMode = &dark
	s.dirty = true
}

// SetSignup stashes step-one registration data.
func (s *Session) SetSignup(stash *SignupStash) {
	s.Data.Signup = stash
	s.dirty = true
}

// ClearSignup drops any stashed registration data.
func (s *Session) ClearSignup() {
	if s.Data.Signup != nil {
		s.Data.Signup = nil
		s.dirty = true
	}
}

// AddFlash queues a one-shot message for the next page load.
func (s *Session) AddFlash(level, text string) {
	s.Data.Flashes = append(s.Data.Flashes, FlashMessage{Level: level, Text: text})
	s.dirty = true
}

// ConsumeFlashes returns queued messages and clears them.
func (s *Session) ConsumeFlashes() []FlashMessage {
	if len(s.Data.Flashes) == 0 {
		return nil
	}
	out := s.Data.Flashes
	s.Data.Flashes = nil
	s.dirty = true
	return out
}

// Extend stretches the session lifetime to ExtendedTTL.
func (s *Session) Extend() {
	s.ttl = ExtendedTTL
	s.dirty = true
}

// Destroy marks the session for deletion. The middleware removes the Redis
// entry and expires the cookie.
func (s *Session) Destroy() {
	s.destroyed = true
	s.dirty = true
}

// Manager loads and persists sessions against a Redis client.
type Manager struct {
	rdb *redis.Client
}

// NewManager returns a Manager backed by the given Redis client.
func NewManager(rdb *redis.Client) *Manager {
	return &Manager{rdb: rdb}
}

func sessionKey(id string) string {
	return fmt.Sprintf(keyPrefix, id)
}

// New creates an empty session with a fresh identifier. Nothing is written
// to Redis until the session is persisted.
func (m *Manager) New() *Session {
	return &Session{
		id:    uuid.NewString(),
		isNew: true,
		ttl:   BaseTTL,
	}
}

// Load fetches the session with the given id. A missing or expired session
// yields (nil, nil).
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if m.rdb == nil || id == "" {
		return nil, nil
	}
	raw, err := m.rdb.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &Session{id: id, Data: data}, nil
}

// Persist writes the session payload to Redis. New sessions get BaseTTL;
// existing sessions keep their remaining TTL unless Extend was called.
func (m *Manager) Persist(ctx context.Context, s *Session) error {
	if m.rdb == nil {
		return errors.New("session store unavailable")
	}
	if s.destroyed {
		return m.rdb.Del(ctx, sessionKey(s.id)).Err()
	}
	payload, err := json.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := s.ttl
	if ttl == 0 {
		ttl = redis.KeepTTL
	}
	if err := m.rdb.Set(ctx, sessionKey(s.id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Destroy removes the session from Redis immediately.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if m.rdb == nil {
		return nil
	}
	return m.rdb.Del(ctx, sessionKey(id)).Err()
}
