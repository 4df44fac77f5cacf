package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Sessions tracks the session id (jti) carried by each issued token.
// Deleting a session revokes the token.
type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	Active(ctx context.Context, sessionID, userID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// SessionStore wraps Redis for session management. A token is honored only
// while its session key exists and names the same user.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore returns a Redis-backed registry. A zero ttl keeps sessions until deleted.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(sid string) string { return "session:" + sid }

// Create stores a new session mapping sessionID -> userID.
func (s *SessionStore) Create(ctx context.Context, userID string) (string, error) {
	sid := uuid.New().String()
	err := s.rdb.Set(ctx, sessionKey(sid), userID, s.ttl).Err()
	return sid, err
}

// Active reports whether the session exists and belongs to userID.
func (s *SessionStore) Active(ctx context.Context, sessionID, userID string) (bool, error) {
	owner, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return owner == userID, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

// Denylist is the in-process registry used when no Redis is configured.
// Nothing is recorded at issue time, so every correctly signed token stays
// valid across restarts; only revoked session ids are remembered, and only
// by this process.
type Denylist struct {
	mu      sync.Mutex
	ttl     time.Duration
	revoked map[string]time.Time // sid -> forget after (zero: never)
	now     func() time.Time
}

// NewDenylist returns an empty denylist. With a non-zero ttl an entry is
// dropped once every token it could match has expired.
func NewDenylist(ttl time.Duration) *Denylist {
	return &Denylist{ttl: ttl, revoked: make(map[string]time.Time), now: time.Now}
}

func (d *Denylist) Create(context.Context, string) (string, error) {
	return uuid.New().String(), nil
}

func (d *Denylist) Active(_ context.Context, sessionID, _ string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, gone := d.revoked[sessionID]
	return !gone, nil
}

func (d *Denylist) Delete(_ context.Context, sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.sweep(now)
	var until time.Time
	if d.ttl > 0 {
		until = now.Add(d.ttl)
	}
	d.revoked[sessionID] = until
	return nil
}

// Len is the number of remembered revocations.
func (d *Denylist) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.revoked)
}

// sweep drops entries whose tokens have all expired. Caller holds mu.
func (d *Denylist) sweep(now time.Time) {
	for sid, until := range d.revoked {
		if !until.IsZero() && !now.Before(until) {
			delete(d.revoked, sid)
		}
	}
}
