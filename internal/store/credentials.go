// Package store holds the client-side persisted state: the bearer credential
// of an authenticated session and the guest cart snapshot of an anonymous
// one. Both stores guard their read-modify-write sequences with a mutex so
// concurrent SDK calls never observe torn state.
package store

import (
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/royalburger/client-go/internal/kv"
	"github.com/royalburger/client-go/internal/types"
)

// Storage keys, fixed for compatibility with earlier releases.
const (
	keyToken = "rb.token"
	keyUser  = "rb.user"
)

// Credentials owns the bearer token and cached user profile. It never makes
// network calls; it is populated after login/2FA success, read on every
// outgoing request, and cleared on logout or an authoritative 401.
type Credentials struct {
	mu  sync.Mutex
	kv  kv.Store
	log zerolog.Logger
}

// NewCredentials wraps the given storage.
func NewCredentials(store kv.Store, log zerolog.Logger) *Credentials {
	return &Credentials{kv: store, log: log.With().Str("component", "credentials").Logger()}
}

// Token returns the stored bearer token, or "" when logged out.
func (c *Credentials) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, _ := c.kv.Get(keyToken)
	return t
}

// SetToken stores the bearer token. An empty token clears instead; the token
// is either absent or a non-empty opaque string.
func (c *Credentials) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		c.deleteLocked(keyToken)
		return
	}
	if err := c.kv.Set(keyToken, token); err != nil {
		c.log.Warn().Err(err).Msg("persist token failed")
	}
}

// ClearToken removes the bearer token.
func (c *Credentials) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteLocked(keyToken)
}

// User returns the cached profile. Malformed stored JSON yields nil rather
// than an error; the profile is a cache, not a source of truth.
func (c *Credentials) User() *types.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.kv.Get(keyUser)
	if !ok || raw == "" {
		return nil
	}
	var u types.UserProfile
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// SetUser caches the profile. A nil profile clears the cache.
func (c *Credentials) SetUser(u *types.UserProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u == nil {
		c.deleteLocked(keyUser)
		return
	}
	raw, err := json.Marshal(u)
	if err != nil {
		c.log.Warn().Err(err).Msg("encode user profile failed")
		return
	}
	if err := c.kv.Set(keyUser, string(raw)); err != nil {
		c.log.Warn().Err(err).Msg("persist user profile failed")
	}
}

// ClearUser removes the cached profile.
func (c *Credentials) ClearUser() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteLocked(keyUser)
}

// LogoutLocal clears token and profile in one step.
func (c *Credentials) LogoutLocal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteLocked(keyToken)
	c.deleteLocked(keyUser)
}

func (c *Credentials) deleteLocked(key string) {
	if err := c.kv.Delete(key); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("delete failed")
	}
}
