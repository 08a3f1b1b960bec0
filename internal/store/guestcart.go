package store

import (
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/royalburger/client-go/internal/kv"
	"github.com/royalburger/client-go/internal/types"
)

// keyGuestCart is the persistence boundary between anonymous sessions.
const keyGuestCart = "royal_burger_cart"

// fallbackPrefix marks identifiers minted by a deprecated client-side scheme.
// They never existed server-side and are purged on sight.
const fallbackPrefix = "fallback_"

// Snapshot is the persisted guest cart state: the server-assigned identifier
// plus a denormalized copy of the items, stamped at write time.
type Snapshot struct {
	CartID    string           `json:"cartId"`
	Items     []types.CartItem `json:"items"`
	Timestamp int64            `json:"timestamp"`
}

// GuestCart owns the guest cart snapshot. It exists only while the user is
// unauthenticated and has added at least one item.
type GuestCart struct {
	mu  sync.Mutex
	kv  kv.Store
	log zerolog.Logger
	now func() time.Time
}

// NewGuestCart wraps the given storage.
func NewGuestCart(store kv.Store, log zerolog.Logger) *GuestCart {
	return &GuestCart{
		kv:  store,
		log: log.With().Str("component", "guest_cart").Logger(),
		now: time.Now,
	}
}

// ID returns the normalized guest cart identifier, or "" when none is
// stored. Anything that fails normalization is treated as absent, and
// deprecated fallback identifiers are actively purged.
func (g *GuestCart) ID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap, ok := g.loadLocked()
	if !ok {
		return ""
	}
	if strings.HasPrefix(snap.CartID, fallbackPrefix) {
		g.clearLocked()
		return ""
	}
	return NormalizeCartID(snap.CartID)
}

// Items returns the persisted item snapshot.
func (g *GuestCart) Items() []types.CartItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	snap, ok := g.loadLocked()
	if !ok {
		return nil
	}
	return snap.Items
}

// Save persists the identifier and item snapshot. Malformed identifiers are
// rejected silently, leaving prior state untouched; storage failures are
// logged and otherwise ignored.
func (g *GuestCart) Save(cartID string, items []types.CartItem) {
	if NormalizeCartID(cartID) == "" {
		g.log.Debug().Str("cart_id", cartID).Msg("rejecting malformed guest cart id")
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{CartID: cartID, Items: items, Timestamp: g.now().UnixMilli()}
	raw, err := json.Marshal(snap)
	if err != nil {
		g.log.Warn().Err(err).Msg("encode guest cart snapshot failed")
		return
	}
	if err := g.kv.Set(keyGuestCart, string(raw)); err != nil {
		g.log.Warn().Err(err).Msg("persist guest cart snapshot failed")
	}
}

// Clear removes the snapshot.
func (g *GuestCart) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearLocked()
}

// Raw returns the stored snapshot string without normalization or shape
// checks. Sync reads through this so a legacy snapshot that no longer passes
// current validation can still be pushed to the server.
func (g *GuestCart) Raw() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.kv.Get(keyGuestCart)
}

func (g *GuestCart) loadLocked() (Snapshot, bool) {
	raw, ok := g.kv.Get(keyGuestCart)
	if !ok || raw == "" {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

func (g *GuestCart) clearLocked() {
	if err := g.kv.Delete(keyGuestCart); err != nil {
		g.log.Warn().Err(err).Msg("clear guest cart failed")
	}
}

// NormalizeCartID validates a stored identifier: non-empty, not the literal
// "null"/"undefined", decimal digits only. Returns "" for anything else.
func NormalizeCartID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "null" || s == "undefined" {
		return ""
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return s
}
