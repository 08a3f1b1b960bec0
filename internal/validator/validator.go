// Package validator answers "does this guest cart identifier still exist
// server-side" with a bounded, time-expiring verdict cache in front of the
// existence probe, so mutating operations don't pay a round-trip per call.
package validator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/royalburger/client-go/internal/errclass"
	"github.com/royalburger/client-go/internal/gateway"
	"github.com/royalburger/client-go/internal/store"
)

// Cache and probe tuning.
const (
	DefaultTTL        = 30 * time.Second
	DefaultMaxEntries = 100
	probeTimeout      = 3 * time.Second
)

type verdict struct {
	valid bool
	at    time.Time
}

// Validator caches existence verdicts per guest cart identifier.
type Validator struct {
	gw    *gateway.Gateway
	guest *store.GuestCart
	log   zerolog.Logger

	mu         sync.Mutex
	cache      map[string]verdict
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New constructs a Validator with default TTL and capacity.
func New(gw *gateway.Gateway, guest *store.GuestCart, log zerolog.Logger) *Validator {
	return &Validator{
		gw:         gw,
		guest:      guest,
		log:        log.With().Str("component", "guest_validator").Logger(),
		cache:      make(map[string]verdict),
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
}

// IsValid reports whether cartID still exists server-side.
//
// Non-numeric identifiers can only be local corruption: they are reported
// invalid and the identity store is cleared. An authoritative 404/400 from
// the probe also clears the store. Inconclusive probe failures (timeout,
// network) are fail-closed: invalid, but the store is left alone since the
// verdict is not authoritative.
func (v *Validator) IsValid(ctx context.Context, cartID string) bool {
	if store.NormalizeCartID(cartID) == "" {
		v.guest.Clear()
		return false
	}

	if verdict, ok := v.lookup(cartID); ok {
		cacheHits.Inc()
		return verdict
	}
	cacheMisses.Inc()

	valid, authoritative := v.probe(ctx, cartID)
	if !valid && authoritative {
		v.guest.Clear()
	}
	v.record(cartID, valid)
	return valid
}

// Invalidate drops any cached verdict for cartID.
func (v *Validator) Invalidate(cartID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.cache, cartID)
}

// probe issues the bounded existence check. authoritative reports whether
// the answer came from the server rather than a transport failure.
func (v *Validator) probe(ctx context.Context, cartID string) (valid, authoritative bool) {
	_, err := v.gw.Request(ctx, "/api/cart/guest/"+cartID, gateway.Options{
		SkipAuth:  true,
		SkipRetry: true,
		Timeout:   probeTimeout,
	})
	if err == nil {
		return true, true
	}

	var ce *errclass.Error
	if errors.As(err, &ce) && (ce.Status == 404 || ce.Status == 400) {
		v.log.Debug().Str("cart_id", cartID).Int("status", ce.Status).Msg("guest cart gone")
		return false, true
	}
	v.log.Debug().Err(err).Str("cart_id", cartID).Msg("existence check inconclusive")
	return false, false
}

// lookup purges expired entries, evicts down to capacity, then consults the
// cache.
func (v *Validator) lookup(cartID string) (valid, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	for id, entry := range v.cache {
		if now.Sub(entry.at) >= v.ttl {
			delete(v.cache, id)
		}
	}
	v.evictLocked()

	entry, ok := v.cache[cartID]
	if !ok {
		return false, false
	}
	return entry.valid, true
}

// record writes a verdict back, keeping the cache within capacity.
func (v *Validator) record(cartID string, valid bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache[cartID] = verdict{valid: valid, at: v.now()}
	v.evictLocked()
}

// evictLocked removes oldest-by-timestamp entries until the cache is back
// under maxEntries. Independent of TTL expiry.
func (v *Validator) evictLocked() {
	if len(v.cache) <= v.maxEntries {
		return
	}
	type aged struct {
		id string
		at time.Time
	}
	entries := make([]aged, 0, len(v.cache))
	for id, e := range v.cache {
		entries = append(entries, aged{id: id, at: e.at})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })
	for _, e := range entries {
		if len(v.cache) <= v.maxEntries {
			break
		}
		delete(v.cache, e.id)
		cacheEvictions.Inc()
	}
}
