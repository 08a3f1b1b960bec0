package types

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// ------------------------------
// Response envelopes
// ------------------------------

// The cart endpoints answer with three known shapes, depending on the
// operation and backend version:
//
//	{"cart_id": 42, "items": [...]}
//	{"cart": {"cart": {"id": 42}, "items": [...]}}
//	{"cart": {"id": 42, "items": [...]}}
//
// The accessors below resolve identifier and items in that priority order.
// No further shapes are guessed at; anything else resolves to absent.

// CartEnvelope is a lazily decoded cart response.
type CartEnvelope struct {
	CartID json.RawMessage `json:"cart_id"`
	Items  []CartItem      `json:"items"`
	Cart   json.RawMessage `json:"cart"`
}

type nestedCart struct {
	ID    json.RawMessage `json:"id"`
	Items []CartItem      `json:"items"`
	Cart  *struct {
		ID json.RawMessage `json:"id"`
	} `json:"cart"`
}

// DecodeCartEnvelope parses a raw cart response body.
func DecodeCartEnvelope(raw []byte) (*CartEnvelope, error) {
	var env CartEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// ExtractCartID resolves the cart identifier from the envelope, normalized
// to its decimal string form. ok is false when no identifier is present.
func (e *CartEnvelope) ExtractCartID() (id string, ok bool) {
	if id, ok = rawID(e.CartID); ok {
		return id, true
	}
	nested := e.nested()
	if nested == nil {
		return "", false
	}
	if nested.Cart != nil {
		if id, ok = rawID(nested.Cart.ID); ok {
			return id, true
		}
	}
	return rawID(nested.ID)
}

// ExtractItems resolves the item list: top-level items first, then
// cart.items, then a cart field that is itself an item array.
func (e *CartEnvelope) ExtractItems() []CartItem {
	if e.Items != nil {
		return e.Items
	}
	if nested := e.nested(); nested != nil && nested.Items != nil {
		return nested.Items
	}
	if len(e.Cart) > 0 {
		var items []CartItem
		if err := json.Unmarshal(e.Cart, &items); err == nil {
			return items
		}
	}
	return nil
}

func (e *CartEnvelope) nested() *nestedCart {
	if len(e.Cart) == 0 {
		return nil
	}
	var n nestedCart
	if err := json.Unmarshal(e.Cart, &n); err != nil {
		return nil
	}
	return &n
}

// rawID accepts the identifier as either a JSON number or a string and
// normalizes it to a non-empty decimal string.
func rawID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil && num.String() != "" {
		if _, convErr := strconv.ParseInt(num.String(), 10, 64); convErr == nil {
			return num.String(), true
		}
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		if _, convErr := strconv.ParseUint(s, 10, 64); convErr == nil {
			return s, true
		}
	}
	return "", false
}

// LoginResponse is the envelope for POST /api/auth/login and verify-2fa.
type LoginResponse struct {
	Token       string       `json:"token,omitempty"`
	AccessToken string       `json:"access_token,omitempty"`
	Requires2FA bool         `json:"requires_2fa,omitempty"`
	User        *UserProfile `json:"user,omitempty"`
}

// BearerToken returns whichever token field the backend populated.
func (r *LoginResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}
