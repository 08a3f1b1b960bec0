package types

// ------------------------------
// Request payloads
// ------------------------------

// ExtraSelection is an additional ingredient attached to a cart item.
type ExtraSelection struct {
	IngredientID int `json:"ingredient_id"`
	Quantity     int `json:"quantity"`
}

// BaseModification is a signed adjustment to a product's default recipe
// ingredient, expressed in portion units. Delta must be non-zero.
type BaseModification struct {
	IngredientID int `json:"ingredient_id"`
	Delta        int `json:"delta"`
}

// AddItemRequest is the body for POST /api/cart/items. GuestCartID is only
// attached for unauthenticated callers that already own a cart.
type AddItemRequest struct {
	ProductID         int                `json:"product_id"`
	Quantity          int                `json:"quantity"`
	Extras            []ExtraSelection   `json:"extras"`
	Notes             string             `json:"notes"`
	BaseModifications []BaseModification `json:"base_modifications,omitempty"`
	GuestCartID       string             `json:"guest_cart_id,omitempty"`
}

// ItemUpdates carries the mutable fields of PUT /api/cart/items/{id}.
// Nil pointer fields are omitted from the request body.
type ItemUpdates struct {
	Quantity          *int               `json:"quantity,omitempty"`
	Notes             *string            `json:"notes,omitempty"`
	Extras            []ExtraSelection   `json:"extras,omitempty"`
	BaseModifications []BaseModification `json:"base_modifications,omitempty"`
	GuestCartID       string             `json:"guest_cart_id,omitempty"`
}

// GuestCartRef is the body for operations that only reference a guest cart
// (claim, guest-side remove).
type GuestCartRef struct {
	GuestCartID string `json:"guest_cart_id,omitempty"`
}

// SyncRequest submits a locally persisted item list to POST /api/cart/sync.
// Items are forwarded verbatim; the server re-validates everything.
type SyncRequest struct {
	Items []map[string]any `json:"items"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Verify2FARequest is the body for POST /api/auth/verify-2fa.
type Verify2FARequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
