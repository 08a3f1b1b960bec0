package types

// ------------------------------
// Core domain entities
// ------------------------------

// CartItem is the server's normalized view of one cart line. Only the
// server's echo of an item is ever persisted locally; request payloads are
// built fresh per call.
type CartItem struct {
	ID                int64              `json:"id"`
	ProductID         int                `json:"product_id"`
	Name              string             `json:"name,omitempty"`
	Quantity          int                `json:"quantity"`
	Notes             string             `json:"notes,omitempty"`
	UnitPrice         float64            `json:"unit_price,omitempty"`
	Subtotal          float64            `json:"subtotal,omitempty"`
	Extras            []ExtraSelection   `json:"extras,omitempty"`
	BaseModifications []BaseModification `json:"base_modifications,omitempty"`
}

// UserProfile is the cached profile of the authenticated user. The SDK
// treats it as opaque display data; authorization decisions stay server-side.
type UserProfile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
