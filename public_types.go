package rbclient

import "github.com/royalburger/client-go/internal/types"

// Public type aliases so SDK consumers can import only the rbclient package.
type (
	// Request shapes
	ExtraSelection   = types.ExtraSelection
	BaseModification = types.BaseModification
	ItemUpdates      = types.ItemUpdates

	// Domain entities
	CartItem    = types.CartItem
	UserProfile = types.UserProfile
)

// ErrorType values surfaced in CartResult beyond the classifier kinds.
const (
	// ErrorTypeInsufficientStock marks stock-insufficiency failures so the
	// UI can render stock-specific messaging.
	ErrorTypeInsufficientStock = "INSUFFICIENT_STOCK"
)
