package errclass

import (
	"errors"
	"strings"
)

// stockMarkers are the substrings the backend uses when an ingredient or
// product runs out. The backend does not reserve a status code for this
// condition, so detection is by message content. Kept as one named predicate
// so a future machine-readable error code can replace it in a single place.
var stockMarkers = []string{
	"insuficiente",
	"sem estoque",
	"estoque insuficiente",
	"fora de estoque",
	"insufficient stock",
	"out of stock",
}

// staleCartMarkers identify the "guest cart no longer exists" signature that
// drives the recreate-cart recovery path.
var staleCartMarkers = []string{
	"carrinho não encontrado",
	"carrinho nao encontrado",
	"guest cart not found",
	"cart not found",
	"carrinho não existe",
}

// IsInsufficientStock reports whether err is a stock-insufficiency failure.
// The rule is uniform across all call sites: status 400, 422 or 500 with a
// payload message naming a stock condition.
func IsInsufficientStock(err error) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	msg := strings.ToLower(ce.Payload.ServerMessage())
	hasMarker := false
	for _, m := range stockMarkers {
		if strings.Contains(msg, m) {
			hasMarker = true
			break
		}
	}
	switch ce.Status {
	case 400, 422, 500:
		return hasMarker
	default:
		return false
	}
}

// IsStaleGuestCart reports whether err is the specific 404 signature meaning
// the locally stored guest cart identifier no longer exists server-side.
// Generic endpoint-missing 404s are excluded by requiring both a cart path
// and a cart-not-found message.
func IsStaleGuestCart(err error) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	if ce.Status != 404 || !strings.Contains(ce.Op, "/api/cart") {
		return false
	}
	msg := strings.ToLower(ce.Payload.ServerMessage())
	for _, m := range staleCartMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
