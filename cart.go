package rbclient

// Cart reconciliation across the two identity domains: an anonymous guest
// cart persisted locally, and the authenticated user's cart persisted
// server-side. Every operation re-derives which domain applies from the
// credential store at call time; there is no explicit state machine.
//
// Failure contract: invalid caller arguments return a plain error before any
// network I/O. Network and server failures are converted into a
// CartResult{Success: false, ...} so UI code never needs exception handling
// for expected failure modes.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/royalburger/client-go/internal/errclass"
	"github.com/royalburger/client-go/internal/gateway"
	"github.com/royalburger/client-go/internal/types"
)

// CartResult is the uniform outcome of every cart operation.
type CartResult struct {
	Success bool

	// CartID is the server-assigned cart identifier, when the response
	// carried one. For guests this is also what gets persisted locally.
	CartID string

	// Items is the server's normalized view of the cart after the
	// operation, when the response carried one.
	Items []CartItem

	// Error is the user-facing message for a failed operation.
	Error string

	// ErrorType is the classifier kind, or ErrorTypeInsufficientStock for
	// stock failures.
	ErrorType string
}

// AddItem adds a product to the cart.
//
// For guests the stored cart identifier is attached without pre-validation:
// one wasted round-trip on a stale id is cheaper than an extra existence
// check on the common path. If the server answers with the stale-guest-cart
// signature, the identifier is purged and the identical request is re-issued
// once with no identifier so the server allocates a fresh cart.
func (c *Client) AddItem(ctx context.Context, productID, quantity int, extras []ExtraSelection, notes string, baseMods []BaseModification) (*CartResult, error) {
	if err := types.ValidateProductID(productID); err != nil {
		return nil, err
	}
	if err := types.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := types.ValidateNotes(notes); err != nil {
		return nil, err
	}

	req := types.AddItemRequest{
		ProductID:         productID,
		Quantity:          quantity,
		Extras:            types.NormalizeExtras(extras),
		Notes:             notes,
		BaseModifications: types.NormalizeBaseModifications(baseMods),
	}
	guest := !c.IsAuthenticated()
	if guest {
		req.GuestCartID = c.guest.ID()
	}

	raw, err := c.gw.Request(ctx, "/api/cart/items", gateway.Options{Method: http.MethodPost, Body: req})
	if err != nil && guest && req.GuestCartID != "" && errclass.IsStaleGuestCart(err) {
		raw, err = c.recreateGuestCart(ctx, req)
	}
	if err != nil {
		return c.cartFailure("add_item", err), nil
	}
	cartOpsTotal.WithLabelValues("add_item", "success").Inc()
	return c.cartSuccess(raw, guest), nil
}

// recreateGuestCart is the one-shot compensating action for the stale
// guest cart signature: purge the dead identifier and re-issue the identical
// add with none attached. Never recursive; the retried call's outcome is
// surfaced in place of the original error.
func (c *Client) recreateGuestCart(ctx context.Context, req types.AddItemRequest) ([]byte, error) {
	c.log.Info().Str("stale_cart_id", req.GuestCartID).Msg("guest cart vanished server-side, recreating")
	staleCartRecoveries.Inc()
	c.validator.Invalidate(req.GuestCartID)
	c.guest.Clear()
	req.GuestCartID = ""
	return c.gw.Request(ctx, "/api/cart/items", gateway.Options{Method: http.MethodPost, Body: req})
}

// GetCart fetches the current cart for whichever identity is active.
//
// On the guest path a 404/400 is a read-path recovery, distinct from
// AddItem's recreate behavior: there is nothing to retry, so the stale
// identifier is purged and an empty cart is the terminal answer.
func (c *Client) GetCart(ctx context.Context) (*CartResult, error) {
	if c.IsAuthenticated() {
		raw, err := c.gw.Request(ctx, "/api/cart/me", gateway.Options{})
		if err != nil {
			return c.cartFailure("get_cart", err), nil
		}
		cartOpsTotal.WithLabelValues("get_cart", "success").Inc()
		return c.cartSuccess(raw, false), nil
	}

	// GuestCart.ID purges deprecated fallback identifiers on read.
	id := c.guest.ID()
	if id == "" {
		return &CartResult{Success: true, Items: []CartItem{}}, nil
	}

	raw, err := c.gw.Request(ctx, "/api/cart/guest/"+id, gateway.Options{SkipAuth: true})
	if err != nil {
		var ce *errclass.Error
		if errors.As(err, &ce) && (ce.Status == 404 || ce.Status == 400) {
			c.guest.Clear()
			c.validator.Invalidate(id)
			cartOpsTotal.WithLabelValues("get_cart", "success").Inc()
			return &CartResult{Success: true, Items: []CartItem{}}, nil
		}
		return c.cartFailure("get_cart", err), nil
	}
	cartOpsTotal.WithLabelValues("get_cart", "success").Inc()
	res := c.cartSuccess(raw, true)
	if res.CartID == "" {
		res.CartID = id
	}
	return res, nil
}

// UpdateItem mutates a cart line. Unlike AddItem, the guest identifier is
// proactively validated first: an update against a vanished cart is
// unrecoverable, since the server cannot know which cart to recreate the
// line in. An invalid identifier is simply not attached.
func (c *Client) UpdateItem(ctx context.Context, itemID int64, updates ItemUpdates) (*CartResult, error) {
	if err := types.ValidateItemID(itemID); err != nil {
		return nil, err
	}
	if err := types.ValidateUpdates(updates); err != nil {
		return nil, err
	}
	if updates.Extras != nil {
		updates.Extras = types.NormalizeExtras(updates.Extras)
	}
	updates.BaseModifications = types.NormalizeBaseModifications(updates.BaseModifications)

	guest := !c.IsAuthenticated()
	if guest {
		updates.GuestCartID = c.validGuestID(ctx)
	}

	raw, err := c.gw.Request(ctx, fmt.Sprintf("/api/cart/items/%d", itemID), gateway.Options{
		Method: http.MethodPut,
		Body:   updates,
	})
	if err != nil {
		return c.cartFailure("update_item", err), nil
	}
	cartOpsTotal.WithLabelValues("update_item", "success").Inc()
	return c.cartSuccess(raw, guest), nil
}

// RemoveItem deletes a cart line, with the same proactive guest-identifier
// validation as UpdateItem.
func (c *Client) RemoveItem(ctx context.Context, itemID int64) (*CartResult, error) {
	if err := types.ValidateItemID(itemID); err != nil {
		return nil, err
	}

	guest := !c.IsAuthenticated()
	var body any
	if guest {
		body = types.GuestCartRef{GuestCartID: c.validGuestID(ctx)}
	}

	raw, err := c.gw.Request(ctx, fmt.Sprintf("/api/cart/items/%d", itemID), gateway.Options{
		Method: http.MethodDelete,
		Body:   body,
	})
	if err != nil {
		return c.cartFailure("remove_item", err), nil
	}
	cartOpsTotal.WithLabelValues("remove_item", "success").Inc()
	return c.cartSuccess(raw, guest), nil
}

// ClaimGuestCart merges the stored guest cart into the authenticated user's
// server-side cart. The local snapshot is cleared unconditionally on
// success: after a claim the guest cart no longer exists as a distinct
// entity, regardless of partial merge outcomes server-side.
func (c *Client) ClaimGuestCart(ctx context.Context) (*CartResult, error) {
	if !c.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	id := c.guest.ID()
	if id == "" {
		return &CartResult{Success: true}, nil
	}

	raw, err := c.gw.Request(ctx, "/api/cart/claim", gateway.Options{
		Method: http.MethodPost,
		Body:   types.GuestCartRef{GuestCartID: id},
	})
	if err != nil {
		return c.cartFailure("claim", err), nil
	}
	c.guest.Clear()
	c.validator.Invalidate(id)
	cartOpsTotal.WithLabelValues("claim", "success").Inc()
	return c.cartSuccess(raw, false), nil
}

// SyncCart pushes the raw local snapshot to the server. The snapshot is read
// without normalization so a legacy format that no longer passes current
// validation can still be synced; a snapshot that fails to parse means there
// is nothing to sync and is purged. Local state is cleared unconditionally
// on success.
func (c *Client) SyncCart(ctx context.Context) (*CartResult, error) {
	if !c.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	raw, ok := c.guest.Raw()
	if !ok || raw == "" {
		return &CartResult{Success: true}, nil
	}
	var snap struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil || len(snap.Items) == 0 {
		c.guest.Clear()
		return &CartResult{Success: true}, nil
	}

	_, err := c.gw.Request(ctx, "/api/cart/sync", gateway.Options{
		Method: http.MethodPost,
		Body:   types.SyncRequest{Items: snap.Items},
	})
	if err != nil {
		return c.cartFailure("sync", err), nil
	}
	c.guest.Clear()
	cartOpsTotal.WithLabelValues("sync", "success").Inc()
	return &CartResult{Success: true}, nil
}

// ClearCart empties the cart. Authenticated callers get a single server
// call. Guests get parallel per-item removals, each isolated so one failure
// does not abort the batch, and the local snapshot is purged regardless of
// per-item outcomes: from the user's perspective local state is the
// authority for "cart is empty".
func (c *Client) ClearCart(ctx context.Context) (*CartResult, error) {
	if c.IsAuthenticated() {
		_, err := c.gw.Request(ctx, "/api/cart/me/clear", gateway.Options{Method: http.MethodDelete})
		if err != nil {
			return c.cartFailure("clear", err), nil
		}
		cartOpsTotal.WithLabelValues("clear", "success").Inc()
		return &CartResult{Success: true, Items: []CartItem{}}, nil
	}

	id := c.guest.ID()
	if id != "" {
		current, err := c.GetCart(ctx)
		if err == nil && current.Success {
			c.removeAll(ctx, id, current.Items)
		}
		c.validator.Invalidate(id)
	}
	c.guest.Clear()
	cartOpsTotal.WithLabelValues("clear", "success").Inc()
	return &CartResult{Success: true, Items: []CartItem{}}, nil
}

// removeAll issues one removal per item concurrently and waits for the
// batch. Individual failures are logged and swallowed.
func (c *Client) removeAll(ctx context.Context, cartID string, items []CartItem) {
	var wg sync.WaitGroup
	for _, it := range items {
		if it.ID <= 0 {
			continue
		}
		wg.Add(1)
		go func(itemID int64) {
			defer wg.Done()
			_, err := c.gw.Request(ctx, fmt.Sprintf("/api/cart/items/%d", itemID), gateway.Options{
				Method: http.MethodDelete,
				Body:   types.GuestCartRef{GuestCartID: cartID},
			})
			if err != nil {
				c.log.Debug().Err(err).Int64("item_id", itemID).Msg("guest cart item removal failed")
			}
		}(it.ID)
	}
	wg.Wait()
}

// validGuestID returns the stored guest identifier only when the validator
// confirms it still exists server-side. The validator owns clearing the
// store on authoritative invalidity; an inconclusive probe just means the
// identifier is not attached to this request.
func (c *Client) validGuestID(ctx context.Context) string {
	id := c.guest.ID()
	if id == "" {
		return ""
	}
	if !c.validator.IsValid(ctx, id) {
		return ""
	}
	return id
}

// cartSuccess decodes the response envelope and, for guests, persists the
// echoed identifier and items as the new snapshot.
func (c *Client) cartSuccess(raw []byte, guest bool) *CartResult {
	res := &CartResult{Success: true}
	if len(raw) == 0 {
		return res
	}
	env, err := types.DecodeCartEnvelope(raw)
	if err != nil {
		c.log.Debug().Err(err).Msg("unparseable cart envelope, returning bare success")
		return res
	}
	if id, ok := env.ExtractCartID(); ok {
		res.CartID = id
	}
	res.Items = env.ExtractItems()
	if guest && res.CartID != "" {
		c.guest.Save(res.CartID, res.Items)
	}
	return res
}

// cartFailure converts a classified error into the uniform failure result.
func (c *Client) cartFailure(op string, err error) *CartResult {
	cartOpsTotal.WithLabelValues(op, "failure").Inc()

	var ce *errclass.Error
	if errclass.IsInsufficientStock(err) && errors.As(err, &ce) {
		msg := ce.Payload.ServerMessage()
		if msg == "" {
			msg = ce.UserMessage
		}
		c.log.Warn().Str("op", op).Str("error", msg).Msg("insufficient stock")
		return &CartResult{Error: msg, ErrorType: ErrorTypeInsufficientStock}
	}

	cls := errclass.Classify(err)
	c.log.Warn().Str("op", op).Str("kind", string(cls.Kind)).Err(err).Msg("cart operation failed")
	return &CartResult{Error: cls.UserMessage, ErrorType: string(cls.Kind)}
}
