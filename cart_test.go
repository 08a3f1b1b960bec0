package rbclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	json "github.com/goccy/go-json"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithInMemoryState(), WithHTTPClient(srv.Client()), WithMaxRetries(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAddItem_GuestAddThenReadBack(t *testing.T) {
	t.Parallel()
	var stored []map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart/items", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		stored = append(stored, map[string]any{
			"id": 1, "product_id": req["product_id"], "quantity": req["quantity"],
		})
		writeJSON(w, http.StatusCreated, map[string]any{"cart_id": 555, "items": stored})
	})
	mux.HandleFunc("GET /api/cart/guest/555", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"cart_id": 555, "items": stored})
	})
	c := newTestClient(t, mux)

	res, err := c.AddItem(context.Background(), 5, 2, nil, "", nil)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if !res.Success || res.CartID != "555" {
		t.Fatalf("add result: %+v", res)
	}
	if got := c.guest.ID(); got != "555" {
		t.Fatalf("guest cart id not persisted: %q", got)
	}

	cart, err := c.GetCart(context.Background())
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if !cart.Success || len(cart.Items) != 1 || cart.Items[0].ProductID != 5 || cart.Items[0].Quantity != 2 {
		t.Fatalf("read-back cart: %+v", cart)
	}
}

func TestAddItem_QuantityBoundRejectedBeforeNetwork(t *testing.T) {
	t.Parallel()
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	if _, err := c.AddItem(context.Background(), 5, 100, nil, "", nil); err == nil {
		t.Fatal("quantity 100 must be rejected")
	}
	if _, err := c.AddItem(context.Background(), 0, 1, nil, "", nil); err == nil {
		t.Fatal("product id 0 must be rejected")
	}
	if _, err := c.AddItem(context.Background(), 5, 1, nil, strings.Repeat("x", 501), nil); err == nil {
		t.Fatal("oversized notes must be rejected")
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("validation failures reached the network: %d calls", n)
	}
}

func TestAddItem_StaleGuestCartRecovery(t *testing.T) {
	t.Parallel()
	var posts int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart/items", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&posts, 1)
		var req struct {
			GuestCartID string `json:"guest_cart_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.GuestCartID == "999" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Carrinho não encontrado"})
			return
		}
		if req.GuestCartID != "" {
			t.Errorf("retried request carried identifier %q", req.GuestCartID)
		}
		writeJSON(w, http.StatusCreated, map[string]any{"cart_id": 1000, "items": []any{}})
	})
	c := newTestClient(t, mux)
	c.guest.Save("999", nil)

	res, err := c.AddItem(context.Background(), 5, 2, nil, "", nil)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if !res.Success || res.CartID != "1000" {
		t.Fatalf("recovery outcome: %+v", res)
	}
	if got := c.guest.ID(); got != "1000" {
		t.Fatalf("new identifier not persisted: %q", got)
	}
	if n := atomic.LoadInt32(&posts); n != 2 {
		t.Fatalf("recovery must be one-shot: %d posts", n)
	}
}

func TestAddItem_StaleRecoveryFailureSurfaces(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart/items", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GuestCartID string `json:"guest_cart_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.GuestCartID == "999" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Carrinho não encontrado"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
	})
	c := newTestClient(t, mux)
	c.guest.Save("999", nil)

	res, err := c.AddItem(context.Background(), 5, 2, nil, "", nil)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if res.Success || res.ErrorType != "server_error" {
		t.Fatalf("retried failure must surface: %+v", res)
	}
	if got := c.guest.ID(); got != "" {
		t.Fatalf("stale identifier must stay purged: %q", got)
	}
}

func TestUpdateItem_StockErrorSurfacing(t *testing.T) {
	t.Parallel()
	const stockMsg = "Ingrediente 'Queijo' insuficiente para a quantidade solicitada"
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/cart/items/3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": stockMsg})
	})
	c := newTestClient(t, mux)

	q := 9
	res, err := c.UpdateItem(context.Background(), 3, ItemUpdates{Quantity: &q})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if res.Success || res.ErrorType != ErrorTypeInsufficientStock || res.Error != stockMsg {
		t.Fatalf("stock error surfacing: %+v", res)
	}
}

func TestUpdateItem_ProactiveGuestValidation(t *testing.T) {
	t.Parallel()
	var probed, updatedWithID int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart/guest/42", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&probed, 1)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Carrinho não encontrado"})
	})
	mux.HandleFunc("PUT /api/cart/items/3", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GuestCartID string `json:"guest_cart_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.GuestCartID != "" {
			atomic.AddInt32(&updatedWithID, 1)
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
	})
	c := newTestClient(t, mux)
	c.guest.Save("42", nil)

	q := 2
	res, err := c.UpdateItem(context.Background(), 3, ItemUpdates{Quantity: &q})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !res.Success {
		t.Fatalf("update result: %+v", res)
	}
	if atomic.LoadInt32(&probed) != 1 {
		t.Fatal("update must validate the guest identifier first")
	}
	if atomic.LoadInt32(&updatedWithID) != 0 {
		t.Fatal("invalid identifier must not be attached")
	}
	if got := c.guest.ID(); got != "" {
		t.Fatalf("authoritative 404 must purge the identifier: %q", got)
	}
}

func TestClaimGuestCart_ClearsSnapshotRegardlessOfMergeReport(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart/claim", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GuestCartID string `json:"guest_cart_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.GuestCartID != "123" {
			t.Errorf("claim body carried %q", req.GuestCartID)
		}
		// Partial merge report; the local snapshot still goes away.
		writeJSON(w, http.StatusOK, map[string]any{"merged": 2, "skipped": 1})
	})
	c := newTestClient(t, mux)
	c.creds.SetToken("tok-1")
	c.guest.Save("123", nil)

	res, err := c.ClaimGuestCart(context.Background())
	if err != nil {
		t.Fatalf("ClaimGuestCart: %v", err)
	}
	if !res.Success {
		t.Fatalf("claim result: %+v", res)
	}
	if got := c.guest.ID(); got != "" {
		t.Fatalf("guest snapshot must be cleared after claim: %q", got)
	}
}

func TestClaimGuestCart_RequiresAuth(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.NewServeMux())
	if _, err := c.ClaimGuestCart(context.Background()); !IsNotAuthenticated(err) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
	if _, err := c.SyncCart(context.Background()); !IsNotAuthenticated(err) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
}

func TestSyncCart_PushesRawSnapshotThenClears(t *testing.T) {
	t.Parallel()
	var gotItems []map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cart/sync", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Items []map[string]any `json:"items"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotItems = req.Items
		writeJSON(w, http.StatusOK, map[string]any{"synced": len(req.Items)})
	})
	c := newTestClient(t, mux)
	c.creds.SetToken("tok-1")
	// Legacy snapshot that fails current identifier validation but still
	// carries items worth syncing.
	_ = c.state.Set("royal_burger_cart", `{"cartId":"fallback_17","items":[{"product_id":5,"quantity":2}],"timestamp":1}`)

	res, err := c.SyncCart(context.Background())
	if err != nil {
		t.Fatalf("SyncCart: %v", err)
	}
	if !res.Success || len(gotItems) != 1 {
		t.Fatalf("sync outcome: res=%+v items=%+v", res, gotItems)
	}
	if _, ok := c.state.Get("royal_burger_cart"); ok {
		t.Fatal("snapshot must be cleared after a successful sync")
	}
}

func TestSyncCart_UnparseableSnapshotPurgedWithoutNetwork(t *testing.T) {
	t.Parallel()
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	c.creds.SetToken("tok-1")
	_ = c.state.Set("royal_burger_cart", "{corrupted")

	res, err := c.SyncCart(context.Background())
	if err != nil {
		t.Fatalf("SyncCart: %v", err)
	}
	if !res.Success {
		t.Fatalf("parse failure means nothing to sync: %+v", res)
	}
	if _, ok := c.state.Get("royal_burger_cart"); ok {
		t.Fatal("corrupt snapshot must be purged")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("no network call for an unparseable snapshot")
	}
}

func TestClearCart_GuestParallelRemovalsIsolated(t *testing.T) {
	t.Parallel()
	var deletes int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart/guest/77", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"cart_id": 77, "items": []map[string]any{
			{"id": 1, "product_id": 5, "quantity": 1},
			{"id": 2, "product_id": 6, "quantity": 1},
			{"id": 3, "product_id": 7, "quantity": 1},
		}})
	})
	mux.HandleFunc("DELETE /api/cart/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&deletes, 1)
		if r.PathValue("id") == "2" {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	c := newTestClient(t, mux)
	c.guest.Save("77", nil)

	res, err := c.ClearCart(context.Background())
	if err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	if !res.Success {
		t.Fatalf("clear result: %+v", res)
	}
	if n := atomic.LoadInt32(&deletes); n != 3 {
		t.Fatalf("one failing removal must not abort the batch: %d deletes", n)
	}
	if _, ok := c.state.Get("royal_burger_cart"); ok {
		t.Fatal("local snapshot must be purged regardless of per-item outcomes")
	}
}

func TestClearCart_Authenticated(t *testing.T) {
	t.Parallel()
	var cleared int32
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/cart/me/clear", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cleared, 1)
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	c := newTestClient(t, mux)
	c.creds.SetToken("tok-1")

	res, err := c.ClearCart(context.Background())
	if err != nil {
		t.Fatalf("ClearCart: %v", err)
	}
	if !res.Success || atomic.LoadInt32(&cleared) != 1 {
		t.Fatalf("authenticated clear: res=%+v calls=%d", res, cleared)
	}
}

func TestGetCart_GuestStaleIdentifierReadsAsEmpty(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart/guest/88", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Carrinho não encontrado"})
	})
	c := newTestClient(t, mux)
	c.guest.Save("88", nil)

	res, err := c.GetCart(context.Background())
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if !res.Success || len(res.Items) != 0 {
		t.Fatalf("stale read must be an empty cart: %+v", res)
	}
	if got := c.guest.ID(); got != "" {
		t.Fatalf("stale identifier must be purged on read: %q", got)
	}
}

func TestGetCart_GuestWithoutCartSkipsNetwork(t *testing.T) {
	t.Parallel()
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	res, err := c.GetCart(context.Background())
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if !res.Success || len(res.Items) != 0 || atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("empty guest cart must not hit the network: %+v calls=%d", res, calls)
	}
}
