// internal/interfaces/http/handlers/cart_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/session"
)

// fakeShopCart plays the upstream cart endpoints behind the cache
type fakeShopCart struct {
	mu    sync.Mutex
	lines map[uint]int
	calls int
}

func newFakeShopCart() *fakeShopCart {
	return &fakeShopCart{lines: make(map[uint]int)}
}

func (f *fakeShopCart) snapshot() *cart.Snapshot {
	price := decimal.RequireFromString("10.00")
	snap := &cart.Snapshot{TotalPrice: decimal.Zero}
	for id, qty := range f.lines {
		total := price.Mul(decimal.NewFromInt(int64(qty)))
		snap.Lines = append(snap.Lines, cart.Line{ProductID: id, Quantity: qty, UnitPrice: price, LineTotal: total})
		snap.TotalPrice = snap.TotalPrice.Add(total)
		snap.TotalQuantity += qty
	}
	return snap
}

func (f *fakeShopCart) FetchCart(ctx context.Context) (*cart.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.snapshot(), nil
}

func (f *fakeShopCart) AddItem(ctx context.Context, productID uint, quantity int, override bool) (*cart.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if override {
		f.lines[productID] = quantity
	} else {
		f.lines[productID] += quantity
	}
	return f.snapshot(), nil
}

func (f *fakeShopCart) UpdateQuantity(ctx context.Context, productID uint, quantity int) (*cart.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lines[productID] = quantity
	return f.snapshot(), nil
}

func (f *fakeShopCart) RemoveItem(ctx context.Context, productID uint) (*cart.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	delete(f.lines, productID)
	return f.snapshot(), nil
}

func (f *fakeShopCart) ClearCart(ctx context.Context) (*cart.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lines = make(map[uint]int)
	return f.snapshot(), nil
}

func newCartRouter(t *testing.T, upstream *fakeShopCart) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	state := &session.State{
		ID:   "sess-test",
		Cart: cart.NewCache(upstream, log),
	}

	handler := NewCartHandler(&config.Config{})
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("session_state", state)
	})
	r.GET("/api/v1/cart", handler.GetCart)
	r.POST("/api/v1/cart/items", handler.AddToCart)
	r.PUT("/api/v1/cart/items/:id", handler.UpdateCartItem)
	r.DELETE("/api/v1/cart/items/:id", handler.RemoveCartItem)
	r.DELETE("/api/v1/cart", handler.ClearCart)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w.Code, decoded
}

func TestAddToCartDefaultsQuantityToOne(t *testing.T) {
	upstream := newFakeShopCart()
	r := newCartRouter(t, upstream)

	code, body := doJSON(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id": 3}`)
	require.Equal(t, http.StatusOK, code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total_quantity"])
	assert.Equal(t, 1, upstream.lines[3])
}

func TestAddToCartRejectsOutOfBoundsQuantity(t *testing.T) {
	upstream := newFakeShopCart()
	r := newCartRouter(t, upstream)

	for _, payload := range []string{
		`{"product_id": 3, "quantity": 11}`,
		`{"product_id": 3, "quantity": -1}`,
	} {
		code, body := doJSON(t, r, http.MethodPost, "/api/v1/cart/items", payload)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Quantity must be between 1 and 10", body["error"])
	}
	// The bounds check runs before the cache is ever touched
	assert.Equal(t, 0, upstream.calls)
}

func TestUpdateCartItemRejectsOutOfBoundsQuantity(t *testing.T) {
	upstream := newFakeShopCart()
	r := newCartRouter(t, upstream)

	code, body := doJSON(t, r, http.MethodPut, "/api/v1/cart/items/3", `{"quantity": 11}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Quantity must be between 1 and 10", body["error"])
	assert.Equal(t, 0, upstream.calls)
}

func TestUpdateThenRefreshShowsServerState(t *testing.T) {
	upstream := newFakeShopCart()
	r := newCartRouter(t, upstream)

	code, _ := doJSON(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id": 3, "quantity": 2}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = doJSON(t, r, http.MethodPut, "/api/v1/cart/items/3", `{"quantity": 7}`)
	require.Equal(t, http.StatusOK, code)

	code, body := doJSON(t, r, http.MethodGet, "/api/v1/cart?refresh=true", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["total_quantity"])
}

func TestRemoveAndClearCart(t *testing.T) {
	upstream := newFakeShopCart()
	r := newCartRouter(t, upstream)

	code, _ := doJSON(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id": 3, "quantity": 2}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = doJSON(t, r, http.MethodPost, "/api/v1/cart/items", `{"product_id": 4, "quantity": 1}`)
	require.Equal(t, http.StatusOK, code)

	code, body := doJSON(t, r, http.MethodDelete, "/api/v1/cart/items/4", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total_quantity"])

	code, body = doJSON(t, r, http.MethodDelete, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, code)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total_quantity"])
}

func TestAddToCartRequiresProductID(t *testing.T) {
	upstream := newFakeShopCart()
	r := newCartRouter(t, upstream)

	code, body := doJSON(t, r, http.MethodPost, "/api/v1/cart/items", `{"quantity": 2}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request data", body["error"])
}
