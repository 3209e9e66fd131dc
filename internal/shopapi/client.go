// internal/shopapi/client.go
package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
	"github.com/your-org/storefront-gateway/internal/domain/order"
	"github.com/your-org/storefront-gateway/internal/domain/payment"
)

const maxResponseBytes = 1 << 20 // 1MB

// User identifies the authenticated shop user
type User struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Client talks to the upstream shop API. A zero-token client serves the
// unauthenticated endpoints; WithToken derives a per-session client.
type Client struct {
	baseURL    string
	userAgent  string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// Compile-time interface checks against the domain ports
var (
	_ cart.API            = (*Client)(nil)
	_ checkout.ProfileAPI = (*Client)(nil)
	_ checkout.OrderAPI   = (*Client)(nil)
	_ order.API           = (*Client)(nil)
	_ payment.API         = (*Client)(nil)
)

// NewClient creates a shop API client from the upstream configuration
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:   cfg.Upstream.BaseURL,
		userAgent: cfg.Upstream.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Upstream.Timeout,
		},
		logger: logger,
	}
}

// WithToken returns a copy of the client that authenticates as the given
// upstream token
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Login exchanges credentials for an upstream token and the user identity
func (c *Client) Login(ctx context.Context, email, password string) (string, *User, error) {
	var resp struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login/", body, &resp); err != nil {
		return "", nil, fmt.Errorf("login failed: %w", err)
	}
	return resp.Token, &resp.User, nil
}

// Logout invalidates the upstream token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout/", nil, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// FetchProfile returns the authenticated user's profile for prefill
func (c *Client) FetchProfile(ctx context.Context) (*checkout.Profile, error) {
	var profile checkout.Profile
	if err := c.do(ctx, http.MethodGet, "/auth/profile/", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchCart returns the server's full cart snapshot
func (c *Client) FetchCart(ctx context.Context) (*cart.Snapshot, error) {
	var payload cartPayload
	if err := c.do(ctx, http.MethodGet, "/cart/", nil, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// AddItem adds a product to the server cart and returns the new snapshot
func (c *Client) AddItem(ctx context.Context, productID uint, quantity int, override bool) (*cart.Snapshot, error) {
	body := map[string]interface{}{
		"product_id":        productID,
		"quantity":          quantity,
		"override_quantity": override,
	}
	var payload cartPayload
	if err := c.do(ctx, http.MethodPost, "/cart/add_item/", body, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// UpdateQuantity sets a line's quantity and returns the new snapshot
func (c *Client) UpdateQuantity(ctx context.Context, productID uint, quantity int) (*cart.Snapshot, error) {
	body := map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	}
	var payload cartPayload
	if err := c.do(ctx, http.MethodPost, "/cart/update_quantity/", body, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// RemoveItem removes a line and returns the new snapshot
func (c *Client) RemoveItem(ctx context.Context, productID uint) (*cart.Snapshot, error) {
	body := map[string]interface{}{"product_id": productID}
	var payload cartPayload
	if err := c.do(ctx, http.MethodPost, "/cart/remove_item/", body, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// ClearCart empties the server cart and returns the empty snapshot
func (c *Client) ClearCart(ctx context.Context) (*cart.Snapshot, error) {
	var payload cartPayload
	if err := c.do(ctx, http.MethodPost, "/cart/clear/", nil, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

// CreateOrder creates an order from the server's own cart state. Only the
// customer fields travel; line items and prices are locked server-side.
func (c *Client) CreateOrder(ctx context.Context, fields checkout.Fields) (*order.Order, error) {
	var payload orderPayload
	if err := c.do(ctx, http.MethodPost, "/orders/", fields, &payload); err != nil {
		return nil, err
	}
	o := payload.toDomain()
	return &o, nil
}

// GetOrder fetches one of the user's orders
func (c *Client) GetOrder(ctx context.Context, orderID uint) (*order.Order, error) {
	var payload orderPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/", orderID), nil, &payload); err != nil {
		return nil, err
	}
	o := payload.toDomain()
	return &o, nil
}

// ListOrders fetches all of the user's orders, newest first
func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	var payloads []orderPayload
	if err := c.do(ctx, http.MethodGet, "/orders/", nil, &payloads); err != nil {
		return nil, err
	}
	orders := make([]order.Order, 0, len(payloads))
	for i := range payloads {
		orders = append(orders, payloads[i].toDomain())
	}
	return orders, nil
}

// ConfirmOrderPaid asks the upstream to mark the order paid. The upstream
// treats it as a no-op for already-paid orders, so repeat calls are safe.
func (c *Client) ConfirmOrderPaid(ctx context.Context, orderID uint) (*order.Order, error) {
	var payload orderPayload
	path := fmt.Sprintf("/payment/orders/%d/mark_paid/", orderID)
	if err := c.do(ctx, http.MethodPost, path, nil, &payload); err != nil {
		return nil, err
	}
	o := payload.toDomain()
	return &o, nil
}

// CreatePaymentSession creates an external payment session for the order
func (c *Client) CreatePaymentSession(ctx context.Context, orderID uint) (*payment.CheckoutSession, error) {
	var sess payment.CheckoutSession
	path := fmt.Sprintf("/payment/orders/%d/create_checkout_session/", orderID)
	if err := c.do(ctx, http.MethodPost, path, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// ListProducts proxies the catalog listing untouched
func (c *Client) ListProducts(ctx context.Context, query url.Values) (json.RawMessage, error) {
	path := "/products/"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// GetProduct proxies one catalog entry untouched
func (c *Client) GetProduct(ctx context.Context, slug string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(slug)+"/", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Health checks upstream reachability for the readiness probe
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/products/", nil, nil); err != nil {
		return fmt.Errorf("upstream not reachable: %w", err)
	}
	return nil
}

// Wire payloads. The upstream reports payment as a boolean and prices as
// decimal strings; mapping to domain types happens here and nowhere else.

type cartLinePayload struct {
	ProductID       uint             `json:"product_id"`
	ProductName     string           `json:"product_name"`
	ProductSlug     string           `json:"product_slug"`
	Quantity        int              `json:"quantity"`
	Price           decimal.Decimal  `json:"price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price"`
	TotalPrice      decimal.Decimal  `json:"total_price"`
}

type cartPayload struct {
	Items         []cartLinePayload `json:"items"`
	TotalPrice    decimal.Decimal   `json:"total_price"`
	TotalQuantity int               `json:"total_quantity"`
}

func (p *cartPayload) toDomain() *cart.Snapshot {
	snap := &cart.Snapshot{
		TotalPrice:    p.TotalPrice,
		TotalQuantity: p.TotalQuantity,
	}
	for _, item := range p.Items {
		snap.Lines = append(snap.Lines, cart.Line{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			ProductSlug:     item.ProductSlug,
			Quantity:        item.Quantity,
			UnitPrice:       item.Price,
			DiscountedPrice: item.DiscountedPrice,
			LineTotal:       item.TotalPrice,
		})
	}
	return snap
}

type orderItemPayload struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Cost        decimal.Decimal `json:"cost"`
}

type orderPayload struct {
	ID         uint               `json:"id"`
	Paid       bool               `json:"paid"`
	CreatedAt  time.Time          `json:"created"`
	FirstName  string             `json:"first_name"`
	LastName   string             `json:"last_name"`
	Email      string             `json:"email"`
	Address    string             `json:"address"`
	PostalCode string             `json:"postal_code"`
	City       string             `json:"city"`
	Items      []orderItemPayload `json:"items"`
	TotalCost  decimal.Decimal    `json:"total_cost"`
}

func (p *orderPayload) toDomain() order.Order {
	status := order.StatusUnpaid
	if p.Paid {
		status = order.StatusPaid
	}
	o := order.Order{
		ID:        p.ID,
		Status:    status,
		CreatedAt: p.CreatedAt,
		Customer: order.Customer{
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			Email:      p.Email,
			Address:    p.Address,
			PostalCode: p.PostalCode,
			City:       p.City,
		},
		TotalCost: p.TotalCost,
	}
	for _, item := range p.Items {
		o.Items = append(o.Items, order.Item{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSlug: item.ProductSlug,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
			LineTotal:   item.Cost,
		})
	}
	return o
}

// do performs one upstream request and decodes the response into out.
// Error bodies are normalized into APIError before they leave this package.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shop api request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := normalizeError(resp.StatusCode, data)
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("Shop API error response")
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
