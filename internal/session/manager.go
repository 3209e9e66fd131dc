// internal/session/manager.go
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
	"github.com/your-org/storefront-gateway/internal/domain/order"
	"github.com/your-org/storefront-gateway/internal/domain/payment"
	"github.com/your-org/storefront-gateway/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-gateway/internal/pkg/auth"
	"github.com/your-org/storefront-gateway/internal/shopapi"
)

// ErrSessionNotFound is returned when a cookie references a session that
// no longer exists
var ErrSessionNotFound = errors.New("session not found")

// State is one browser session's domain state: a token-scoped upstream
// client plus the cart cache, checkout coordinator, order views and
// payment reconciler built on top of it.
type State struct {
	ID        string
	User      shopapi.User
	API       *shopapi.Client
	Cart      *cart.Cache
	Checkout  *checkout.Coordinator
	Orders    *order.ViewService
	Payments  *payment.Reconciler
	CreatedAt time.Time
}

// record is the durable part of a session, persisted in Redis so a
// gateway restart does not sign users out
type record struct {
	SessionID string       `json:"session_id"`
	Token     string       `json:"token"`
	User      shopapi.User `json:"user"`
	CreatedAt time.Time    `json:"created_at"`
}

// Manager owns the session registry: login builds sessions, each request
// resumes one, logout disposes it.
type Manager struct {
	mu     sync.Mutex
	states map[string]*State

	api    *shopapi.Client
	store  *redis.Client
	jwt    *auth.JWTManager
	config *config.Config
	logger *logrus.Logger
}

// NewManager creates a session manager backed by the given Redis store
func NewManager(api *shopapi.Client, store *redis.Client, cfg *config.Config, logger *logrus.Logger) *Manager {
	return &Manager{
		states: make(map[string]*State),
		api:    api,
		store:  store,
		jwt:    auth.NewJWTManager(cfg),
		config: cfg,
		logger: logger,
	}
}

// Login authenticates against the upstream, builds the session state and
// returns it with the signed cookie token
func (m *Manager) Login(ctx context.Context, email, password string) (*State, string, error) {
	token, user, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	rec := record{
		SessionID: uuid.New().String(),
		Token:     token,
		User:      *user,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.SetJSON(ctx, sessionKey(rec.SessionID), rec, m.config.Session.TTL); err != nil {
		return nil, "", fmt.Errorf("failed to persist session: %w", err)
	}

	state := m.build(rec)
	// An initial cart load failure is recoverable on the next read
	if err := state.Cart.Load(ctx); err != nil {
		m.logger.WithField("session_id", state.ID).WithError(err).Warn("Initial cart load failed")
	}

	m.mu.Lock()
	m.states[state.ID] = state
	m.mu.Unlock()

	cookieToken, err := m.jwt.GenerateSessionToken(state.ID, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"session_id": state.ID,
		"user_id":    user.ID,
	}).Info("Session created")
	return state, cookieToken, nil
}

// Resume returns the session a cookie token refers to, rebuilding it from
// Redis after a restart
func (m *Manager) Resume(ctx context.Context, cookieToken string) (*State, error) {
	claims, err := m.jwt.ValidateSessionToken(cookieToken)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	m.mu.Lock()
	if state, ok := m.states[claims.SessionID]; ok {
		m.mu.Unlock()
		return state, nil
	}
	m.mu.Unlock()

	var rec record
	if err := m.store.GetJSON(ctx, sessionKey(claims.SessionID), &rec); err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session record: %w", err)
	}

	state := m.build(rec)
	if err := state.Cart.Load(ctx); err != nil {
		m.logger.WithField("session_id", state.ID).WithError(err).Warn("Cart load on session resume failed")
	}

	m.mu.Lock()
	// Another request may have rebuilt it concurrently; keep the first
	if existing, ok := m.states[state.ID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.states[state.ID] = state
	m.mu.Unlock()

	m.logger.WithField("session_id", state.ID).Debug("Session rebuilt from store")
	return state, nil
}

// Dispose ends a session: best-effort upstream logout, local state reset,
// durable record deleted
func (m *Manager) Dispose(ctx context.Context, sessionID string) {
	m.mu.Lock()
	state, ok := m.states[sessionID]
	delete(m.states, sessionID)
	m.mu.Unlock()

	if ok {
		if err := state.API.Logout(ctx); err != nil {
			m.logger.WithField("session_id", sessionID).WithError(err).Warn("Upstream logout failed")
		}
		state.Cart.Reset()
		state.Checkout.Reset()
		state.Orders.Reset()
	}

	if err := m.store.Del(ctx, sessionKey(sessionID)); err != nil {
		m.logger.WithField("session_id", sessionID).WithError(err).Warn("Failed to delete session record")
	}

	m.logger.WithField("session_id", sessionID).Info("Session disposed")
}

// build wires one session's domain state around a token-scoped client
func (m *Manager) build(rec record) *State {
	api := m.api.WithToken(rec.Token)
	cartCache := cart.NewCache(api, m.logger)
	orderViews := order.NewViewService(api, m.logger)

	return &State{
		ID:        rec.SessionID,
		User:      rec.User,
		API:       api,
		Cart:      cartCache,
		Checkout:  checkout.NewCoordinator(api, api, cartCache, m.logger),
		Orders:    orderViews,
		Payments:  payment.NewReconciler(api, orderViews, m.logger),
		CreatedAt: rec.CreatedAt,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
