package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Renewal timing. Package-level so tests can shrink the windows.
var (
	// refreshSafetyMargin is how much validity GetAccessToken demands
	// before handing out the stored token without a renewal round trip
	refreshSafetyMargin = 10 * time.Second

	// refreshLeadTime is how long before expiry the background timer fires
	refreshLeadTime = 60 * time.Second

	// minRefreshDelay is the floor for the background timer
	minRefreshDelay = 5 * time.Second

	// refreshCallTimeout bounds the timer-driven renewal round trip
	refreshCallTimeout = 15 * time.Second
)

var errNoRefreshToken = errors.New("no usable refresh token")

// RefreshResult is what a renewal round trip yields. RefreshToken and
// ExpiresIn are zero when the gateway omits them.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// TokenRefresher exchanges a refresh token for a new access token
type TokenRefresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (RefreshResult, error)
}

// Manager is the single owner of the persisted token record. It renews
// the access token proactively via a background timer, renews on demand
// when a caller asks for a near-expiry token, and emits lifecycle events
// on every transition.
//
// One mutex guards the record and renewal, so concurrent callers that
// observe a stale token share a single renewal round trip instead of
// racing independent ones.
type Manager struct {
	mu        sync.Mutex
	store     RecordStore
	refresher TokenRefresher
	bus       eventBus
	timer     *time.Timer
	now       func() time.Time
}

// NewManager builds a manager around a record store and a refresher.
// Call Close at shutdown to release the renewal timer.
func NewManager(store RecordStore, refresher TokenRefresher) *Manager {
	return &Manager{
		store:     store,
		refresher: refresher,
		now:       time.Now,
	}
}

// Subscribe registers a lifecycle listener and returns its unsubscribe
// func. Events arrive synchronously in registration order.
func (m *Manager) Subscribe(fn Listener) func() {
	return m.bus.subscribe(fn)
}

// SetTokens stores a fresh record, arms the renewal timer and emits
// tokensUpdated. When expiresIn is zero or negative the default access
// lifetime applies.
func (m *Manager) SetTokens(ctx context.Context, accessToken, refreshToken string, expiresIn int) error {
	record := m.newRecord(accessToken, refreshToken, expiresIn)

	m.mu.Lock()
	if err := m.store.Set(ctx, record); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to persist token record: %w", err)
	}
	m.scheduleRefreshLocked(record)
	m.mu.Unlock()

	m.bus.emit(Event{Kind: EventTokensUpdated})
	return nil
}

// ClearTokens cancels any pending renewal and erases the record. It is
// idempotent: with no record present it still emits tokensCleared.
func (m *Manager) ClearTokens(ctx context.Context) error {
	m.mu.Lock()
	err := m.clearLocked(ctx)
	m.mu.Unlock()

	m.bus.emit(Event{Kind: EventTokensCleared})
	return err
}

// Logout clears the record and emits the distinct logout event so the
// UI can tell a user-driven exit from generic clearing.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.ClearTokens(ctx)
	m.bus.emit(Event{Kind: EventLogout})
	return err
}

// IsAuthenticated reports whether a record exists with an unexpired
// access token. No side effects.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	m.mu.Lock()
	record, err := m.store.Get(ctx)
	m.mu.Unlock()

	if err != nil || record == nil {
		return false
	}
	return record.AccessExpiry().After(m.now())
}

// GetAccessToken returns a usable access token, renewing first when
// fewer than refreshSafetyMargin of validity remain. On renewal failure
// it emits sessionExpired("expired"), clears the record and returns the
// empty string. It never returns an error to the caller.
func (m *Manager) GetAccessToken(ctx context.Context) string {
	m.mu.Lock()

	record, err := m.store.Get(ctx)
	if err != nil || record == nil {
		m.mu.Unlock()
		return ""
	}

	if record.AccessExpiry().After(m.now().Add(refreshSafetyMargin)) {
		token := record.AccessToken
		m.mu.Unlock()
		return token
	}

	fresh, err := m.refreshLocked(ctx, record)
	if err != nil {
		log.Warn().Err(err).Msg("On-demand token renewal failed, ending session")
		clearErr := m.clearLocked(ctx)
		m.mu.Unlock()

		if clearErr != nil {
			log.Error().Err(clearErr).Msg("Failed to clear token record after renewal failure")
		}
		m.bus.emit(Event{Kind: EventSessionExpired, Reason: ReasonExpired})
		m.bus.emit(Event{Kind: EventTokensCleared})
		return ""
	}

	token := fresh.AccessToken
	m.mu.Unlock()

	m.bus.emit(Event{Kind: EventTokensUpdated})
	return token
}

// Close cancels the pending renewal timer. The manager must not be used
// afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) newRecord(accessToken, refreshToken string, expiresIn int) *TokenRecord {
	now := m.now()

	accessLifetime := DefaultAccessTokenLifetime
	if expiresIn > 0 {
		accessLifetime = time.Duration(expiresIn) * time.Second
	}

	return &TokenRecord{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  now.Add(accessLifetime).UnixMilli(),
		RefreshExpiresAt: now.Add(DefaultRefreshTokenLifetime).UnixMilli(),
	}
}

// refreshLocked performs one renewal round trip and persists the
// resulting record. The caller holds m.mu.
func (m *Manager) refreshLocked(ctx context.Context, record *TokenRecord) (*TokenRecord, error) {
	if record.RefreshToken == "" || !record.RefreshExpiry().After(m.now()) {
		return nil, errNoRefreshToken
	}

	result, err := m.refresher.RefreshTokens(ctx, record.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh failed: %w", err)
	}

	refreshToken := result.RefreshToken
	if refreshToken == "" {
		// Gateway kept the refresh token, reuse the prior one
		refreshToken = record.RefreshToken
	}

	fresh := m.newRecord(result.AccessToken, refreshToken, result.ExpiresIn)
	if err := m.store.Set(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to persist renewed record: %w", err)
	}

	m.scheduleRefreshLocked(fresh)
	return fresh, nil
}

// scheduleRefreshLocked arms the one-shot proactive renewal timer,
// cancelling any previous one. At most one timer is pending per manager.
// The caller holds m.mu.
func (m *Manager) scheduleRefreshLocked(record *TokenRecord) {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	delay := record.AccessExpiry().Sub(m.now()) - refreshLeadTime
	if delay < minRefreshDelay {
		delay = minRefreshDelay
	}

	log.Debug().Dur("delay", delay).Msg("Scheduled proactive token renewal")
	m.timer = time.AfterFunc(delay, m.refreshOnTimer)
}

// refreshOnTimer keeps an idle session alive. It runs independently of
// any in-flight request.
func (m *Manager) refreshOnTimer() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshCallTimeout)
	defer cancel()

	m.mu.Lock()

	record, err := m.store.Get(ctx)
	if err != nil || record == nil {
		m.mu.Unlock()
		return
	}

	if _, err := m.refreshLocked(ctx, record); err != nil {
		log.Warn().Err(err).Msg("Background token renewal failed, ending session")
		clearErr := m.clearLocked(ctx)
		m.mu.Unlock()

		if clearErr != nil {
			log.Error().Err(clearErr).Msg("Failed to clear token record after renewal failure")
		}
		m.bus.emit(Event{Kind: EventSessionExpired, Reason: ReasonRefreshFailed})
		m.bus.emit(Event{Kind: EventTokensCleared})
		return
	}

	m.mu.Unlock()
	m.bus.emit(Event{Kind: EventTokensUpdated})
}

// clearLocked stops the timer and erases the record without emitting.
// The caller holds m.mu and emits after unlocking.
func (m *Manager) clearLocked(ctx context.Context) error {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	return m.store.Delete(ctx)
}
