package auth

import (
	"encoding/json"
	"fmt"
	"time"
)

// StorageKey is the store key the token record lives under
const StorageKey = "auth_tokens"

const (
	// DefaultAccessTokenLifetime applies when the gateway omits expires_in
	DefaultAccessTokenLifetime = 30 * time.Minute

	// DefaultRefreshTokenLifetime is advisory - the gateway never reports
	// a separate refresh lifetime
	DefaultRefreshTokenLifetime = 7 * 24 * time.Hour
)

// TokenRecord is the persisted credential pair. Expiry fields are unix
// milliseconds. The record is always replaced whole - partial updates
// would allow torn reads across restarts.
type TokenRecord struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresAt  int64  `json:"access_expires_at"`
	RefreshExpiresAt int64  `json:"refresh_expires_at"`
}

// AccessExpiry returns the access token expiry as a time.Time
func (r *TokenRecord) AccessExpiry() time.Time {
	return time.UnixMilli(r.AccessExpiresAt)
}

// RefreshExpiry returns the refresh token expiry as a time.Time
func (r *TokenRecord) RefreshExpiry() time.Time {
	return time.UnixMilli(r.RefreshExpiresAt)
}

// EncodeRecord serializes a record to the store's string format
func EncodeRecord(r *TokenRecord) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode token record: %w", err)
	}
	return string(data), nil
}

// DecodeRecord deserializes a record from the store's string format
func DecodeRecord(data string) (*TokenRecord, error) {
	var r TokenRecord
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("failed to decode token record: %w", err)
	}
	return &r, nil
}
