package config

import (
	"sync"
)

var (
	gatewayMu sync.RWMutex

	// GatewayBaseURL is the REST base URL of the Prism gateway
	GatewayBaseURL = GetEnvOrDefault("GATEWAY_BASE_URL", "http://localhost:9090")

	// GatewaySocketURL is the websocket base URL of the Prism gateway
	GatewaySocketURL = GetEnvOrDefault("GATEWAY_SOCKET_URL", "ws://localhost:9090")
)

// GetGatewayBaseURL returns the gateway REST base URL in a thread-safe manner
func GetGatewayBaseURL() string {
	gatewayMu.RLock()
	defer gatewayMu.RUnlock()
	return GatewayBaseURL
}

// SetGatewayBaseURL temporarily changes the gateway base URL and returns a function to restore it
// This is primarily used for testing
func SetGatewayBaseURL(url string) func() {
	gatewayMu.Lock()
	previous := GatewayBaseURL
	GatewayBaseURL = url
	gatewayMu.Unlock()

	return func() {
		gatewayMu.Lock()
		GatewayBaseURL = previous
		gatewayMu.Unlock()
	}
}

// GetGatewaySocketURL returns the gateway websocket base URL in a thread-safe manner
func GetGatewaySocketURL() string {
	gatewayMu.RLock()
	defer gatewayMu.RUnlock()
	return GatewaySocketURL
}

// SetGatewaySocketURL temporarily changes the gateway websocket URL and returns a function to restore it
// This is primarily used for testing
func SetGatewaySocketURL(url string) func() {
	gatewayMu.Lock()
	previous := GatewaySocketURL
	GatewaySocketURL = url
	gatewayMu.Unlock()

	return func() {
		gatewayMu.Lock()
		GatewaySocketURL = previous
		gatewayMu.Unlock()
	}
}

// GetPublicPrefix returns the path prefix the console exposes to browsers
func GetPublicPrefix() string {
	return GetEnvOrDefault("GATEWAY_PUBLIC_PREFIX", "/api")
}

// GetPrivatePrefix returns the path prefix the gateway serves behind the console
func GetPrivatePrefix() string {
	return GetEnvOrDefault("GATEWAY_PRIVATE_PREFIX", "/v1")
}

// GetAuthLoginPath returns the gateway path that exchanges credentials for tokens
func GetAuthLoginPath() string {
	return GetEnvOrDefault("GATEWAY_LOGIN_PATH", "/v1/auth/login")
}

// GetAuthRefreshPath returns the gateway path that exchanges a refresh token for a new access token
func GetAuthRefreshPath() string {
	return GetEnvOrDefault("GATEWAY_REFRESH_PATH", "/v1/auth/refresh")
}
