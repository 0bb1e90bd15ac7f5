package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/prismgate/console/internal/auth"
	"github.com/prismgate/console/internal/config"
	"github.com/rs/zerolog/log"
)

// Service talks to the Prism gateway's auth endpoints: credential login
// and refresh-token exchange.
type Service struct {
	mu      sync.RWMutex
	client  *http.Client
	baseURL string
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func NewService() *Service {
	return &Service{
		mu:      sync.RWMutex{},
		client:  &http.Client{},
		baseURL: config.GetGatewayBaseURL(),
	}
}

// SetBaseURL sets the gateway base URL for the service
func (s *Service) SetBaseURL(url string) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = url
	return s
}

// Login exchanges user credentials for a token pair
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	return s.postToken(ctx, config.GetAuthLoginPath(), loginRequest{Email: email, Password: password})
}

// RefreshTokens exchanges a refresh token for a new access token.
// Implements auth.TokenRefresher.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (auth.RefreshResult, error) {
	resp, err := s.postToken(ctx, config.GetAuthRefreshPath(), refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return auth.RefreshResult{}, err
	}

	return auth.RefreshResult{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

func (s *Service) postToken(ctx context.Context, path string, body interface{}) (*TokenResponse, error) {
	s.mu.RLock()
	baseURL := s.baseURL
	s.mu.RUnlock()

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr == nil {
			log.Debug().Int("status", resp.StatusCode).Str("path", path).Str("body", string(respBody)).Msg("Gateway auth request rejected")
		}
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &tokenResp, nil
}
