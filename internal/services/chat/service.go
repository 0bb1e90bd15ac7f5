package chat

import (
	"context"
	"fmt"

	"github.com/prismgate/console/internal/config"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// TokenSource hands out the current access token
type TokenSource interface {
	GetAccessToken(ctx context.Context) string
}

// Service forwards chat completion requests to the gateway's
// OpenAI-compatible endpoint with the session's bearer credential.
type Service struct {
	tokens TokenSource
}

func NewService(tokens TokenSource) *Service {
	return &Service{tokens: tokens}
}

// CreateCompletion forwards one completion request. A fresh client is
// built per call because the bearer credential rotates underneath us.
func (s *Service) CreateCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	token := s.tokens.GetAccessToken(ctx)
	if token == "" {
		return openai.ChatCompletionResponse{}, fmt.Errorf("no active session")
	}

	cfg := openai.DefaultConfig(token)
	cfg.BaseURL = config.GetGatewayBaseURL() + config.GetPrivatePrefix()
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("model", req.Model).Msg("Gateway chat completion failed")
		return openai.ChatCompletionResponse{}, err
	}

	return resp, nil
}
