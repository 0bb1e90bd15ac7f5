package services

import (
	"github.com/prismgate/console/internal/auth"
	"github.com/prismgate/console/internal/infrastructure/gateway"
	"github.com/prismgate/console/internal/infrastructure/redis"
	"github.com/prismgate/console/internal/services/apiclient"
	"github.com/prismgate/console/internal/services/chat"
	"github.com/prismgate/console/internal/services/proxy"
	"github.com/prismgate/console/internal/services/session"
	"github.com/rs/zerolog/log"
)

// Services owns every long-lived component of the console. Construct
// once at startup, Close at shutdown.
type Services struct {
	redisService   *redis.Service
	gatewayService *gateway.Service
	tokenManager   *auth.Manager
	apiClient      *apiclient.Client
	chatService    *chat.Service
	proxyService   *proxy.Service
	sessionService *session.Service
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	log.Info().Msg("Initializing core services")

	// Redis is optional, everything falls back to process memory
	redisService := redis.NewService()

	gatewayService := gateway.NewService()

	tokenStore := auth.NewRecordStore(redisService)
	tokenManager := auth.NewManager(tokenStore, gatewayService)
	log.Info().Msg("Initializing token lifecycle manager")

	apiClient := apiclient.NewClient(tokenManager)
	chatService := chat.NewService(tokenManager)
	proxyService := proxy.NewService(tokenManager)
	sessionService := session.NewService(redisService)
	log.Info().Msg("Initializing request dispatch services")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		redisService:   redisService,
		gatewayService: gatewayService,
		tokenManager:   tokenManager,
		apiClient:      apiClient,
		chatService:    chatService,
		proxyService:   proxyService,
		sessionService: sessionService,
	}, nil
}

// Close releases the renewal timer and the Redis connection
func (s *Services) Close() {
	s.tokenManager.Close()

	if s.redisService != nil {
		if err := s.redisService.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
}

// GetTokenManager returns the token lifecycle manager
func (s *Services) GetTokenManager() *auth.Manager {
	return s.tokenManager
}

// GetGatewayService returns the gateway auth client
func (s *Services) GetGatewayService() *gateway.Service {
	return s.gatewayService
}

// GetAPIClient returns the authenticated request client
func (s *Services) GetAPIClient() *apiclient.Client {
	return s.apiClient
}

// GetChatService returns the chat forwarding service
func (s *Services) GetChatService() *chat.Service {
	return s.chatService
}

// GetProxyService returns the gateway proxy forwarder
func (s *Services) GetProxyService() *proxy.Service {
	return s.proxyService
}

// GetSessionService returns the session cookie service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}
