package proxy

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prismgate/console/internal/config"
	"github.com/prismgate/console/pkg/httpext"
	"github.com/rs/zerolog/log"
)

// TokenSource hands out the current access token
type TokenSource interface {
	GetAccessToken(ctx context.Context) string
}

// Service forwards browser requests to the gateway: the public path
// prefix is rewritten to the gateway's private prefix, the bearer
// credential is injected, and the gateway response is streamed back
// unmodified.
type Service struct {
	client        *http.Client
	tokens        TokenSource
	upgrader      websocket.Upgrader
	publicPrefix  string
	privatePrefix string
}

// Connection-scoped headers that must not be copied through
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

func NewService(tokens TokenSource) *Service {
	return &Service{
		client:        &http.Client{},
		tokens:        tokens,
		upgrader:      websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		publicPrefix:  config.GetPublicPrefix(),
		privatePrefix: config.GetPrivatePrefix(),
	}
}

func (s *Service) rewritePath(path string) string {
	return s.privatePrefix + strings.TrimPrefix(path, s.publicPrefix)
}

// Forward proxies one REST request to the gateway
func (s *Service) Forward(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := s.tokens.GetAccessToken(ctx)
	if token == "" {
		httpext.JsonError(w, "Session expired", http.StatusUnauthorized)
		return
	}

	target := config.GetGatewayBaseURL() + s.rewritePath(r.URL.Path)
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
	if err != nil {
		httpext.JsonError(w, "Bad gateway request", http.StatusBadGateway)
		return
	}

	copyHeaders(req.Header, r.Header)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		reqErr := httpext.ClassifyTransportError(err)
		log.Warn().Err(err).Str("target", target).Msg("Gateway forward failed")

		status := http.StatusBadGateway
		if reqErr.Kind == httpext.KindTimeout {
			status = http.StatusGatewayTimeout
		}
		httpext.JsonError(w, "Gateway unavailable", status)
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Debug().Err(err).Str("target", target).Msg("Gateway response copy interrupted")
	}
}

// ProxySocket upgrades the browser connection and pumps frames between
// it and the gateway until either side closes.
func (s *Service) ProxySocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := s.tokens.GetAccessToken(ctx)
	if token == "" {
		httpext.JsonError(w, "Session expired", http.StatusUnauthorized)
		return
	}

	target := config.GetGatewaySocketURL() + s.rewritePath(r.URL.Path)
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	gatewayConn, _, err := websocket.DefaultDialer.Dial(target, header)
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("Failed to dial gateway socket")
		httpext.JsonError(w, "Gateway unavailable", http.StatusBadGateway)
		return
	}

	clientConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade browser connection")
		gatewayConn.Close()
		return
	}

	log.Info().
		Str("client_remote_addr", clientConn.RemoteAddr().String()).
		Str("target", target).
		Msg("Starting socket passthrough")

	done := make(chan struct{})
	var once sync.Once
	closeBoth := func() {
		once.Do(func() {
			close(done)
			gatewayConn.Close()
			clientConn.Close()
		})
	}

	go s.pumpMessages(clientConn, gatewayConn, "inbound", closeBoth)
	go s.pumpMessages(gatewayConn, clientConn, "outbound", closeBoth)

	<-done
}

func (s *Service) pumpMessages(srcConn, dstConn *websocket.Conn, direction string, closeBoth func()) {
	defer closeBoth()

	for {
		messageType, message, err := srcConn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Str("direction", direction).Msg("Socket passthrough closed normally")
			} else {
				log.Debug().Err(err).Str("direction", direction).Msg("Socket passthrough read failed")
			}
			return
		}

		if err := dstConn.WriteMessage(messageType, message); err != nil {
			log.Debug().Err(err).Str("direction", direction).Msg("Socket passthrough write failed")
			return
		}
	}
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if isHopHeader(key) {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func isHopHeader(key string) bool {
	for _, h := range hopHeaders {
		if strings.EqualFold(key, h) {
			return true
		}
	}
	return false
}
