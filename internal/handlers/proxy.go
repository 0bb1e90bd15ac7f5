package handlers

import (
	"net/http"

	"github.com/prismgate/console/internal/services/proxy"
)

// HandleProxy forwards a REST request to the gateway
func HandleProxy(proxyService *proxy.Service, w http.ResponseWriter, r *http.Request) {
	proxyService.Forward(w, r)
}

// HandleSocket starts a websocket passthrough to the gateway
func HandleSocket(proxyService *proxy.Service, w http.ResponseWriter, r *http.Request) {
	proxyService.ProxySocket(w, r)
}
