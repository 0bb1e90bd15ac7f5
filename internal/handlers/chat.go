package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/prismgate/console/internal/services/chat"
	"github.com/prismgate/console/pkg/httpext"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// HandleChatCompletion forwards one chat completion to the gateway
func HandleChatCompletion(chatService *chat.Service, w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpext.JsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		httpext.JsonError(w, "Messages are required", http.StatusBadRequest)
		return
	}

	resp, err := chatService.CreateCompletion(r.Context(), req)
	if err != nil {
		log.Warn().Err(err).Msg("Chat completion forward failed")
		httpext.JsonError(w, "Chat completion failed", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
