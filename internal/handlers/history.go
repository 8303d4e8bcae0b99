package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-chat-service/internal/chat"
	"storefront-chat-service/internal/repositories"
)

// HistoryHandler exposes the retained message window over REST for the
// storefront admin UI. It reads the same bounded window the websocket
// backfill delivers.
type HistoryHandler struct {
	messages repositories.MessageRepository
	limit    int
}

// NewHistoryHandler builds a HistoryHandler.
func NewHistoryHandler(messages repositories.MessageRepository) *HistoryHandler {
	return &HistoryHandler{messages: messages, limit: chat.DefaultHistoryLimit}
}

// GetRoomMessages returns the room's retained messages, oldest first.
func (h *HistoryHandler) GetRoomMessages(c *gin.Context) {
	roomID := c.Param("room_id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	msgs, err := h.messages.RecentMessages(c.Request.Context(), roomID, h.limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
