package handler

import (
	"chatup/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ServeWebSocket upgrades the request and binds the connection to a session.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	anonID := h.Tokens.Resolve(presentedToken(c))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, anonID, h.logger)
	h.Hub.Connect(client, anonID)
	client.Run()
}
