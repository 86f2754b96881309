package handler

import (
	"strings"

	"datasense-be/internal/pkg/logger"
	internalWS "datasense-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
)

const maxClientIDLength = 128

// ChannelHandler opens the per-client push channel used for premium progress events.
type ChannelHandler struct {
	registry *internalWS.Registry
	logger   logger.ILogger
}

func NewChannelHandler(registry *internalWS.Registry, log logger.ILogger) *ChannelHandler {
	return &ChannelHandler{
		registry: registry,
		logger:   log,
	}
}

func (h *ChannelHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/:clientId", h.Upgrade, websocket.New(h.ServeWs))
}

// Upgrade rejects non-websocket requests and invalid client ids before the handshake.
func (h *ChannelHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	// Params aliases the pooled request buffer; the id outlives the request.
	clientID := utils.CopyString(strings.TrimSpace(c.Params("clientId")))
	if clientID == "" || len(clientID) > maxClientIDLength {
		return fiber.NewError(fiber.StatusBadRequest, "invalid client id")
	}

	c.Locals("client_id", clientID)
	return c.Next()
}

func (h *ChannelHandler) ServeWs(c *websocket.Conn) {
	clientID, _ := c.Locals("client_id").(string)

	h.logger.Info("ChannelHandler", "Channel opened", map[string]interface{}{"client_id": clientID})
	internalWS.ServeWs(h.registry, c, clientID, h.logger)
	h.logger.Info("ChannelHandler", "Channel closed", map[string]interface{}{"client_id": clientID})
}
