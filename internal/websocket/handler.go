package websocket

import (
	"datasense-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection under clientID and blocks until it closes.
func ServeWs(registry *Registry, conn *websocket.Conn, clientID string, log logger.ILogger) {
	client := NewClient(conn, clientID, log)
	registry.Register(clientID, client)
	defer registry.UnregisterChannel(clientID, client)

	client.Run()
}
