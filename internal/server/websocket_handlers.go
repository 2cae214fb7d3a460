package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler returns a websocket handler that registers connections
// with the notification hub. The hub forwards realtime notification pushes
// published on the user's Redis channel.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		handleVal := conn.Locals("handle")
		handle, ok := handleVal.(string)
		if !ok || handle == "" {
			log.Printf("WebSocket: unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		if s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"realtime delivery unavailable"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(handle, conn)
		if err != nil {
			log.Printf("WebSocket: failed to register %s: %v", handle, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
