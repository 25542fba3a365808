package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs runs one stream connection until the peer disconnects.
func ServeWs(hub *Hub, c *websocket.Conn) {
	client := newClient(hub, c)
	client.Hub.add(client)

	go client.writePump()
	client.readPump()
}
