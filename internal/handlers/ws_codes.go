// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes. These give more specific reasons for closure
// than the standard codes.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // Client offered subprotocols but not ours.
	ServerShutdownError websocket.StatusCode = 3001 // Server is going down; reconnect later.
	SlowConsumerError   websocket.StatusCode = 3002 // Outbound queue overflowed repeatedly.
)
