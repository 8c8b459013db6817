// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/sketch/internal/middleware"
)

// Subprotocol is the optional websocket subprotocol clients may request.
const Subprotocol = "sketch"

const (
	readLimit    = 64 << 10
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
	pingTimeout  = 15 * time.Second
)

// ServeWS is the websocket endpoint.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{Subprotocol},
		OriginPatterns: g.cfg.AllowedOrigins,
	})
	if err != nil {
		g.log.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	// Clients that don't ask for a subprotocol are fine; clients that ask for others aren't.
	if len(r.Header.Values("Sec-WebSocket-Protocol")) > 0 && c.Subprotocol() != Subprotocol {
		c.Close(BadSubprotocolError, "client must speak the sketch subprotocol")
		return
	}
	c.SetReadLimit(readLimit)

	s := g.NewSession()
	if !g.track(s) {
		c.Close(ServerShutdownError, "server shutting down")
		return
	}
	defer g.untrack(s)
	middleware.LogWebSocketConnect(g.log, s.ID, r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go g.writePump(ctx, c, s)

	// Closing the read context would drop the TCP connection without a close
	// frame, so the session is ended by closing the socket with its status.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		select {
		case <-s.Done():
			c.Close(s.closeStatus())
		case <-ctx.Done():
		}
	}()

	err = g.readPump(ctx, c, s)

	roomCode := ""
	if room := s.Room(); room != nil {
		roomCode = room.Code
	}
	g.Disconnect(s)
	<-closed
	middleware.LogWebSocketDisconnect(g.log, s.ID, roomCode, err)
}

// readPump reads frames until the socket closes. Normal closures, and reads
// cut short because the session was ended server side, return nil.
func (g *Gateway) readPump(ctx context.Context, c *websocket.Conn, s *Session) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			select {
			case <-s.Done():
				return nil
			default:
			}
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			s.log.Warnf("ignoring non-text message type %d", typ)
			continue
		}
		g.HandleMessage(s, msg)
	}
}

// writePump drains the session queue onto the socket and keeps it alive with pings.
func (g *Gateway) writePump(ctx context.Context, c *websocket.Conn, s *Session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Done():
			return
		case ev := <-s.Outbound():
			data, err := json.Marshal(ev)
			if err != nil {
				s.log.WithField("type", ev.Type).Warnf("failed to marshal outgoing event: %v", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.log.Warnf("failed to write to websocket: %v", err)
				s.Close()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				s.log.Warnf("failed to ping: %v, assuming disconnect", err)
				s.Close()
				return
			}
		}
	}
}
