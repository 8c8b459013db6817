// internal/handlers/gateway.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"

	"github.com/jason-s-yu/sketch/internal/config"
	"github.com/jason-s-yu/sketch/internal/game"
	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/sirupsen/logrus"
)

// Client event names.
const (
	msgJoinRoom           = "joinRoom"
	msgCreateRoom         = "createRoom"
	msgStartGame          = "startGame"
	msgSelectWord         = "selectWord"
	msgDrawLine           = "drawLine"
	msgErase              = "erase"
	msgUndo               = "undo"
	msgClearCanvas        = "clearCanvas"
	msgChatMessage        = "chatMessage"
	msgChangeWordCategory = "changeWordCategory"
	msgPlayAgain          = "playAgain"
	msgGetRecapData       = "getRecapData"
)

// Envelope is the inbound wire frame.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// roomCode accepts both "4821" and 4821 since browsers send whatever the input held.
type roomCode string

func (c *roomCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = roomCode(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("room id must be a string or number")
	}
	if _, err := strconv.Atoi(n.String()); err != nil {
		return errors.New("room id must be an integer")
	}
	*c = roomCode(n.String())
	return nil
}

type joinRoomPayload struct {
	RoomID     roomCode `json:"roomId"`
	PlayerName string   `json:"playerName"`
}

type createRoomPayload struct {
	PlayerName string                 `json:"playerName"`
	Settings   models.SettingsRequest `json:"settings"`
}

// Gateway routes decoded client events to rooms and maps errors to replies.
type Gateway struct {
	store *game.RoomStore
	cfg   config.Config
	log   logrus.FieldLogger

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closing  bool
	active   sync.WaitGroup
}

// NewGateway wires a gateway to store.
func NewGateway(store *game.RoomStore, cfg config.Config, logger logrus.FieldLogger) *Gateway {
	return &Gateway{store: store, cfg: cfg, log: logger, sessions: make(map[*Session]struct{})}
}

// track registers a live websocket session. It fails once Shutdown has begun.
func (g *Gateway) track(s *Session) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closing {
		return false
	}
	g.sessions[s] = struct{}{}
	g.active.Add(1)
	return true
}

func (g *Gateway) untrack(s *Session) {
	g.mu.Lock()
	delete(g.sessions, s)
	g.mu.Unlock()
	g.active.Done()
}

// Shutdown closes every live websocket with ServerShutdownError and waits for
// their handlers to finish or ctx to expire. http.Server.Shutdown does not
// track hijacked connections, so this has to run alongside it.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	g.closing = true
	live := make([]*Session, 0, len(g.sessions))
	for s := range g.sessions {
		live = append(live, s)
	}
	g.mu.Unlock()

	g.log.WithField("sessions", len(live)).Info("closing websocket sessions")
	for _, s := range live {
		s.shutdown()
	}

	finished := make(chan struct{})
	go func() {
		g.active.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewSession creates a session using the gateway's limits.
func (g *Gateway) NewSession() *Session {
	return NewSession(g.cfg, g.log)
}

// HandleMessage decodes one raw frame and dispatches it. A panic while handling
// is logged and swallowed so the connection and other rooms keep running.
func (g *Gateway) HandleMessage(s *Session, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Errorf("panic handling message: %v\n%s", rec, debug.Stack())
		}
	}()

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
		s.log.WithError(err).Warn("dropping malformed frame")
		return
	}

	drawing := env.Type == msgDrawLine || env.Type == msgErase
	limiter := s.chatLimiter
	if drawing {
		limiter = s.drawLimiter
	}
	if !limiter.Allow() {
		if !drawing {
			s.log.WithField("type", env.Type).Debug("rate limited")
			return
		}
		// the drawer's canvas now has strokes nobody else saw
		s.drawDropped++
		if s.drawDropped == 1 {
			s.log.WithField("type", env.Type).Warn("drawing rate limited, dropping strokes")
		}
		return
	}

	if err := g.dispatch(s, env); err != nil {
		g.respondError(s, env.Type, err)
	}
	if drawing && s.drawDropped > 0 {
		g.resyncCanvas(s)
	}
}

// resyncCanvas repaints the drawer's canvas from the room's log after
// strokes were dropped by the draw limiter.
func (g *Gateway) resyncCanvas(s *Session) {
	dropped := s.drawDropped
	s.drawDropped = 0
	if s.room == nil {
		return
	}
	s.log.WithField("dropped", dropped).Warn("resyncing canvas after dropped strokes")
	if err := s.room.Resync(s.ID); err != nil {
		s.log.WithError(err).Debug("canvas resync skipped")
	}
}

// Disconnect removes the session from its room and closes it.
func (g *Gateway) Disconnect(s *Session) {
	if s.room != nil {
		s.room.Leave(s.ID)
	}
	s.Close()
}

func (g *Gateway) dispatch(s *Session, env Envelope) error {
	switch env.Type {
	case msgCreateRoom:
		var p createRoomPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return err
		}
		if s.room != nil {
			return errAlreadyInRoom
		}
		room, err := g.store.CreateRoom(game.SessionInfo{ID: s.ID, Name: p.PlayerName, Conn: s}, p.Settings)
		if err != nil {
			return err
		}
		s.room = room
		return nil

	case msgJoinRoom:
		var p joinRoomPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			return err
		}
		if s.room != nil {
			return errAlreadyInRoom
		}
		room, err := g.store.GetRoom(string(p.RoomID))
		if err != nil {
			return err
		}
		if err := room.Join(game.SessionInfo{ID: s.ID, Name: p.PlayerName, Conn: s}); err != nil {
			return err
		}
		s.room = room
		return nil
	}

	room := s.room
	if room == nil {
		return fmt.Errorf("%w: %s before joining a room", game.ErrInvalidState, env.Type)
	}

	switch env.Type {
	case msgStartGame:
		return room.StartGame(s.ID)

	case msgSelectWord:
		var word string
		if err := decodePayload(env.Payload, &word); err != nil {
			return err
		}
		return room.SelectWord(s.ID, word)

	case msgDrawLine, msgErase:
		var action models.DrawAction
		if err := decodePayload(env.Payload, &action); err != nil {
			return err
		}
		action.Type = models.DrawLine
		if env.Type == msgErase {
			action.Type = models.DrawErase
		}
		return room.Draw(s.ID, action)

	case msgUndo:
		return room.Undo(s.ID)

	case msgClearCanvas:
		return room.ClearCanvas(s.ID)

	case msgChatMessage:
		var text string
		if err := decodePayload(env.Payload, &text); err != nil {
			return err
		}
		return room.Chat(s.ID, text)

	case msgChangeWordCategory:
		req, err := decodeCategory(env.Payload)
		if err != nil {
			return err
		}
		return room.ChangeWordCategory(s.ID, req)

	case msgPlayAgain:
		var req *models.SettingsRequest
		if len(bytes.TrimSpace(env.Payload)) > 0 && !bytes.Equal(bytes.TrimSpace(env.Payload), []byte("null")) {
			req = &models.SettingsRequest{}
			if err := decodePayload(env.Payload, req); err != nil {
				return err
			}
		}
		return room.PlayAgain(s.ID, req)

	case msgGetRecapData:
		recap, err := room.Recap(s.ID)
		if err != nil {
			return err
		}
		s.Write(game.Event{Type: game.EventRecapData, Payload: recap})
		return nil
	}

	return fmt.Errorf("%w: unknown event %q", game.ErrMalformedRequest, env.Type)
}

var errAlreadyInRoom = errors.New("already in a room")

// respondError applies the reply policy for a failed event.
func (g *Gateway) respondError(s *Session, msgType string, err error) {
	log := s.log.WithField("type", msgType).WithError(err)
	if s.room != nil {
		log = log.WithField("room", s.room.Code)
	}

	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		s.Write(game.Event{Type: game.EventRoomNotFound})
	case errors.Is(err, game.ErrInsufficientPlayers):
		s.Write(game.Notification("Need at least 2 players to start"))
	case errors.Is(err, game.ErrNotHost):
		s.Write(game.Notification("Only the host can do that"))
	case errors.Is(err, game.ErrInvalidSettings):
		s.Write(game.Notification(capitalize(err.Error())))
	case errors.Is(err, game.ErrRegistryFull):
		log.Error("room registry full")
		s.Write(game.Notification("The server is full, try again later"))
	case errors.Is(err, errAlreadyInRoom), errors.Is(err, game.ErrPlayerExists):
		s.Write(game.Notification("You are already in a room"))
	case errors.Is(err, game.ErrMalformedRequest):
		log.Warn("malformed request")
	default:
		log.Debug("ignored event")
	}
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", game.ErrMalformedRequest)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", game.ErrMalformedRequest, err)
	}
	return nil
}

// decodeCategory accepts a bare category name or a settings object.
func decodeCategory(raw json.RawMessage) (models.SettingsRequest, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return models.SettingsRequest{WordCategory: name}, nil
	}
	var req models.SettingsRequest
	if err := decodePayload(raw, &req); err != nil {
		return models.SettingsRequest{}, err
	}
	return req, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
