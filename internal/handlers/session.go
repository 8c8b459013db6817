// internal/handlers/session.go
package handlers

import (
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/sketch/internal/config"
	"github.com/jason-s-yu/sketch/internal/game"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// maxDropped is how many events a session may lose to a full queue before
// it is considered too slow and disconnected.
const maxDropped = 64

// Session is one websocket connection. It implements game.Conn.
type Session struct {
	ID  string
	log logrus.FieldLogger

	out       chan game.Event
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	dropped  int
	stopping bool

	// room and drawDropped are owned by the read loop. room is nil until the
	// session creates or joins one.
	room        *game.Room
	drawDropped int

	chatLimiter *rate.Limiter
	drawLimiter *rate.Limiter
}

// NewSession allocates a session with a fresh id and its own rate limiters.
func NewSession(cfg config.Config, logger logrus.FieldLogger) *Session {
	id := uuid.NewString()
	size := cfg.SendQueueSize
	if size <= 0 {
		size = 256
	}
	return &Session{
		ID:          id,
		log:         logger.WithField("session", id),
		out:         make(chan game.Event, size),
		done:        make(chan struct{}),
		chatLimiter: rate.NewLimiter(cfg.ChatRate, cfg.ChatBurst),
		drawLimiter: rate.NewLimiter(cfg.DrawRate, cfg.DrawBurst),
	}
}

// Write queues ev without blocking. Events for a closed or saturated session are dropped.
func (s *Session) Write(ev game.Event) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.out <- ev:
	default:
		s.mu.Lock()
		s.dropped++
		n := s.dropped
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{"type": ev.Type, "dropped": n}).Warn("outbound queue full, dropped event")
		if n >= maxDropped {
			s.Close()
		}
	}
}

// Outbound is drained by the write pump.
func (s *Session) Outbound() <-chan game.Event { return s.out }

// Done is closed once the session is shut down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close marks the session dead. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Room returns the room the session is bound to, if any.
func (s *Session) Room() *game.Room { return s.room }

// shutdown closes the session because the server is going away.
func (s *Session) shutdown() {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	s.Close()
}

// closeStatus picks the websocket close code for a finished session.
func (s *Session) closeStatus() (websocket.StatusCode, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.dropped >= maxDropped:
		return SlowConsumerError, "too slow"
	case s.stopping:
		return ServerShutdownError, "server shutting down"
	}
	return websocket.StatusNormalClosure, ""
}
