// internal/game/room_store.go
package game

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"sync"

	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	minRoomCode = 1000
	maxRoomCode = 9999

	// random picks before falling back to a scan of the code space
	codeAttempts = 32
)

// RoomStore manages live rooms in memory only, keyed by their 4 digit code.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rng   *rand.Rand
	opts  RoomOptions
	log   logrus.FieldLogger
}

// NewRoomStore returns an empty store whose rooms share opts.
func NewRoomStore(opts RoomOptions) *RoomStore {
	opts = opts.withDefaults()
	return &RoomStore{
		rooms: make(map[string]*Room),
		rng:   opts.NewRand(),
		opts:  opts,
		log:   opts.Logger,
	}
}

// CreateRoom validates the settings, reserves a fresh code and seats host as
// the sole host. The host receives roomCreated.
func (s *RoomStore) CreateRoom(host SessionInfo, req models.SettingsRequest) (*Room, error) {
	settings, err := ResolveSettings(req, DefaultSettings(), s.opts.Limits)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	code, err := s.freeCode()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	room := newRoom(code, settings, s.opts)
	room.onEmpty = s.removeIfSame
	room.seat(host)
	s.rooms[code] = room
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"room": code, "host": host.ID}).Info("room created")

	room.mu.Lock()
	room.emit.sendTo(host.ID, Event{Type: EventRoomCreated, Payload: RoomCreatedPayload{
		RoomID:    code,
		GameState: room.snapshot(),
	}})
	room.mu.Unlock()
	return room, nil
}

// freeCode returns an unused code. Assumes s.mu is held.
func (s *RoomStore) freeCode() (string, error) {
	span := maxRoomCode - minRoomCode + 1
	for i := 0; i < codeAttempts; i++ {
		code := strconv.Itoa(minRoomCode + s.rng.Intn(span))
		if _, taken := s.rooms[code]; !taken {
			return code, nil
		}
	}
	start := s.rng.Intn(span)
	for i := 0; i < span; i++ {
		code := strconv.Itoa(minRoomCode + (start+i)%span)
		if _, taken := s.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: all %d codes in use", ErrRegistryFull, span)
}

// GetRoom looks up a room by code.
func (s *RoomStore) GetRoom(code string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// RemoveRoom stops the room's timers and forgets it.
func (s *RoomStore) RemoveRoom(code string) {
	s.mu.Lock()
	r, ok := s.rooms[code]
	s.mu.Unlock()
	if !ok {
		return
	}
	r.Close()
	s.removeIfSame(r)
}

// removeIfSame deletes r unless its code was already reused.
func (s *RoomStore) removeIfSame(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.rooms[r.Code]; ok && cur == r {
		delete(s.rooms, r.Code)
		s.log.WithField("room", r.Code).Info("room removed")
	}
}

// Count reports the number of live rooms.
func (s *RoomStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Codes lists live room codes in ascending order.
func (s *RoomStore) Codes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Close shuts every room down, used on server shutdown.
func (s *RoomStore) Close() {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.rooms = make(map[string]*Room)
	s.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}
