// internal/game/room.go
package game

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/sirupsen/logrus"
)

// State is the coarse lifecycle of a room.
type State string

const (
	StateWaiting State = "waiting"
	StatePlaying State = "playing"
	StateEnded   State = "ended"
)

const maxNameLength = 24

// Historian receives sealed rounds and final standings. Implementations must not
// block; rooms call them while holding their lock.
type Historian interface {
	RecordRound(roomCode string, rec models.RoundRecord)
	RecordGameEnd(roomCode string, standings []models.Player)
}

// RoomOptions carries the dependencies shared by every room of a store.
type RoomOptions struct {
	Logger        logrus.FieldLogger
	Clock         Clock
	RoundEndDelay time.Duration
	Limits        Limits
	Historian     Historian

	// NewRand seeds the per-room generator used for word offers and hints.
	NewRand func() *rand.Rand
}

func (o RoomOptions) withDefaults() RoomOptions {
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	if o.RoundEndDelay <= 0 {
		o.RoundEndDelay = 5 * time.Second
	}
	if o.NewRand == nil {
		o.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }
	}
	return o
}

// Room is one game session. All exported methods lock mu for their whole body;
// unexported helpers assume it is held.
type Room struct {
	Code string

	mu        sync.Mutex
	log       logrus.FieldLogger
	clock     Clock
	rng       *rand.Rand
	historian Historian
	limits    Limits
	endDelay  time.Duration

	// onEmpty runs after the last player leaves, outside the lock.
	onEmpty func(r *Room)
	closed  bool

	players map[string]*models.Player
	order   []string // join order, drives drawer rotation and host promotion
	emit    emitter

	settings     models.Settings
	state        State
	currentRound int
	drawerIdx    int
	drawerID     string

	// per round
	roundLive   bool
	wordOptions []string
	word        string
	revealed    []bool
	hintCap     int
	hintsShown  int
	roundStart  time.Time
	drawingLog  []models.DrawAction
	record      *models.RoundRecord
	history     []models.RoundRecord

	timers roundTimers
	token  uint64
}

func newRoom(code string, settings models.Settings, opts RoomOptions) *Room {
	opts = opts.withDefaults()
	r := &Room{
		Code:      code,
		log:       opts.Logger.WithField("room", code),
		clock:     opts.Clock,
		rng:       opts.NewRand(),
		historian: opts.Historian,
		limits:    opts.Limits,
		endDelay:  opts.RoundEndDelay,
		players:   make(map[string]*models.Player),
		settings:  settings,
		state:     StateWaiting,
	}
	r.emit = emitter{room: r, conns: make(map[string]Conn)}
	return r
}

// emitter fans events out to the sessions of a room in join order.
type emitter struct {
	room  *Room
	conns map[string]Conn
}

func (e emitter) sendTo(playerID string, ev Event) {
	if c, ok := e.conns[playerID]; ok && c != nil {
		c.Write(ev)
	}
}

func (e emitter) broadcast(ev Event) {
	for _, id := range e.room.order {
		e.sendTo(id, ev)
	}
}

func (e emitter) broadcastExcept(skip string, ev Event) {
	for _, id := range e.room.order {
		if id != skip {
			e.sendTo(id, ev)
		}
	}
}

func cleanName(name, id string) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > maxNameLength {
		name = string(r[:maxNameLength])
	}
	if name == "" {
		short := id
		if len(short) > 4 {
			short = short[:4]
		}
		name = "Player_" + short
	}
	return name
}

// seat adds a player. Assumes lock is held.
func (r *Room) seat(info SessionInfo) *models.Player {
	p := &models.Player{
		ID:     info.ID,
		Name:   cleanName(info.Name, info.ID),
		IsHost: len(r.order) == 0,
	}
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
	r.emit.conns[p.ID] = info.Conn
	return p
}

// Join seats a new player. A player joining mid-round receives the current
// round, the masked hint and the canvas so far.
func (r *Room) Join(info SessionInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if _, exists := r.players[info.ID]; exists {
		return ErrPlayerExists
	}

	p := r.seat(info)
	r.log.WithFields(logrus.Fields{"player": p.ID, "name": p.Name}).Info("player joined")

	r.emit.broadcast(Event{Type: EventUpdatePlayers, Payload: r.playerList()})
	r.emit.sendTo(p.ID, Event{Type: EventGameState, Payload: r.snapshot()})

	if r.state == StatePlaying && r.roundLive {
		r.emit.sendTo(p.ID, Event{Type: EventNewRound, Payload: r.newRoundPayload()})
		if r.word != "" {
			r.emit.sendTo(p.ID, Event{Type: EventWordSelected, Payload: WordSelectedPayload{
				Hint:     r.hint(),
				DrawTime: r.secondsLeft(),
				Round:    r.currentRound,
				Drawer:   r.players[r.drawerID].Name,
			}})
			r.emit.sendTo(p.ID, Event{Type: EventRedraw, Payload: models.CloneDrawings(r.drawingLog)})
		}
	}
	return nil
}

// Leave removes a player, promoting a new host and ending the round when the
// drawer walks out. The last player leaving closes the room.
func (r *Room) Leave(playerID string) {
	r.mu.Lock()
	p, ok := r.players[playerID]
	if !ok || r.closed {
		r.mu.Unlock()
		return
	}

	idx := r.indexOf(playerID)
	delete(r.players, playerID)
	delete(r.emit.conns, playerID)
	r.order = append(r.order[:idx], r.order[idx+1:]...)
	if idx <= r.drawerIdx {
		r.drawerIdx--
	}
	r.log.WithField("player", playerID).Info("player left")

	if len(r.order) == 0 {
		r.closed = true
		r.cancelTimers()
		onEmpty := r.onEmpty
		r.mu.Unlock()
		if onEmpty != nil {
			onEmpty(r)
		}
		return
	}
	defer r.mu.Unlock()

	r.emit.broadcast(Event{Type: EventUpdatePlayers, Payload: r.playerList()})

	if p.IsHost {
		next := r.players[r.order[0]]
		next.IsHost = true
		r.emit.broadcast(Event{Type: EventNewHost, Payload: next.ID})
	}

	wasDrawer := playerID == r.drawerID
	if wasDrawer {
		r.drawerID = ""
	}
	if r.state != StatePlaying || !r.roundLive {
		return
	}
	switch {
	case wasDrawer:
		r.emit.broadcast(Notification("Drawer disconnected, ending round"))
		r.endRound()
	case len(r.order) < 2:
		r.endRound()
	case r.word != "" && r.allGuessed():
		r.endRound()
	}
}

// Close stops all timers and refuses further operations. Safe to call twice.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.cancelTimers()
}

// Snapshot returns the public view sent as gameState.
func (r *Room) Snapshot() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// PlayerCount reports how many players are seated.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func (r *Room) snapshot() RoomState {
	st := RoomState{
		ID:           r.Code,
		Players:      make(map[string]models.Player, len(r.players)),
		PlayerOrder:  append([]string{}, r.order...),
		Settings:     r.settings.Clone(),
		State:        r.state,
		CurrentRound: r.currentRound,
	}
	for id, p := range r.players {
		st.Players[id] = *p
	}
	if r.drawerID != "" {
		d := r.drawerID
		st.CurrentDrawer = &d
	}
	if r.word != "" {
		st.Hint = r.hint()
	}
	return st
}

func (r *Room) indexOf(playerID string) int {
	for i, id := range r.order {
		if id == playerID {
			return i
		}
	}
	return -1
}

// playerList returns players in join order.
func (r *Room) playerList() []models.Player {
	out := make([]models.Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.players[id])
	}
	return out
}

// standings sorts players by score, ties broken by join order.
func (r *Room) standings() []models.Player {
	list := r.playerList()
	sort.SliceStable(list, func(i, j int) bool { return list[i].Score > list[j].Score })
	return list
}

func (r *Room) scoreboard() []models.ScoreEntry {
	list := r.standings()
	out := make([]models.ScoreEntry, len(list))
	for i, p := range list {
		out[i] = models.ScoreEntry{ID: p.ID, Name: p.Name, Score: p.Score}
	}
	return out
}

func (r *Room) isHost(playerID string) bool {
	p, ok := r.players[playerID]
	return ok && p.IsHost
}

// hint renders the mask: revealed letters as-is, hidden ones as "_", spaces
// kept, joined by single spaces.
func (r *Room) hint() string {
	runes := []rune(r.word)
	parts := make([]string, len(runes))
	for i, ch := range runes {
		switch {
		case ch == ' ':
			parts[i] = " "
		case r.revealed[i]:
			parts[i] = string(ch)
		default:
			parts[i] = "_"
		}
	}
	return strings.Join(parts, " ")
}

func (r *Room) secondsLeft() int {
	left := time.Duration(r.settings.DrawTime)*time.Second - r.clock.Now().Sub(r.roundStart)
	if left < 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}
