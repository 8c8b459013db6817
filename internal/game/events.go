// internal/game/events.go
package game

import "github.com/jason-s-yu/sketch/internal/models"

// EventType names a server to client event. The names are part of the wire
// contract with the browser client and must not change.
type EventType string

const (
	EventRoomCreated   EventType = "roomCreated"
	EventRoomNotFound  EventType = "roomNotFound"
	EventUpdatePlayers EventType = "updatePlayers"
	EventGameState     EventType = "gameState"
	EventNewHost       EventType = "newHost"
	EventGameStarted   EventType = "gameStarted"
	EventChooseWord    EventType = "chooseWord"
	EventWordSelected  EventType = "wordSelected"
	EventWordHint      EventType = "wordHint"
	EventDrawLine      EventType = "drawLine"
	EventErase         EventType = "erase"
	EventRedraw        EventType = "redraw"
	EventClearCanvas   EventType = "clearCanvas"
	EventChatMessage   EventType = "chatMessage"
	EventCorrectGuess  EventType = "correctGuess"
	EventRoundEnded    EventType = "roundEnded"
	EventNewRound      EventType = "newRound"
	EventGameEnded     EventType = "gameEnded"
	EventRecapData     EventType = "recapData"
	EventNotification  EventType = "notification"
)

// Event is a single outbound message. Payload must be JSON serializable.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Conn is the outbound half of a player's session. Write must not block;
// rooms call it while holding their lock.
type Conn interface {
	Write(ev Event)
}

// SessionInfo identifies the connection joining or creating a room.
type SessionInfo struct {
	ID   string
	Name string
	Conn Conn
}

// RoomCreatedPayload answers a successful createRoom.
type RoomCreatedPayload struct {
	RoomID    string    `json:"roomId"`
	GameState RoomState `json:"gameState"`
}

// RoomState is the full public view of a room. It never contains the secret word.
type RoomState struct {
	ID           string                   `json:"id"`
	Players      map[string]models.Player `json:"players"`
	PlayerOrder  []string                 `json:"playerOrder"`
	Settings     models.Settings          `json:"settings"`
	State        State                    `json:"state"`
	CurrentRound int                      `json:"currentRound"`
	// CurrentDrawer is null while nobody is drawing.
	CurrentDrawer *string `json:"currentDrawer"`
	Hint          string  `json:"hint,omitempty"`
}

type WordSelectedPayload struct {
	Word     string `json:"word"`
	Hint     string `json:"hint"`
	DrawTime int    `json:"drawTime"`
	Round    int    `json:"round"`
	Drawer   string `json:"drawer"`
}

type ChatPayload struct {
	SenderID string `json:"senderId"`
	Sender   string `json:"sender"`
	Message  string `json:"message"`
}

type CorrectGuessPayload struct {
	PlayerID    string `json:"playerId"`
	PlayerName  string `json:"playerName"`
	ScoreGained int    `json:"scoreGained"`
}

type RoundEndedPayload struct {
	Word   string              `json:"word"`
	Scores []models.ScoreEntry `json:"scores"`
}

type NewRoundPayload struct {
	Round       int    `json:"round"`
	TotalRounds int    `json:"totalRounds"`
	Drawer      string `json:"drawer"`
	DrawerID    string `json:"drawerId"`
}

type GameEndedPayload struct {
	Winner  models.Player   `json:"winner"`
	Players []models.Player `json:"players"`
}

// Recap is the post-game playback data returned by getRecapData.
type Recap struct {
	Rounds   []models.RoundRecord `json:"rounds"`
	Settings models.Settings      `json:"settings"`
}

type NotificationPayload struct {
	Message string `json:"message"`
}

// Notification builds a notification event.
func Notification(msg string) Event {
	return Event{Type: EventNotification, Payload: NotificationPayload{Message: msg}}
}
