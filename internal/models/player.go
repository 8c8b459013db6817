// internal/models/player.go
package models

// Player is a single participant of a room. The ID is the session id of the
// connection that joined; it is opaque and only unique within the room.
type Player struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Score            int    `json:"score"`
	IsHost           bool   `json:"isHost"`
	GuessedCorrectly bool   `json:"guessedCorrectly"`
}

// PlayerRef identifies a player inside a round record.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScoreEntry is one line of a score snapshot.
type ScoreEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}
