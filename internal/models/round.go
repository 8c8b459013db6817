// internal/models/round.go
package models

// GuesserRecord is the outcome of one non-drawer in a round.
// Time is whole seconds from word selection to the correct guess, or -1.
type GuesserRecord struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Correct  bool   `json:"correct"`
	Time     int    `json:"time"`
}

// RoundRecord is the sealed recap of a completed round.
type RoundRecord struct {
	Round    int             `json:"round"`
	Word     string          `json:"word"`
	Drawer   PlayerRef       `json:"drawer"`
	Drawings []DrawAction    `json:"drawings"`
	Guessers []GuesserRecord `json:"guessers"`
}

// Clone deep copies the record so callers can't mutate sealed history.
func (r RoundRecord) Clone() RoundRecord {
	out := r
	out.Drawings = CloneDrawings(r.Drawings)
	out.Guessers = append([]GuesserRecord{}, r.Guessers...)
	return out
}
