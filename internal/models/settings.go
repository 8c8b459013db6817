// internal/models/settings.go
package models

// Settings captures the game configuration chosen by the host.
type Settings struct {
	// Rounds is the number of drawing turns in a game.
	Rounds int `json:"rounds"`

	// DrawTime is how many seconds a drawer has per round.
	DrawTime int `json:"drawTime"`

	// WordCategory names a catalog category, or "custom" for a host supplied list.
	WordCategory string `json:"wordCategory"`

	// WordList is the resolved list words are drawn from.
	WordList []string `json:"wordList"`
}

// Clone returns a copy that shares no backing arrays with s.
func (s Settings) Clone() Settings {
	out := s
	out.WordList = append([]string(nil), s.WordList...)
	return out
}

// SettingsRequest is the wire form of settings sent by clients on createRoom,
// playAgain and changeWordCategory. Absent fields are nil.
type SettingsRequest struct {
	Rounds       *int     `json:"rounds,omitempty"`
	DrawTime     *int     `json:"drawTime,omitempty"`
	WordCategory string   `json:"wordCategory,omitempty"`
	WordList     []string `json:"wordList,omitempty"`
}
