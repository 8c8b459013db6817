package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/sketch/internal/game"
	"github.com/jason-s-yu/sketch/internal/words"
)

type statsResponse struct {
	Rooms      int      `json:"rooms"`
	Players    int      `json:"players"`
	Categories []string `json:"categories"`
}

// StatsHandler reports live room and player counts and the built-in word categories.
func StatsHandler(store *game.RoomStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statsResponse{Categories: words.Categories()}
		for _, code := range store.Codes() {
			room, err := store.GetRoom(code)
			if err != nil {
				// removed since Codes was taken
				continue
			}
			resp.Rooms++
			resp.Players += room.PlayerCount()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
