package game

import "errors"

// Errors returned by room and store operations. Callers match them with errors.Is;
// most are wrapped with extra detail.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrNotHost             = errors.New("only the host can do that")
	ErrInsufficientPlayers = errors.New("need at least 2 players to start")
	ErrInvalidSettings     = errors.New("invalid settings")
	ErrInvalidTurn         = errors.New("action not allowed for this player")
	ErrInvalidState        = errors.New("action not allowed in the current game state")
	ErrMalformedRequest    = errors.New("malformed request")
	ErrRegistryFull        = errors.New("no free room codes")
	ErrPlayerExists        = errors.New("player already in room")
)
