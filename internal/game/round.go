// internal/game/round.go
package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/jason-s-yu/sketch/internal/models"
	"github.com/jason-s-yu/sketch/internal/words"
	"github.com/sirupsen/logrus"
)

const (
	wordOffers        = 3
	baseGuessPoints   = 50
	drawerGuessPoints = 25
)

// StartGame moves a waiting room into its first round. Host only.
func (r *Room) StartGame(callerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if !r.isHost(callerID) {
		return ErrNotHost
	}
	if r.state != StateWaiting {
		return fmt.Errorf("%w: game already started", ErrInvalidState)
	}
	if len(r.order) < 2 {
		return ErrInsufficientPlayers
	}

	r.state = StatePlaying
	r.currentRound = 1
	r.drawerIdx = 0
	r.history = nil
	for _, p := range r.players {
		p.Score = 0
		p.GuessedCorrectly = false
	}
	r.log.WithField("players", len(r.order)).Info("game started")

	r.beginTurn()
	r.emit.broadcast(Event{Type: EventGameStarted, Payload: r.snapshot()})
	r.emit.sendTo(r.drawerID, Event{Type: EventChooseWord, Payload: append([]string{}, r.wordOptions...)})
	return nil
}

// beginTurn hands the turn to the player at drawerIdx and offers words.
// Assumes lock is held.
func (r *Room) beginTurn() {
	r.drawerID = r.order[r.drawerIdx]
	r.roundLive = true
	r.word = ""
	r.revealed = nil
	r.hintCap = 0
	r.hintsShown = 0
	r.drawingLog = nil
	r.record = nil
	r.wordOptions = words.Sample(r.rng, r.settings.WordList, wordOffers)
	for _, p := range r.players {
		p.GuessedCorrectly = false
	}
}

// SelectWord locks in the drawer's choice and starts the round clock.
func (r *Room) SelectWord(callerID, word string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if r.state != StatePlaying || !r.roundLive || r.word != "" {
		return ErrInvalidState
	}
	if callerID != r.drawerID {
		return ErrInvalidTurn
	}
	chosen := ""
	for _, opt := range r.wordOptions {
		if strings.EqualFold(opt, strings.TrimSpace(word)) {
			chosen = opt
			break
		}
	}
	if chosen == "" {
		return fmt.Errorf("%w: %q was not offered", ErrInvalidTurn, word)
	}

	drawer := r.players[r.drawerID]
	r.word = chosen
	r.wordOptions = nil
	r.revealed = make([]bool, len([]rune(chosen)))
	r.hintCap = len(r.revealed) * 2 / 5
	r.hintsShown = 0
	r.drawingLog = nil
	r.roundStart = r.clock.Now()
	r.record = &models.RoundRecord{
		Round:    r.currentRound,
		Word:     chosen,
		Drawer:   models.PlayerRef{ID: drawer.ID, Name: drawer.Name},
		Drawings: []models.DrawAction{},
		Guessers: []models.GuesserRecord{},
	}
	for _, p := range r.players {
		p.GuessedCorrectly = false
	}
	r.startRoundTimers()
	r.log.WithFields(logrus.Fields{"round": r.currentRound, "drawer": drawer.ID}).Debug("word selected")

	payload := WordSelectedPayload{
		Word:     chosen,
		Hint:     r.hint(),
		DrawTime: r.settings.DrawTime,
		Round:    r.currentRound,
		Drawer:   drawer.Name,
	}
	r.emit.sendTo(drawer.ID, Event{Type: EventWordSelected, Payload: payload})
	payload.Word = ""
	r.emit.broadcastExcept(drawer.ID, Event{Type: EventWordSelected, Payload: payload})
	return nil
}

// Chat either resolves a guess or relays the message to the room.
// The drawer and players who already guessed can't chat while a word is live.
func (r *Room) Chat(callerID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	p, ok := r.players[callerID]
	if !ok {
		return ErrInvalidTurn
	}
	guess := strings.TrimSpace(text)
	if guess == "" {
		return fmt.Errorf("%w: empty message", ErrMalformedRequest)
	}

	if r.state == StatePlaying && r.word != "" {
		if callerID == r.drawerID || p.GuessedCorrectly {
			return ErrInvalidTurn
		}
		if strings.EqualFold(guess, r.word) {
			r.acceptGuess(p)
			return nil
		}
	}

	r.emit.broadcast(Event{Type: EventChatMessage, Payload: ChatPayload{
		SenderID: p.ID,
		Sender:   p.Name,
		Message:  text,
	}})
	return nil
}

// acceptGuess scores a correct guess. Assumes lock is held.
func (r *Room) acceptGuess(p *models.Player) {
	elapsed := r.clock.Now().Sub(r.roundStart).Seconds()
	timeLeft := float64(r.settings.DrawTime) - elapsed
	gained := int(math.Ceil(timeLeft*2)) + baseGuessPoints

	p.GuessedCorrectly = true
	p.Score += gained
	if d, ok := r.players[r.drawerID]; ok {
		d.Score += drawerGuessPoints
	}
	if r.record != nil {
		r.record.Guessers = append(r.record.Guessers, models.GuesserRecord{
			PlayerID: p.ID,
			Name:     p.Name,
			Correct:  true,
			Time:     int(elapsed),
		})
	}
	r.log.WithFields(logrus.Fields{"player": p.ID, "gained": gained}).Debug("correct guess")

	r.emit.broadcast(Event{Type: EventCorrectGuess, Payload: CorrectGuessPayload{
		PlayerID:    p.ID,
		PlayerName:  p.Name,
		ScoreGained: gained,
	}})

	if r.allGuessed() {
		r.endRound()
	}
}

// allGuessed reports whether every non-drawer has guessed. Assumes lock is held.
func (r *Room) allGuessed() bool {
	for _, id := range r.order {
		if id != r.drawerID && !r.players[id].GuessedCorrectly {
			return false
		}
	}
	return true
}

// endRound seals the round, reveals the word and schedules what comes next.
// Assumes lock is held.
func (r *Room) endRound() {
	if r.state != StatePlaying || !r.roundLive {
		return
	}
	r.cancelTimers()
	r.roundLive = false
	word := r.word

	if r.record != nil {
		guessed := make(map[string]bool, len(r.record.Guessers))
		for _, g := range r.record.Guessers {
			guessed[g.PlayerID] = true
		}
		for _, id := range r.order {
			if id == r.record.Drawer.ID || guessed[id] {
				continue
			}
			r.record.Guessers = append(r.record.Guessers, models.GuesserRecord{
				PlayerID: id,
				Name:     r.players[id].Name,
				Time:     -1,
			})
		}
		sealed := r.record.Clone()
		r.history = append(r.history, sealed)
		if r.historian != nil {
			r.historian.RecordRound(r.Code, sealed.Clone())
		}
		r.record = nil
	}

	r.word = ""
	r.wordOptions = nil
	r.revealed = nil
	r.log.WithFields(logrus.Fields{"round": r.currentRound, "word": word}).Info("round ended")

	r.emit.broadcast(Event{Type: EventRoundEnded, Payload: RoundEndedPayload{
		Word:   word,
		Scores: r.scoreboard(),
	}})

	if r.currentRound >= r.settings.Rounds || len(r.order) < 2 {
		r.schedule(r.endDelay, "end-game", r.endGame)
		return
	}
	r.schedule(r.endDelay, "next-round", r.nextRound)
}

// nextRound rotates the drawer in join order. Assumes lock is held.
func (r *Room) nextRound() {
	if r.state != StatePlaying {
		return
	}
	if len(r.order) < 2 {
		r.endGame()
		return
	}
	r.currentRound++
	r.drawerIdx = (r.drawerIdx + 1) % len(r.order)
	r.beginTurn()

	r.emit.broadcast(Event{Type: EventNewRound, Payload: r.newRoundPayload()})
	r.emit.sendTo(r.drawerID, Event{Type: EventChooseWord, Payload: append([]string{}, r.wordOptions...)})
}

func (r *Room) newRoundPayload() NewRoundPayload {
	pl := NewRoundPayload{
		Round:       r.currentRound,
		TotalRounds: r.settings.Rounds,
		DrawerID:    r.drawerID,
	}
	if d, ok := r.players[r.drawerID]; ok {
		pl.Drawer = d.Name
	}
	return pl
}

// endGame publishes final standings. Assumes lock is held.
func (r *Room) endGame() {
	if r.state != StatePlaying {
		return
	}
	r.cancelTimers()
	r.state = StateEnded
	r.roundLive = false
	r.word = ""
	r.drawerID = ""

	standings := r.standings()
	r.log.WithField("winner", standings[0].ID).Info("game ended")
	if r.historian != nil {
		r.historian.RecordGameEnd(r.Code, append([]models.Player{}, standings...))
	}
	r.emit.broadcast(Event{Type: EventGameEnded, Payload: GameEndedPayload{
		Winner:  standings[0],
		Players: standings,
	}})
}

// PlayAgain resets an ended room to waiting, optionally with new settings.
func (r *Room) PlayAgain(callerID string, req *models.SettingsRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if !r.isHost(callerID) {
		return ErrNotHost
	}
	if r.state != StateEnded {
		return fmt.Errorf("%w: game has not ended", ErrInvalidState)
	}
	if req != nil {
		s, err := ResolveSettings(*req, r.settings, r.limits)
		if err != nil {
			return err
		}
		r.settings = s
	}

	r.cancelTimers()
	r.state = StateWaiting
	r.currentRound = 0
	r.drawerIdx = 0
	r.drawerID = ""
	r.roundLive = false
	r.word = ""
	r.wordOptions = nil
	r.revealed = nil
	r.drawingLog = nil
	r.record = nil
	r.history = nil
	for _, p := range r.players {
		p.Score = 0
		p.GuessedCorrectly = false
	}
	r.log.Info("room reset for another game")

	r.emit.broadcast(Event{Type: EventGameState, Payload: r.snapshot()})
	return nil
}

// ChangeWordCategory swaps the word source before a game starts.
func (r *Room) ChangeWordCategory(callerID string, req models.SettingsRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if !r.isHost(callerID) {
		return ErrNotHost
	}
	if r.state != StateWaiting {
		return fmt.Errorf("%w: category can only change before the game", ErrInvalidState)
	}
	if strings.TrimSpace(req.WordCategory) == "" && len(req.WordList) == 0 {
		return fmt.Errorf("%w: no category given", ErrInvalidSettings)
	}
	s, err := ResolveSettings(models.SettingsRequest{
		WordCategory: req.WordCategory,
		WordList:     req.WordList,
	}, r.settings, r.limits)
	if err != nil {
		return err
	}
	r.settings = s

	r.emit.broadcast(Event{Type: EventGameState, Payload: r.snapshot()})
	r.emit.broadcast(Notification(fmt.Sprintf("Word category changed to %s", s.WordCategory)))
	return nil
}

// Recap returns copies of every sealed round. Only available once the game ended.
func (r *Room) Recap(callerID string) (Recap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Recap{}, ErrRoomNotFound
	}
	if _, ok := r.players[callerID]; !ok {
		return Recap{}, ErrInvalidTurn
	}
	if r.state != StateEnded {
		return Recap{}, fmt.Errorf("%w: recap is available after the game", ErrInvalidState)
	}
	out := Recap{
		Rounds:   make([]models.RoundRecord, len(r.history)),
		Settings: r.settings.Clone(),
	}
	for i, rec := range r.history {
		out.Rounds[i] = rec.Clone()
	}
	return out, nil
}
