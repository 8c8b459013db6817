package game

import (
	"runtime/debug"
	"time"
)

// roundTimers holds every timer belonging to the current round phase: hint
// reveals, the round expiry and the delay before the next round or game end.
type roundTimers struct {
	active []Timer
}

func (t *roundTimers) add(tm Timer) {
	t.active = append(t.active, tm)
}

func (t *roundTimers) stopAll() {
	for _, tm := range t.active {
		tm.Stop()
	}
	t.active = nil
}

// cancelTimers stops every pending timer and invalidates callbacks that already
// fired but are still waiting on the lock. Assumes lock is held.
func (r *Room) cancelTimers() {
	r.token++
	r.timers.stopAll()
}

// schedule runs fn under the room lock after d, unless the timers were
// cancelled or the room closed in the meantime. Assumes lock is held.
func (r *Room) schedule(d time.Duration, what string, fn func()) {
	tok := r.token
	tm := r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.WithField("timer", what).Errorf("panic in room timer: %v\n%s", rec, debug.Stack())
			}
		}()
		if r.closed || r.token != tok {
			r.log.WithField("timer", what).Debug("ignoring stale timer")
			return
		}
		fn()
	})
	r.timers.add(tm)
}

// hintInterval is a quarter of the draw time.
func (r *Room) hintInterval() time.Duration {
	return time.Duration(r.settings.DrawTime) * time.Second / 4
}

// startRoundTimers arms the hint schedule and the round expiry for the word
// that was just selected. Assumes lock is held.
func (r *Room) startRoundTimers() {
	if r.hintCap > 0 {
		r.schedule(r.hintInterval(), "hint", r.revealHint)
	}
	r.schedule(time.Duration(r.settings.DrawTime)*time.Second, "expiry", func() {
		r.log.Debug("round time expired")
		r.endRound()
	})
}

// revealHint uncovers one random hidden letter, broadcasts the new hint and
// re-arms itself until the cap is reached. Assumes lock is held.
func (r *Room) revealHint() {
	if r.word == "" || r.hintsShown >= r.hintCap {
		return
	}
	runes := []rune(r.word)
	hidden := make([]int, 0, len(runes))
	for i, ch := range runes {
		if !r.revealed[i] && ch != ' ' {
			hidden = append(hidden, i)
		}
	}
	if len(hidden) == 0 {
		return
	}
	r.revealed[hidden[r.rng.Intn(len(hidden))]] = true
	r.hintsShown++

	r.emit.broadcastExcept(r.drawerID, Event{Type: EventWordHint, Payload: r.hint()})

	if r.hintsShown < r.hintCap {
		r.schedule(r.hintInterval(), "hint", r.revealHint)
	}
}
