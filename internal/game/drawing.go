package game

import (
	"fmt"

	"github.com/jason-s-yu/sketch/internal/models"
)

// canDraw checks that callerID is the drawer of a live word. Assumes lock is held.
func (r *Room) canDraw(callerID string) error {
	if r.closed {
		return ErrRoomNotFound
	}
	if r.state != StatePlaying || r.word == "" {
		return ErrInvalidState
	}
	if callerID != r.drawerID {
		return ErrInvalidTurn
	}
	return nil
}

// Draw appends a line or erase stroke and relays it to everyone but the drawer.
func (r *Room) Draw(callerID string, action models.DrawAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.canDraw(callerID); err != nil {
		return err
	}
	if action.Type == models.DrawClear || !action.Valid() {
		return fmt.Errorf("%w: bad %q stroke", ErrMalformedRequest, action.Type)
	}

	stored := models.CloneDrawings([]models.DrawAction{action})[0]
	r.drawingLog = append(r.drawingLog, stored)
	if r.record != nil {
		r.record.Drawings = append(r.record.Drawings, stored)
	}

	ev := EventDrawLine
	if action.Type == models.DrawErase {
		ev = EventErase
	}
	r.emit.broadcastExcept(r.drawerID, Event{Type: ev, Payload: stored})
	return nil
}

// Undo drops the most recent stroke and resends the whole canvas.
// Strokes before the last clear can't be undone.
func (r *Room) Undo(callerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.canDraw(callerID); err != nil {
		return err
	}
	if len(r.drawingLog) == 0 {
		return nil
	}
	r.drawingLog = r.drawingLog[:len(r.drawingLog)-1]
	if r.record != nil && len(r.record.Drawings) > 0 {
		r.record.Drawings = r.record.Drawings[:len(r.record.Drawings)-1]
	}

	r.emit.broadcast(Event{Type: EventRedraw, Payload: models.CloneDrawings(r.drawingLog)})
	return nil
}

// ClearCanvas wipes the log. The recap keeps a clear marker so playback matches.
func (r *Room) ClearCanvas(callerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.canDraw(callerID); err != nil {
		return err
	}
	r.drawingLog = nil
	if r.record != nil {
		r.record.Drawings = append(r.record.Drawings, models.DrawAction{Type: models.DrawClear})
	}

	r.emit.broadcastExcept(r.drawerID, Event{Type: EventClearCanvas})
	return nil
}

// Resync sends callerID the current canvas so a client that lost strokes can repaint.
func (r *Room) Resync(callerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if _, ok := r.players[callerID]; !ok {
		return ErrInvalidTurn
	}
	r.emit.sendTo(callerID, Event{Type: EventRedraw, Payload: models.CloneDrawings(r.drawingLog)})
	return nil
}
