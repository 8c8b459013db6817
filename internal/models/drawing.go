// internal/models/drawing.go
package models

// DrawActionType tags the variant held by a DrawAction.
type DrawActionType string

const (
	DrawLine  DrawActionType = "line"
	DrawErase DrawActionType = "erase"
	DrawClear DrawActionType = "clear"
)

// Point is a canvas coordinate as sent by clients. The server never interprets it.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DrawAction is one entry of the drawing log. Only the fields of its Type are set.
type DrawAction struct {
	Type DrawActionType `json:"type"`

	From *Point `json:"from,omitempty"`
	To   *Point `json:"to,omitempty"`

	// line
	Color     string  `json:"color,omitempty"`
	BrushSize float64 `json:"brushSize,omitempty"`

	// erase
	Size float64 `json:"size,omitempty"`
}

// Valid reports whether the action carries the fields its variant needs.
func (a DrawAction) Valid() bool {
	switch a.Type {
	case DrawLine, DrawErase:
		return a.From != nil && a.To != nil
	case DrawClear:
		return true
	}
	return false
}

// CloneDrawings deep copies a drawing log.
func CloneDrawings(in []DrawAction) []DrawAction {
	if in == nil {
		return []DrawAction{}
	}
	out := make([]DrawAction, len(in))
	for i, a := range in {
		out[i] = a
		if a.From != nil {
			p := *a.From
			out[i].From = &p
		}
		if a.To != nil {
			p := *a.To
			out[i].To = &p
		}
	}
	return out
}
