package model

import "github.com/gambitchess/gambit-backend/internal/engine"

type Player struct {
	ID       string
	Color    engine.Color
	TimeLeft int
}

// ClientPlayer is the seat info mirrored to clients; TimeLeft is in tenths
// of a second.
type ClientPlayer struct {
	ID       string       `json:"name"`
	Color    engine.Color `json:"color"`
	TimeLeft int          `json:"timeLeft"`
}
