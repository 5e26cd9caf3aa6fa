package model

import "github.com/gambitchess/gambit-backend/internal/engine"

// PlayerMove is the move payload a client submits.
type PlayerMove struct {
	From      engine.Position  `json:"from"`
	To        engine.Position  `json:"to"`
	Promotion engine.PieceType `json:"promotion"`
}

// Ply is one half-move as it appears in the game record.
type Ply struct {
	Piece         engine.Piece     `json:"piece"`
	From          engine.Position  `json:"from"`
	To            engine.Position  `json:"to"`
	CapturedPiece *engine.Piece    `json:"capturedPiece"`
	Promotion     engine.PieceType `json:"promotion"`
	Notation      string           `json:"notation"`
}

// MovePair is one numbered move: white's ply and, once played, black's
// reply.
type MovePair struct {
	WhitePly *Ply `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}

type SimpleMove struct {
	From engine.Position `json:"from"`
	To   engine.Position `json:"to"`
}
