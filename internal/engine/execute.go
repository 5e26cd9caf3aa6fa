package engine

import (
	"errors"
	"fmt"
)

// Sentinel failures from ExecuteMove. Callers are expected to have checked
// LegalMoves already, so hitting either one normally means a caller bug;
// compare with errors.Is.
var (
	ErrInvalidSource = errors.New("no piece at source square")
	ErrIllegalMove   = errors.New("move is not legal")
)

// Move records one executed move. Piece is the pre-move snapshot, before
// HasMoved flips.
type Move struct {
	From          Position `json:"from"`
	To            Position `json:"to"`
	Piece         Piece    `json:"piece"`
	CapturedPiece *Piece   `json:"capturedPiece"`
	PromotedPiece *Piece   `json:"promotedPiece"`
	IsCapture     bool     `json:"isCapture"`
	IsPromotion   bool     `json:"isPromotion"`
}

// MoveResult is the outcome of a successful ExecuteMove. NeedsPromotion is
// set when a pawn reached the back rank without an explicit promotion
// choice: the board holds a provisional queen and the caller must solicit a
// choice and re-run the move with it.
type MoveResult struct {
	Board          Board `json:"board"`
	Move           Move  `json:"move"`
	NeedsPromotion bool  `json:"needsPromotion"`
}

func promotable(t PieceType) bool {
	switch t {
	case Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

// ExecuteMove validates from -> to against LegalMoves and applies it to a
// copy of the board. The input board is never touched: validation happens
// before the copy is made, so a failed call leaves nothing half-moved.
// promotion picks the piece a back-rank pawn becomes; pass "" to get the
// provisional-queen flow described on MoveResult.
func ExecuteMove(b Board, from, to Position, promotion PieceType) (MoveResult, error) {
	mover := b.PieceAt(from)
	if mover == nil {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrInvalidSource, from.squareNotation())
	}
	legal := false
	for _, dest := range LegalMoves(b, from) {
		if dest == to {
			legal = true
			break
		}
	}
	if !legal {
		return MoveResult{}, fmt.Errorf("%w: %s%s", ErrIllegalMove, from.squareNotation(), to.squareNotation())
	}

	nb := b.Copy()
	move := Move{From: from, To: to, Piece: *mover}
	if victim := nb.PieceAt(to); victim != nil {
		captured := *victim
		move.CapturedPiece = &captured
		move.IsCapture = true
	}
	moved := *mover
	moved.HasMoved = true
	nb.set(to, &moved)
	nb.set(from, nil)

	result := MoveResult{}
	backRank := 0
	if moved.Color == Black {
		backRank = 7
	}
	if moved.Type == Pawn && to.Y == backRank {
		chosen := promotion
		if !promotable(chosen) {
			chosen = Queen
			result.NeedsPromotion = true
		}
		promoted := Piece{Type: chosen, Color: moved.Color, HasMoved: true}
		nb.set(to, &promoted)
		p := promoted
		move.PromotedPiece = &p
		move.IsPromotion = true
	}

	result.Board = nb
	result.Move = move
	return result, nil
}
