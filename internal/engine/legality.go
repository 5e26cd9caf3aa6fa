package engine

// IsKingInCheck reports whether the given color's king is attacked. A board
// with no king of that color is never in check. Attack detection runs on the
// pseudo tier only: routing it through LegalMoves would need check detection
// again, so the filtered tier is off limits here.
func IsKingInCheck(b Board, c Color) bool {
	kingPos, ok := b.FindPiece(King, c)
	if !ok {
		return false
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			from := Position{X: x, Y: y}
			pc := b.PieceAt(from)
			if pc == nil || pc.Color == c {
				continue
			}
			for _, to := range PseudoLegalMoves(b, from) {
				if to == kingPos {
					return true
				}
			}
		}
	}
	return false
}

// wouldExposeKing simulates the bare relocation from -> to on a copy and
// checks the mover's own king. Capture and promotion bookkeeping are
// irrelevant to the check question, only piece placement matters.
func wouldExposeKing(b Board, from, to Position) bool {
	pc := b.PieceAt(from)
	if pc == nil {
		return false
	}
	trial := b.Copy()
	trial.set(to, trial.PieceAt(from))
	trial.set(from, nil)
	return IsKingInCheck(trial, pc.Color)
}

// LegalMoves returns the pseudo-legal moves of the piece on from, minus any
// that would leave its own king in check.
func LegalMoves(b Board, from Position) []Position {
	moves := []Position{}
	for _, to := range PseudoLegalMoves(b, from) {
		if !wouldExposeKing(b, from, to) {
			moves = append(moves, to)
		}
	}
	return moves
}
