package engine

type GameStatus string

const (
	StatusPlaying   GameStatus = "playing"
	StatusCheck     GameStatus = "check"
	StatusCheckmate GameStatus = "checkmate"
	StatusStalemate GameStatus = "stalemate"
)

// Evaluate classifies the position for the side to move: checkmate when in
// check with no legal move, stalemate when not in check with no legal move,
// check when in check with moves left, playing otherwise.
func Evaluate(b Board, toMove Color) GameStatus {
	inCheck := IsKingInCheck(b, toMove)
	if hasLegalMove(b, toMove) {
		if inCheck {
			return StatusCheck
		}
		return StatusPlaying
	}
	if inCheck {
		return StatusCheckmate
	}
	return StatusStalemate
}

func hasLegalMove(b Board, c Color) bool {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			from := Position{X: x, Y: y}
			pc := b.PieceAt(from)
			if pc == nil || pc.Color != c {
				continue
			}
			if len(LegalMoves(b, from)) > 0 {
				return true
			}
		}
	}
	return false
}
