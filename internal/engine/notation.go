package engine

import "strings"

// Algebraic renders an executed move in standard algebraic notation.
// before is the board the move was played on, after the board it produced;
// the check/mate suffix comes from evaluating after for the opponent.
//
// The engine never generates castling, but a king sliding two files is still
// rendered O-O / O-O-O so externally constructed positions display sanely.
func Algebraic(m Move, before, after Board, mover Color) string {
	var sb strings.Builder

	if m.Piece.Type == King && abs(m.To.X-m.From.X) == 2 {
		if m.To.X > m.From.X {
			sb.WriteString("O-O")
		} else {
			sb.WriteString("O-O-O")
		}
		sb.WriteString(statusSuffix(after, mover))
		return sb.String()
	}

	if m.Piece.Type == Pawn {
		if m.IsCapture {
			sb.WriteString(m.From.fileNotation())
		}
	} else {
		sb.WriteString(m.Piece.Type.notation())
		sb.WriteString(disambiguation(m, before))
	}
	if m.IsCapture {
		sb.WriteString("x")
	}
	sb.WriteString(m.To.squareNotation())
	if m.IsPromotion && m.PromotedPiece != nil {
		sb.WriteString("=")
		sb.WriteString(m.PromotedPiece.Type.notation())
	}
	sb.WriteString(statusSuffix(after, mover))
	return sb.String()
}

// disambiguation finds other same-type, same-color pieces whose movement
// pattern also covers the destination and returns the minimal source
// qualifier: file if no rival shares the file, rank if the file is shared
// but the rank is not, both otherwise.
func disambiguation(m Move, before Board) string {
	sameFile, sameRank, conflict := false, false, false
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			from := Position{X: x, Y: y}
			if from == m.From {
				continue
			}
			pc := before.PieceAt(from)
			if pc == nil || pc.Type != m.Piece.Type || pc.Color != m.Piece.Color {
				continue
			}
			for _, to := range PseudoLegalMoves(before, from) {
				if to != m.To {
					continue
				}
				conflict = true
				if from.X == m.From.X {
					sameFile = true
				}
				if from.Y == m.From.Y {
					sameRank = true
				}
				break
			}
		}
	}
	switch {
	case !conflict:
		return ""
	case !sameFile:
		return m.From.fileNotation()
	case !sameRank:
		return m.From.rankNotation()
	default:
		return m.From.fileNotation() + m.From.rankNotation()
	}
}

func statusSuffix(after Board, mover Color) string {
	switch Evaluate(after, mover.Opponent()) {
	case StatusCheckmate:
		return "#"
	case StatusCheck:
		return "+"
	}
	return ""
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
