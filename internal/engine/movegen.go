package engine

var (
	rookDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs = []Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	knightDirs = []Position{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
	kingDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
)

// PseudoLegalMoves returns every destination the piece on from can move to
// by its movement pattern alone, ignoring whether the move leaves its own
// king in check. An empty or off-board from yields no moves. Check detection
// is built on this tier; callers wanting playable moves use LegalMoves.
func PseudoLegalMoves(b Board, from Position) []Position {
	pc := b.PieceAt(from)
	if pc == nil {
		return []Position{}
	}
	switch pc.Type {
	case Pawn:
		return pawnMoves(b, from, pc)
	case Knight:
		return stepMoves(b, from, pc, knightDirs)
	case King:
		return stepMoves(b, from, pc, kingDirs)
	case Rook:
		return rayMoves(b, from, pc, rookDirs)
	case Bishop:
		return rayMoves(b, from, pc, bishopDirs)
	case Queen:
		return append(rayMoves(b, from, pc, rookDirs), rayMoves(b, from, pc, bishopDirs)...)
	}
	return []Position{}
}

func pawnMoves(b Board, from Position, pc *Piece) []Position {
	moves := []Position{}
	forward := Position{X: 0, Y: -1}
	startRank := 6
	if pc.Color == Black {
		forward = Position{X: 0, Y: 1}
		startRank = 1
	}
	// Forward one if empty, forward two from the starting rank if both
	// squares are empty.
	one := from.add(forward)
	if one.onBoard() && b.PieceAt(one) == nil {
		moves = append(moves, one)
		two := one.add(forward)
		if from.Y == startRank && b.PieceAt(two) == nil {
			moves = append(moves, two)
		}
	}
	// Diagonal captures only onto occupied enemy squares. No en passant.
	for _, dx := range []int{-1, 1} {
		target := Position{X: from.X + dx, Y: from.Y + forward.Y}
		if victim := b.PieceAt(target); victim != nil && victim.Color != pc.Color {
			moves = append(moves, target)
		}
	}
	return moves
}

func stepMoves(b Board, from Position, pc *Piece, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		target := from.add(dir)
		if !target.onBoard() {
			continue
		}
		if occupant := b.PieceAt(target); occupant == nil || occupant.Color != pc.Color {
			moves = append(moves, target)
		}
	}
	return moves
}

func rayMoves(b Board, from Position, pc *Piece, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		for target := from.add(dir); target.onBoard(); target = target.add(dir) {
			occupant := b.PieceAt(target)
			if occupant == nil {
				moves = append(moves, target)
				continue
			}
			if occupant.Color != pc.Color {
				moves = append(moves, target)
			}
			break
		}
	}
	return moves
}
