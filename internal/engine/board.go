package engine

import (
	"encoding/json"
	"fmt"
)

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) notation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return ""
	}
	return ""
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Piece is a plain value. Boards never share Piece pointers; copying a
// board copies its pieces.
type Piece struct {
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	HasMoved bool      `json:"hasMoved"`
}

// Position addresses a square: X is the file (0 = 'a'), Y is the row
// (0 = rank 8, black's back rank).
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) onBoard() bool {
	return p.X >= 0 && p.X < 8 && p.Y >= 0 && p.Y < 8
}

func (p Position) add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Position) squareNotation() string {
	return fmt.Sprintf("%c%d", p.X+97, 8-p.Y)
}

func (p Position) fileNotation() string {
	return fmt.Sprintf("%c", p.X+97)
}

func (p Position) rankNotation() string {
	return fmt.Sprintf("%d", 8-p.Y)
}

// Board is the 8x8 grid, nil for empty squares. Engine operations treat
// boards as values: nothing in this package mutates a caller's board, every
// move produces a fresh copy.
type Board struct {
	squares [8][8]*Piece
}

// NewBoard returns an empty board.
func NewBoard() Board {
	return Board{}
}

// NewStandardBoard returns the standard chess starting position.
func NewStandardBoard() Board {
	var b Board
	backRank := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for x, t := range backRank {
		b.Place(Position{X: x, Y: 0}, Piece{Type: t, Color: Black})
		b.Place(Position{X: x, Y: 7}, Piece{Type: t, Color: White})
	}
	for x := 0; x < 8; x++ {
		b.Place(Position{X: x, Y: 1}, Piece{Type: Pawn, Color: Black})
		b.Place(Position{X: x, Y: 6}, Piece{Type: Pawn, Color: White})
	}
	return b
}

// PieceAt returns the piece on the given square, or nil if the square is
// empty or off the board.
func (b *Board) PieceAt(pos Position) *Piece {
	if !pos.onBoard() {
		return nil
	}
	return b.squares[pos.Y][pos.X]
}

// Place puts a copy of the piece on the square. It is a setup helper for
// initializers and fixtures; play goes through ExecuteMove.
func (b *Board) Place(pos Position, pc Piece) {
	if !pos.onBoard() {
		return
	}
	p := pc
	b.squares[pos.Y][pos.X] = &p
}

func (b *Board) set(pos Position, pc *Piece) {
	b.squares[pos.Y][pos.X] = pc
}

// Copy returns a deep copy: the pieces themselves are duplicated so the two
// boards share nothing.
func (b *Board) Copy() Board {
	var nb Board
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if pc := b.squares[y][x]; pc != nil {
				p := *pc
				nb.squares[y][x] = &p
			}
		}
	}
	return nb
}

// FindPiece returns the position of the first piece matching type and color,
// scanning from black's back rank down.
func (b *Board) FindPiece(t PieceType, c Color) (Position, bool) {
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			pc := b.squares[y][x]
			if pc != nil && pc.Type == t && pc.Color == c {
				return Position{X: x, Y: y}, true
			}
		}
	}
	return Position{}, false
}

// MarshalJSON renders the board as a row-major 8x8 array with null for
// empty squares, rows top to bottom from rank 8.
func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*Piece, 8)
	for y := 0; y < 8; y++ {
		rows[y] = b.squares[y][:]
	}
	return json.Marshal(rows)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != 8 {
		return fmt.Errorf("board has %d rows, want 8", len(rows))
	}
	var nb Board
	for y, row := range rows {
		if len(row) != 8 {
			return fmt.Errorf("board row %d has %d squares, want 8", y, len(row))
		}
		for x, pc := range row {
			if pc != nil {
				p := *pc
				nb.squares[y][x] = &p
			}
		}
	}
	*b = nb
	return nil
}
