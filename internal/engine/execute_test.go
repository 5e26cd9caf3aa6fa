package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExecuteMovePawnDoubleStep(t *testing.T) {
	b := NewStandardBoard()

	res, err := ExecuteMove(b, pos(4, 6), pos(4, 4), "")
	if err != nil {
		t.Fatalf("ExecuteMove(e2e4) failed: %v", err)
	}

	moved := res.Board.PieceAt(pos(4, 4))
	if moved == nil {
		t.Fatal("no piece on e4 after the move")
	}
	want := Piece{Type: Pawn, Color: White, HasMoved: true}
	if diff := cmp.Diff(want, *moved); diff != "" {
		t.Errorf("moved piece mismatch (-want +got):\n%s", diff)
	}
	if res.Board.PieceAt(pos(4, 6)) != nil {
		t.Error("e2 still occupied after the move")
	}
	if res.Move.IsCapture || res.Move.CapturedPiece != nil {
		t.Error("quiet pawn push recorded as a capture")
	}
	if res.Move.Piece.HasMoved {
		t.Error("move record should snapshot the piece before HasMoved flips")
	}
}

func TestExecuteMoveDoesNotMutateInput(t *testing.T) {
	b := NewStandardBoard()
	snapshot := b.Copy()

	if _, err := ExecuteMove(b, pos(6, 7), pos(5, 5), ""); err != nil {
		t.Fatalf("ExecuteMove(Ng1f3) failed: %v", err)
	}
	if diff := cmp.Diff(snapshot, b, boardDiff); diff != "" {
		t.Errorf("input board mutated (-want +got):\n%s", diff)
	}

	// Failed calls must not touch the board either.
	if _, err := ExecuteMove(b, pos(0, 7), pos(0, 3), ""); err == nil {
		t.Fatal("expected blocked rook move to fail")
	}
	if diff := cmp.Diff(snapshot, b, boardDiff); diff != "" {
		t.Errorf("input board mutated by failed call (-want +got):\n%s", diff)
	}
}

func TestExecuteMoveCapture(t *testing.T) {
	b := testBoard(map[Position]Piece{
		pos(4, 7): {Type: King, Color: White},
		pos(4, 0): {Type: King, Color: Black},
		pos(3, 4): {Type: Rook, Color: White, HasMoved: true},
		pos(3, 1): {Type: Knight, Color: Black},
	})

	res, err := ExecuteMove(b, pos(3, 4), pos(3, 1), "")
	if err != nil {
		t.Fatalf("ExecuteMove failed: %v", err)
	}
	if !res.Move.IsCapture {
		t.Error("capture not flagged")
	}
	wantVictim := Piece{Type: Knight, Color: Black}
	if res.Move.CapturedPiece == nil {
		t.Fatal("captured piece not recorded")
	}
	if diff := cmp.Diff(wantVictim, *res.Move.CapturedPiece); diff != "" {
		t.Errorf("captured piece mismatch (-want +got):\n%s", diff)
	}
	if got := res.Board.PieceAt(pos(3, 1)); got == nil || got.Type != Rook {
		t.Errorf("destination holds %v, want the rook", got)
	}
}

func TestExecuteMoveErrors(t *testing.T) {
	b := NewStandardBoard()

	_, err := ExecuteMove(b, pos(4, 4), pos(4, 3), "")
	if !errors.Is(err, ErrInvalidSource) {
		t.Errorf("empty source: err = %v, want ErrInvalidSource", err)
	}

	_, err = ExecuteMove(b, pos(0, 7), pos(0, 4), "")
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("blocked rook: err = %v, want ErrIllegalMove", err)
	}

	// A move that would expose the own king is illegal even though the
	// movement pattern allows it.
	pinned := testBoard(map[Position]Piece{
		pos(4, 7): {Type: King, Color: White},
		pos(4, 6): {Type: Bishop, Color: White},
		pos(4, 0): {Type: Rook, Color: Black},
		pos(0, 0): {Type: King, Color: Black},
	})
	_, err = ExecuteMove(pinned, pos(4, 6), pos(3, 5), "")
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("pinned bishop: err = %v, want ErrIllegalMove", err)
	}
}

func TestExecuteMovePromotionDefaultsToQueen(t *testing.T) {
	b := testBoard(map[Position]Piece{
		pos(4, 1): {Type: Pawn, Color: White, HasMoved: true},
		pos(0, 7): {Type: King, Color: White},
		pos(7, 2): {Type: King, Color: Black},
	})

	res, err := ExecuteMove(b, pos(4, 1), pos(4, 0), "")
	if err != nil {
		t.Fatalf("ExecuteMove failed: %v", err)
	}
	if !res.NeedsPromotion {
		t.Error("NeedsPromotion not set without an explicit choice")
	}
	if res.Move.PromotedPiece == nil || res.Move.PromotedPiece.Type != Queen {
		t.Errorf("provisional piece = %v, want queen", res.Move.PromotedPiece)
	}
	if got := res.Board.PieceAt(pos(4, 0)); got == nil || got.Type != Queen || !got.HasMoved {
		t.Errorf("promotion square holds %v, want a moved queen", got)
	}
}

func TestExecuteMovePromotionExplicitChoice(t *testing.T) {
	tests := []struct {
		name      string
		promotion PieceType
		wantType  PieceType
		wantFlag  bool
	}{
		{"knight underpromotion", Knight, Knight, false},
		{"rook underpromotion", Rook, Rook, false},
		{"explicit queen", Queen, Queen, false},
		{"bogus choice falls back to queen", King, Queen, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBoard(map[Position]Piece{
				pos(2, 6): {Type: Pawn, Color: Black, HasMoved: true},
				pos(0, 0): {Type: King, Color: White},
				pos(7, 2): {Type: King, Color: Black},
			})
			res, err := ExecuteMove(b, pos(2, 6), pos(2, 7), tt.promotion)
			if err != nil {
				t.Fatalf("ExecuteMove failed: %v", err)
			}
			if res.NeedsPromotion != tt.wantFlag {
				t.Errorf("NeedsPromotion = %v, want %v", res.NeedsPromotion, tt.wantFlag)
			}
			if !res.Move.IsPromotion {
				t.Error("IsPromotion not set")
			}
			if got := res.Board.PieceAt(pos(2, 7)); got == nil || got.Type != tt.wantType {
				t.Errorf("promotion square holds %v, want %v", got, tt.wantType)
			}
		})
	}
}

func TestExecuteMovePromotionOnlyOnBackRank(t *testing.T) {
	b := testBoard(map[Position]Piece{
		pos(4, 2): {Type: Pawn, Color: White, HasMoved: true},
		pos(0, 7): {Type: King, Color: White},
		pos(7, 0): {Type: King, Color: Black},
	})

	res, err := ExecuteMove(b, pos(4, 2), pos(4, 1), "")
	if err != nil {
		t.Fatalf("ExecuteMove failed: %v", err)
	}
	if res.NeedsPromotion || res.Move.IsPromotion {
		t.Error("promotion triggered before the back rank")
	}
}
