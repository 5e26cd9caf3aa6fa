package model

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gambitchess/gambit-backend/internal/engine"
)

func pos(x, y int) engine.Position {
	return engine.Position{X: x, Y: y}
}

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("test-game")
	if _, err := g.AddPlayer("alice"); err != nil {
		t.Fatalf("seating white failed: %v", err)
	}
	if _, err := g.AddPlayer("bob"); err != nil {
		t.Fatalf("seating black failed: %v", err)
	}
	return g
}

func TestNewGameInitialState(t *testing.T) {
	g := NewGame("g1")
	state := g.GetState()

	if state.ToMove != engine.White {
		t.Errorf("ToMove = %v, want white", state.ToMove)
	}
	if state.Status != engine.StatusPlaying {
		t.Errorf("Status = %v, want playing", state.Status)
	}
	if state.Resolve != nil {
		t.Errorf("Resolve = %v, want nil", *state.Resolve)
	}
	want := engine.NewStandardBoard()
	if diff := cmp.Diff(want, state.Board, cmp.AllowUnexported(engine.Board{})); diff != "" {
		t.Errorf("board mismatch (-want +got):\n%s", diff)
	}
}

func TestAddPlayerSeats(t *testing.T) {
	g := NewGame("g1")

	c1, err := g.AddPlayer("alice")
	if err != nil || c1 != engine.White {
		t.Errorf("first seat = %v, %v, want white, nil", c1, err)
	}
	c2, err := g.AddPlayer("bob")
	if err != nil || c2 != engine.Black {
		t.Errorf("second seat = %v, %v, want black, nil", c2, err)
	}
	if _, err := g.AddPlayer("carol"); err == nil {
		t.Error("third seat accepted, want game is full")
	}
	if g.CanSpectate() {
		t.Error("full game reports spectator seats")
	}
}

func TestMakeMoveTurnEnforcement(t *testing.T) {
	g := newTestGame(t)

	if err := g.MakeMove("bob", PlayerMove{From: pos(4, 1), To: pos(4, 3)}); err == nil {
		t.Error("black moved first, want not your turn")
	}
	if err := g.MakeMove("carol", PlayerMove{From: pos(4, 6), To: pos(4, 4)}); err == nil {
		t.Error("outsider moved, want player not in game")
	}
	if err := g.MakeMove("alice", PlayerMove{From: pos(4, 1), To: pos(4, 3)}); err == nil {
		t.Error("white moved a black pawn, want not your piece")
	}
	if err := g.MakeMove("alice", PlayerMove{From: pos(4, 6), To: pos(4, 4)}); err != nil {
		t.Errorf("legal opening move rejected: %v", err)
	}
}

func TestMakeMoveUpdatesState(t *testing.T) {
	g := newTestGame(t)

	if err := g.MakeMove("alice", PlayerMove{From: pos(4, 6), To: pos(4, 4)}); err != nil {
		t.Fatalf("e4 failed: %v", err)
	}
	state := g.GetState()

	if state.ToMove != engine.Black {
		t.Errorf("ToMove = %v, want black", state.ToMove)
	}
	if len(state.MoveHistory) != 1 || state.MoveHistory[0].WhitePly == nil {
		t.Fatalf("move history = %+v, want one pair with a white ply", state.MoveHistory)
	}
	if got := state.MoveHistory[0].WhitePly.Notation; got != "e4" {
		t.Errorf("notation = %q, want %q", got, "e4")
	}
	wantLast := &SimpleMove{From: pos(4, 6), To: pos(4, 4)}
	if diff := cmp.Diff(wantLast, state.LastMove); diff != "" {
		t.Errorf("last move mismatch (-want +got):\n%s", diff)
	}
}

func TestMakeMoveRejectsIllegalMove(t *testing.T) {
	g := newTestGame(t)

	err := g.MakeMove("alice", PlayerMove{From: pos(0, 7), To: pos(0, 4)})
	if !errors.Is(err, engine.ErrIllegalMove) {
		t.Errorf("blocked rook: err = %v, want ErrIllegalMove", err)
	}
	err = g.MakeMove("alice", PlayerMove{From: pos(4, 4), To: pos(4, 3)})
	if !errors.Is(err, engine.ErrInvalidSource) {
		t.Errorf("empty square: err = %v, want ErrInvalidSource", err)
	}
}

func TestFoolsMateResolvesGame(t *testing.T) {
	g := newTestGame(t)
	resolved := make(chan GameState, 1)
	g.SetResolveHandler(func(state GameState) {
		resolved <- state
	})

	moves := []struct {
		player string
		move   PlayerMove
	}{
		{"alice", PlayerMove{From: pos(5, 6), To: pos(5, 5)}}, // f3
		{"bob", PlayerMove{From: pos(4, 1), To: pos(4, 3)}},   // e5
		{"alice", PlayerMove{From: pos(6, 6), To: pos(6, 4)}}, // g4
		{"bob", PlayerMove{From: pos(3, 0), To: pos(7, 4)}},   // Qh4#
	}
	for _, m := range moves {
		if err := g.MakeMove(m.player, m.move); err != nil {
			t.Fatalf("MakeMove(%s, %v) failed: %v", m.player, m.move, err)
		}
	}

	select {
	case state := <-resolved:
		if state.Resolve == nil || *state.Resolve != "checkmate" {
			t.Errorf("resolve = %v, want checkmate", state.Resolve)
		}
		if state.Status != engine.StatusCheckmate {
			t.Errorf("status = %v, want checkmate", state.Status)
		}
		if last := state.MoveHistory[len(state.MoveHistory)-1].BlackPly; last == nil || last.Notation != "Qh4#" {
			t.Errorf("final ply = %+v, want Qh4#", last)
		}
	case <-time.After(time.Second):
		t.Fatal("resolve handler never fired")
	}

	if err := g.MakeMove("alice", PlayerMove{From: pos(4, 6), To: pos(4, 4)}); err == nil {
		t.Error("move accepted after checkmate")
	}
}

func TestPromotionHandshake(t *testing.T) {
	board := engine.NewBoard()
	board.Place(pos(4, 1), engine.Piece{Type: engine.Pawn, Color: engine.White, HasMoved: true})
	board.Place(pos(0, 7), engine.Piece{Type: engine.King, Color: engine.White})
	board.Place(pos(7, 3), engine.Piece{Type: engine.King, Color: engine.Black, HasMoved: true})

	g := NewGameWithBoard("promo", board)
	if _, err := g.AddPlayer("alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddPlayer("bob"); err != nil {
		t.Fatal(err)
	}

	if err := g.MakeMove("alice", PlayerMove{From: pos(4, 1), To: pos(4, 0)}); err != nil {
		t.Fatalf("promotion push failed: %v", err)
	}

	state := g.GetState()
	if state.PromotionSquare == nil || *state.PromotionSquare != pos(4, 0) {
		t.Fatalf("PromotionSquare = %v, want e8", state.PromotionSquare)
	}
	if got := state.Board.PieceAt(pos(4, 0)); got == nil || got.Type != engine.Queen {
		t.Errorf("provisional piece = %v, want queen", got)
	}
	if state.ToMove != engine.White {
		t.Error("turn passed before the promotion choice")
	}
	if err := g.MakeMove("alice", PlayerMove{From: pos(0, 7), To: pos(0, 6)}); err == nil {
		t.Error("move accepted while promotion pending")
	}

	if err := g.ApplyPromotion("alice", engine.King); err == nil {
		t.Error("promotion to king accepted")
	}
	if err := g.ApplyPromotion("alice", engine.Rook); err != nil {
		t.Fatalf("ApplyPromotion(rook) failed: %v", err)
	}

	state = g.GetState()
	if state.PromotionSquare != nil {
		t.Error("PromotionSquare still set after the choice")
	}
	if got := state.Board.PieceAt(pos(4, 0)); got == nil || got.Type != engine.Rook {
		t.Errorf("promoted piece = %v, want rook", got)
	}
	if state.ToMove != engine.Black {
		t.Error("turn did not pass after promotion")
	}
	if got := state.MoveHistory[0].WhitePly.Notation; got != "e8=R" {
		t.Errorf("notation = %q, want %q", got, "e8=R")
	}
}

func TestResign(t *testing.T) {
	g := newTestGame(t)

	if err := g.Resign("carol"); err == nil {
		t.Error("outsider resigned")
	}
	if err := g.Resign("bob"); err != nil {
		t.Fatalf("Resign failed: %v", err)
	}
	state := g.GetState()
	if state.Resolve == nil || *state.Resolve != "black resigned" {
		t.Errorf("resolve = %v, want black resigned", state.Resolve)
	}
	if err := g.Resign("alice"); err == nil {
		t.Error("resign accepted after game over")
	}
}

func TestDrawOfferAndAccept(t *testing.T) {
	g := newTestGame(t)

	if err := g.AcceptDraw("bob"); err == nil {
		t.Error("draw accepted with no offer on the table")
	}
	if err := g.OfferDraw("alice"); err != nil {
		t.Fatalf("OfferDraw failed: %v", err)
	}
	if err := g.AcceptDraw("alice"); err == nil {
		t.Error("offerer accepted their own draw")
	}
	if err := g.AcceptDraw("bob"); err != nil {
		t.Fatalf("AcceptDraw failed: %v", err)
	}
	state := g.GetState()
	if state.Resolve == nil || *state.Resolve != "draw agreed" {
		t.Errorf("resolve = %v, want draw agreed", state.Resolve)
	}
}

func TestLegalMovesAt(t *testing.T) {
	g := newTestGame(t)

	got := g.LegalMovesAt(pos(4, 6))
	want := []engine.Position{pos(4, 5), pos(4, 4)}
	sorted := cmpopts.SortSlices(func(a, b engine.Position) bool {
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	if diff := cmp.Diff(want, got, sorted); diff != "" {
		t.Errorf("LegalMovesAt mismatch (-want +got):\n%s", diff)
	}
}

func TestClockExpired(t *testing.T) {
	c := NewClock(5 * time.Millisecond)
	if c.Expired() {
		t.Error("fresh clock already expired")
	}
	c.Start()
	time.Sleep(10 * time.Millisecond)
	if !c.Expired() {
		t.Error("running clock did not expire")
	}
}

func TestQueuePairing(t *testing.T) {
	q := NewQueue()

	if _, _, ok := q.NextPair(); ok {
		t.Error("NextPair on an empty queue returned a pair")
	}
	if err := q.AddPlayer(Player{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := q.AddPlayer(Player{ID: "a"}); err == nil {
		t.Error("duplicate queue entry accepted")
	}
	if err := q.AddPlayer(Player{ID: "b"}); err != nil {
		t.Fatal(err)
	}

	p1, p2, ok := q.NextPair()
	if !ok || p1.ID != "a" || p2.ID != "b" {
		t.Errorf("NextPair = %v, %v, %v, want a, b, true", p1.ID, p2.ID, ok)
	}
	if q.Size() != 0 {
		t.Errorf("queue size = %d after pairing, want 0", q.Size())
	}
}
