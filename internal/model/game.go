package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gambitchess/gambit-backend/internal/engine"
	"github.com/gambitchess/gambit-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

const initialClockTime = 600 * time.Second

// GameConnections holds the live websocket connections for one game.
type GameConnections struct {
	connections map[string]*websocket.Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

// Game is the single authoritative state of one game plus its observers.
// The rules live in the engine package; Game only sequences turns, clocks
// and the promotion handshake around it.
type Game struct {
	ID          string
	mu          sync.Mutex
	state       GameState
	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
	createdAt   time.Time

	// pending parks a move whose pawn reached the back rank without a
	// promotion choice. The board it was played on is kept so the choice
	// can be re-applied.
	pending   *pendingPromotion
	onResolve func(GameState)
}

type pendingPromotion struct {
	board engine.Board
	from  engine.Position
	to    engine.Position
}

type GameState struct {
	Sound           string            `json:"sound"`
	Board           engine.Board      `json:"board"`
	ToMove          engine.Color      `json:"toMove"`
	Status          engine.GameStatus `json:"status"`
	MoveHistory     []MovePair        `json:"moveHistory"`
	CapturedPieces  CapturedPieces    `json:"capturedPieces"`
	PromotionSquare *engine.Position  `json:"promotionSquare"`
	DrawOfferFrom   *engine.Color     `json:"drawOfferFrom"`
	LastMove        *SimpleMove       `json:"lastMove"`
	Resolve         *string           `json:"resolve"`
	Players         struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

type CapturedPieces struct {
	White []engine.Piece `json:"white"`
	Black []engine.Piece `json:"black"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:          id,
		state:       newGameState(),
		connections: NewGameConnections(),
		whiteClock:  NewClock(initialClockTime),
		blackClock:  NewClock(initialClockTime),
		createdAt:   time.Now(),
	}
}

// NewGameWithBoard starts a game from an arbitrary position, white to move.
// Used by fixtures and by rematch-from-position flows.
func NewGameWithBoard(id string, b engine.Board) *Game {
	g := NewGame(id)
	g.state.Board = b
	g.state.Status = engine.Evaluate(b, g.state.ToMove)
	return g
}

func newGameState() GameState {
	state := GameState{
		Board:          engine.NewStandardBoard(),
		ToMove:         engine.White,
		Status:         engine.StatusPlaying,
		MoveHistory:    make([]MovePair, 0),
		CapturedPieces: newCapturedPieces(),
	}
	state.Players.White = ClientPlayer{Color: engine.White, TimeLeft: 6000}
	state.Players.Black = ClientPlayer{Color: engine.Black, TimeLeft: 6000}
	return state
}

func newCapturedPieces() CapturedPieces {
	return CapturedPieces{
		White: make([]engine.Piece, 0),
		Black: make([]engine.Piece, 0),
	}
}

// SetResolveHandler installs the callback fired once when the game ends.
func (g *Game) SetResolveHandler(fn func(GameState)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onResolve = fn
}

func (g *Game) CreatedAt() time.Time {
	return g.createdAt
}

func (g *Game) AddPlayer(playerID string) (engine.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Players.White.ID == "" {
		g.state.Players.White.ID = playerID
		return engine.White, nil
	}
	if g.state.Players.Black.ID == "" {
		g.state.Players.Black.ID = playerID
		return engine.Black, nil
	}
	return "", errors.New("game is full")
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.state
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	if g.state.Players.White.ID != "" && g.state.Players.White.ID == playerID {
		return true
	}
	if g.state.Players.Black.ID != "" && g.state.Players.Black.ID == playerID {
		return true
	}
	return false
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.state.Players.White.ID == "" || g.state.Players.Black.ID == ""
}

func (g *Game) playerColor(playerID string) (engine.Color, bool) {
	if g.state.Players.White.ID == playerID {
		return engine.White, true
	}
	if g.state.Players.Black.ID == playerID {
		return engine.Black, true
	}
	return "", false
}

// LegalMovesAt returns the playable destinations for the piece on the given
// square, for clients highlighting a selection.
func (g *Game) LegalMovesAt(pos engine.Position) []engine.Position {
	g.mu.Lock()
	defer g.mu.Unlock()

	return engine.LegalMoves(g.state.Board, pos)
}

// MakeMove validates and applies a player's move. Engine rejections are
// returned as-is: the client pre-checks legality, so one arriving here is a
// client bug and the caller reports it back over the wire.
func (g *Game) MakeMove(playerID string, move PlayerMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Resolve != nil {
		return errors.New("game is over")
	}
	if g.pending != nil {
		return errors.New("promotion choice pending")
	}

	color, ok := g.playerColor(playerID)
	if !ok {
		return errors.New("player not in game")
	}
	if color != g.state.ToMove {
		return errors.New("not your turn")
	}
	pc := g.state.Board.PieceAt(move.From)
	if pc == nil {
		return fmt.Errorf("%w: nothing to move", engine.ErrInvalidSource)
	}
	if pc.Color != color {
		return errors.New("not your piece")
	}

	if g.clockFor(color).Expired() {
		g.resolve(string(color) + " flagged")
		return errors.New("out of time")
	}

	res, err := engine.ExecuteMove(g.state.Board, move.From, move.To, move.Promotion)
	if err != nil {
		return err
	}
	notation := engine.Algebraic(res.Move, g.state.Board, res.Board, color)

	if res.NeedsPromotion {
		// Park the move: show the provisional queen, block further play
		// until the choice arrives.
		g.pending = &pendingPromotion{board: g.state.Board, from: move.From, to: move.To}
		g.state.Board = res.Board
		to := move.To
		g.state.PromotionSquare = &to
		g.state.Sound = "move"
		go g.broadcastState()
		return nil
	}

	g.finalizeMove(res, notation)
	return nil
}

// ApplyPromotion re-applies a parked promotion move with the chosen piece,
// replacing the provisional queen.
func (g *Game) ApplyPromotion(playerID string, choice engine.PieceType) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return errors.New("no promotion pending")
	}
	color, ok := g.playerColor(playerID)
	if !ok {
		return errors.New("player not in game")
	}
	if color != g.state.ToMove {
		return errors.New("not your promotion")
	}
	switch choice {
	case engine.Queen, engine.Rook, engine.Bishop, engine.Knight:
	default:
		return fmt.Errorf("cannot promote to %s", choice)
	}

	res, err := engine.ExecuteMove(g.pending.board, g.pending.from, g.pending.to, choice)
	if err != nil {
		return err
	}
	notation := engine.Algebraic(res.Move, g.pending.board, res.Board, color)
	g.finalizeMove(res, notation)
	return nil
}

// finalizeMove commits an executed move: record, clocks, turn, status.
// Caller holds g.mu.
func (g *Game) finalizeMove(res engine.MoveResult, notation string) {
	mover := res.Move.Piece.Color

	if res.Move.CapturedPiece != nil {
		captured := *res.Move.CapturedPiece
		switch captured.Color {
		case engine.White:
			g.state.CapturedPieces.White = append(g.state.CapturedPieces.White, captured)
		case engine.Black:
			g.state.CapturedPieces.Black = append(g.state.CapturedPieces.Black, captured)
		}
	}

	ply := Ply{
		Piece:         res.Move.Piece,
		From:          res.Move.From,
		To:            res.Move.To,
		CapturedPiece: res.Move.CapturedPiece,
		Notation:      notation,
	}
	if res.Move.PromotedPiece != nil {
		ply.Promotion = res.Move.PromotedPiece.Type
	}
	if mover == engine.White {
		g.state.MoveHistory = append(g.state.MoveHistory, MovePair{WhitePly: &ply})
	} else if n := len(g.state.MoveHistory); n > 0 {
		g.state.MoveHistory[n-1].BlackPly = &ply
	} else {
		g.state.MoveHistory = append(g.state.MoveHistory, MovePair{BlackPly: &ply})
	}

	g.state.Board = res.Board
	g.state.LastMove = &SimpleMove{From: res.Move.From, To: res.Move.To}
	g.state.PromotionSquare = nil
	g.state.DrawOfferFrom = nil
	g.pending = nil
	g.state.ToMove = mover.Opponent()

	g.clockFor(mover).Stop()
	g.clockFor(g.state.ToMove).Start()
	g.state.Players.White.TimeLeft = int(g.whiteClock.TimeLeft().Milliseconds() / 100)
	g.state.Players.Black.TimeLeft = int(g.blackClock.TimeLeft().Milliseconds() / 100)

	g.state.Status = engine.Evaluate(g.state.Board, g.state.ToMove)
	switch {
	case res.Move.CapturedPiece != nil:
		g.state.Sound = "capture"
	default:
		g.state.Sound = "move"
	}

	switch g.state.Status {
	case engine.StatusCheck:
		g.state.Sound = "check"
	case engine.StatusCheckmate:
		g.resolve("checkmate")
		return
	case engine.StatusStalemate:
		g.resolve("stalemate")
		return
	}

	go g.broadcastState()
}

func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Resolve != nil {
		return errors.New("game is over")
	}
	color, ok := g.playerColor(playerID)
	if !ok {
		return errors.New("player not in game")
	}

	g.resolve(string(color) + " resigned")
	return nil
}

func (g *Game) OfferDraw(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Resolve != nil {
		return errors.New("game is over")
	}
	color, ok := g.playerColor(playerID)
	if !ok {
		return errors.New("player not in game")
	}

	g.state.DrawOfferFrom = &color
	go g.broadcastState()
	return nil
}

func (g *Game) AcceptDraw(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Resolve != nil {
		return errors.New("game is over")
	}
	color, ok := g.playerColor(playerID)
	if !ok {
		return errors.New("player not in game")
	}
	if g.state.DrawOfferFrom == nil || *g.state.DrawOfferFrom == color {
		return errors.New("no draw offer to accept")
	}

	g.resolve("draw agreed")
	return nil
}

// resolve ends the game. Caller holds g.mu.
func (g *Game) resolve(result string) {
	g.whiteClock.Stop()
	g.blackClock.Stop()
	g.state.Resolve = &result
	if g.onResolve != nil {
		go g.onResolve(g.state)
	}
	go g.broadcastState()
}

func (g *Game) clockFor(c engine.Color) *Clock {
	if c == engine.White {
		return g.whiteClock
	}
	return g.blackClock
}

func (g *Game) RegisterConnection(playerID string, conn *websocket.Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return errors.New("not authorized to join this game")
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the healthy connection, reject the newcomer.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()

	go g.broadcastState()
	return nil
}

func (g *Game) UnregisterConnection(playerID string) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	delete(g.connections.connections, playerID)
}

func (g *Game) broadcastState() {
	state := g.GetState()
	payload, err := json.Marshal(state)
	if err != nil {
		log.Printf("game %s: marshal state: %v", g.ID, err)
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, conn := range g.connections.connections {
		if err := conn.WriteJSON(ws.Message{
			Type:    ws.MessageTypeGameState,
			Payload: json.RawMessage(payload),
		}); err != nil {
			log.Printf("game %s: send state to %s: %v", g.ID, playerID, err)
			delete(g.connections.connections, playerID)
		}
	}
}
