package service

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gambitchess/gambit-backend/internal/engine"
	"github.com/gambitchess/gambit-backend/internal/model"
	"github.com/gambitchess/gambit-backend/internal/store"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// MatchFoundEvent tells a queued player where to go.
type MatchFoundEvent struct {
	GameID string       `json:"gameId"`
	Color  engine.Color `json:"color"`
}

// GameManager owns every live game, the matchmaking queue and the archive.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan MatchFoundEvent
	archive          *store.Store
	mu               sync.RWMutex
}

// NewGameManager starts the matchmaking processor. archive may be nil, in
// which case finished games are not persisted.
func NewGameManager(archive *store.Store) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan MatchFoundEvent),
		archive:          archive,
	}

	go gm.processMatchmaking()

	return gm
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return errors.New("game already exists")
	}
	gm.games[gameID] = gm.newGame(gameID)
	return nil
}

// newGame wires a fresh game to the archive. Caller holds gm.mu.
func (gm *GameManager) newGame(gameID string) *model.Game {
	game := model.NewGame(gameID)
	game.SetResolveHandler(func(state model.GameState) {
		gm.archiveGame(game, state)
	})
	return game
}

func (gm *GameManager) archiveGame(game *model.Game, state model.GameState) {
	if gm.archive == nil || state.Resolve == nil {
		return
	}
	rec := store.GameRecord{
		ID:        game.ID,
		White:     state.Players.White.ID,
		Black:     state.Players.Black.ID,
		Moves:     notations(state.MoveHistory),
		Resolve:   *state.Resolve,
		StartedAt: game.CreatedAt(),
		EndedAt:   time.Now(),
	}
	if err := gm.archive.SaveRecord(rec); err != nil {
		log.Printf("archive game %s: %v", game.ID, err)
	}
}

func notations(history []model.MovePair) []string {
	moves := []string{}
	for _, pair := range history {
		if pair.WhitePly != nil {
			moves = append(moves, pair.WhitePly.Notation)
		}
		if pair.BlackPly != nil {
			moves = append(moves, pair.BlackPly.Notation)
		}
	}
	return moves
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, errors.New("game not found")
	}
	return game, nil
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (engine.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.PlayerMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) Promote(gameID string, playerID string, choice engine.PieceType) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.ApplyPromotion(playerID, choice)
}

func (gm *GameManager) Resign(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Resign(playerID)
}

func (gm *GameManager) OfferDraw(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.OfferDraw(playerID)
}

func (gm *GameManager) AcceptDraw(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.AcceptDraw(playerID)
}

func (gm *GameManager) LegalMoves(gameID string, pos engine.Position) ([]engine.Position, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMovesAt(pos), nil
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) {
	gm.queue.Remove(playerID)
}

// RegisterMatchmakingChannel hands the manager a channel to deliver the
// player's MatchFoundEvent on. A stale channel for the same player is
// replaced.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// The channel is closed by whoever created it.
	delete(gm.matchingChannels, playerID)
}

func (gm *GameManager) processMatchmaking() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		for {
			p1, p2, ok := gm.queue.NextPair()
			if !ok {
				break
			}
			gm.pairUp(p1, p2)
		}
	}
}

func (gm *GameManager) pairUp(p1, p2 model.Player) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gameID := uuid.New().String()
	game := gm.newGame(gameID)

	c1, err := game.AddPlayer(p1.ID)
	if err != nil {
		log.Printf("matchmaking: seat %s: %v", p1.ID, err)
		return
	}
	c2, err := game.AddPlayer(p2.ID)
	if err != nil {
		log.Printf("matchmaking: seat %s: %v", p2.ID, err)
		return
	}
	gm.games[gameID] = game

	gm.notifyMatch(p1.ID, MatchFoundEvent{GameID: gameID, Color: c1})
	gm.notifyMatch(p2.ID, MatchFoundEvent{GameID: gameID, Color: c2})
}

// notifyMatch delivers the event if the player is listening; a player with
// no channel (or a full one) simply finds the game via the lobby instead.
// Caller holds gm.mu.
func (gm *GameManager) notifyMatch(playerID string, event MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return
	}
	select {
	case ch <- event:
		delete(gm.matchingChannels, playerID)
		close(ch)
	default:
		log.Printf("matchmaking: dropped event for %s", playerID)
	}
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID)
}
