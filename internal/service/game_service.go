package service

import (
	"errors"
	"fmt"

	"github.com/gambitchess/gambit-backend/internal/engine"
	"github.com/gambitchess/gambit-backend/internal/model"
	"github.com/gambitchess/gambit-backend/internal/store"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
	archive     *store.Store
}

func NewGameService(gameManager *GameManager, archive *store.Store) *GameService {
	return &GameService{
		gameManager: gameManager,
		archive:     archive,
	}
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	return gameID, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (engine.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) LegalMoves(gameID string, pos engine.Position) ([]engine.Position, error) {
	return gs.gameManager.LegalMoves(gameID, pos)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.PlayerMove) error {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) HandlePromotion(gameID string, playerID string, choice engine.PieceType) error {
	return gs.gameManager.Promote(gameID, playerID, choice)
}

func (gs *GameService) HandleResign(gameID string, playerID string) error {
	return gs.gameManager.Resign(gameID, playerID)
}

func (gs *GameService) HandleDrawOffer(gameID string, playerID string) error {
	return gs.gameManager.OfferDraw(gameID, playerID)
}

func (gs *GameService) HandleDrawAccept(gameID string, playerID string) error {
	return gs.gameManager.AcceptDraw(gameID, playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) {
	gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan MatchFoundEvent) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string) {
	gs.gameManager.UnregisterConnection(gameID, playerID)
}

var errArchiveDisabled = errors.New("archive disabled")

func (gs *GameService) ArchivedGame(gameID string) (store.GameRecord, error) {
	if gs.archive == nil {
		return store.GameRecord{}, errArchiveDisabled
	}
	return gs.archive.GetRecord(gameID)
}

func (gs *GameService) RecentGames(n int) ([]store.GameRecord, error) {
	if gs.archive == nil {
		return nil, errArchiveDisabled
	}
	return gs.archive.RecentRecords(n)
}

func (gs *GameService) ArchiveStats() (store.Stats, error) {
	if gs.archive == nil {
		return store.Stats{}, errArchiveDisabled
	}
	return gs.archive.GetStats()
}
