package controller

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gambitchess/gambit-backend/internal/engine"
	"github.com/gambitchess/gambit-backend/internal/model"
	"github.com/gambitchess/gambit-backend/internal/service"
	"github.com/gambitchess/gambit-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection runs the read loop for one websocket connection.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Printf("register connection: %v", err)
		c.Close()
		return
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Printf("read error: %v", err)
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("parse error: %v", err)
			continue
		}
		if err := wsc.handleMessage(c, gameID, playerID, msg); err != nil {
			// An engine rejection here means the client played an unchecked
			// move; report it, never swallow it.
			log.Printf("game %s: %s: %v", gameID, msg.Type, err)
			wsc.sendError(c, err.Error())
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID)
}

func (wsc *WebSocketController) handleMessage(c *websocket.Conn, gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.PlayerMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypePromotion:
		var payload struct {
			Piece engine.PieceType `json:"piece"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}
		return wsc.gameService.HandlePromotion(gameID, playerID, payload.Piece)

	case ws.MessageTypeLegalMoves:
		var payload struct {
			Position engine.Position `json:"position"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return err
		}
		moves, err := wsc.gameService.LegalMoves(gameID, payload.Position)
		if err != nil {
			return err
		}
		return wsc.sendLegalMoves(c, payload.Position, moves)

	case ws.MessageTypeResign:
		return wsc.gameService.HandleResign(gameID, playerID)

	case ws.MessageTypeDrawOffer:
		return wsc.gameService.HandleDrawOffer(gameID, playerID)

	case ws.MessageTypeDrawAccept:
		return wsc.gameService.HandleDrawAccept(gameID, playerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendLegalMoves(c *websocket.Conn, pos engine.Position, moves []engine.Position) error {
	payload, err := json.Marshal(struct {
		Position engine.Position   `json:"position"`
		Moves    []engine.Position `json:"moves"`
	}{Position: pos, Moves: moves})
	if err != nil {
		return err
	}
	return c.WriteJSON(ws.Message{
		Type:    ws.MessageTypeLegalMoves,
		Payload: payload,
	})
}

func (wsc *WebSocketController) sendError(c *websocket.Conn, errorMsg string) {
	payload, err := json.Marshal(errorPayload{Message: errorMsg})
	if err != nil {
		return
	}
	if err := c.WriteJSON(ws.Message{
		Type:    ws.MessageTypeError,
		Payload: payload,
	}); err != nil {
		log.Printf("send error message: %v", err)
	}
}

type errorPayload struct {
	Message string `json:"message"`
}
