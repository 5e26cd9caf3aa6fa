package ws

import (
	"encoding/json"
)

// MessageType enumerates the websocket messages the server understands and
// emits.
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypePromotion  MessageType = "promotion"
	MessageTypeLegalMoves MessageType = "legalMoves"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeDrawOffer  MessageType = "drawOffer"
	MessageTypeDrawAccept MessageType = "drawAccept"
	MessageTypeResign     MessageType = "resign"
	MessageTypeError      MessageType = "error"
)

// Message is the envelope for every websocket frame.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
