package usecase

import (
	"time"

	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/rocketscienceinc/ludo-backend/internal/ludo"
)

const (
	EventRoomCreated        = "room_created"
	EventPlayerJoined       = "player_joined"
	EventGameState          = "game_state"
	EventDiceResult         = "dice_result"
	EventMoveAccepted       = "move_accepted"
	EventTokensCaptured     = "tokens_captured"
	EventGameOver           = "game_over"
	EventChatMessage        = "chat_message"
	EventPlayerLeft         = "player_left"
	EventPlayerDisconnected = "player_disconnected"
	EventPlayerReconnected  = "player_reconnected"
)

// Event is a server push. Payload is one of the structs below.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type RoomCreated struct {
	RoomID string             `json:"roomId"`
	Room   *entity.PublicRoom `json:"room"`
}

type PlayerJoined struct {
	Player entity.PublicPlayer `json:"player"`
	Room   *entity.PublicRoom  `json:"room"`
}

type GameState struct {
	Game *entity.Game `json:"game"`
}

type DiceResult struct {
	Value int    `json:"value"`
	By    string `json:"by"`
}

type MoveAccepted struct {
	Game *entity.Game `json:"game"`
}

type TokensCaptured struct {
	Captured []ludo.Capture `json:"captured"`
}

type GameOver struct {
	Winner string       `json:"winner"`
	Game   *entity.Game `json:"game"`
}

type ChatMessage struct {
	From string    `json:"from"`
	Name string    `json:"name"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type PlayerLeft struct {
	PlayerID string             `json:"playerId"`
	Room     *entity.PublicRoom `json:"room"`
}

type PlayerPresence struct {
	PlayerID string `json:"playerId"`
}
