package websocket

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/rocketscienceinc/ludo-backend/internal/ludo"
)

const (
	actionCreateRoom    = "create_room"
	actionJoinRoom      = "join_room"
	actionStartGame     = "start_game"
	actionRollDice      = "roll_dice"
	actionMoveToken     = "move_token"
	actionSendChat      = "send_chat"
	actionLeaveRoom     = "leave_room"
	actionReconnectRoom = "reconnect_room"
)

// Message is a client request. ID is echoed back in the ack.
type Message struct {
	Action  string          `json:"action"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ack is the common part of every reply; action replies embed it.
type ack struct {
	Action string        `json:"action"`
	ID     string        `json:"id,omitempty"`
	OK     bool          `json:"ok"`
	Error  string        `json:"error,omitempty"`
	Code   apperror.Kind `json:"code,omitempty"`
}

type createRoomAck struct {
	ack
	RoomID string             `json:"roomId"`
	Room   *entity.PublicRoom `json:"room"`
}

type joinRoomAck struct {
	ack
	PlayerID string             `json:"playerId"`
	Room     *entity.PublicRoom `json:"room"`
}

type rollDiceAck struct {
	ack
	Dice       int         `json:"dice"`
	Moves      []ludo.Move `json:"moves"`
	ForcedPass bool        `json:"forcedPass"`
}

type moveTokenAck struct {
	ack
	Meta ludo.Effects `json:"meta"`
}

type reconnectRoomAck struct {
	ack
	Room *entity.PublicRoom `json:"room"`
}

type request interface {
	Validate() error
}

type createRoomRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers"`
}

func (that *createRoomRequest) Validate() error {
	return nil
}

type joinRoomRequest struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

func (that *joinRoomRequest) Validate() error {
	return requireFields(map[string]string{"roomId": that.RoomID})
}

type startGameRequest struct {
	RoomID string `json:"roomId"`
}

func (that *startGameRequest) Validate() error {
	return requireFields(map[string]string{"roomId": that.RoomID})
}

// playerRequest covers every action made on behalf of a seated player.
type playerRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

func (that *playerRequest) Validate() error {
	return requireFields(map[string]string{"roomId": that.RoomID, "playerId": that.PlayerID})
}

type moveTokenRequest struct {
	playerRequest
	Move *ludo.Move `json:"move"`
}

func (that *moveTokenRequest) Validate() error {
	if err := that.playerRequest.Validate(); err != nil {
		return err
	}

	if that.Move == nil {
		return fmt.Errorf("%w: move is required", apperror.ErrInvalidRequest)
	}

	return nil
}

type sendChatRequest struct {
	playerRequest
	Text string `json:"text"`
}

// decode unmarshals the payload into req and validates it.
func decode(msg *Message, req request) error {
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, req); err != nil {
			return fmt.Errorf("%w: %w", apperror.ErrInvalidRequest, err)
		}
	}

	return req.Validate()
}

func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: %s is required", apperror.ErrInvalidRequest, strings.Join(missing, ", "))
	}

	return nil
}

// normalizeRoomID accepts codes typed in any case.
func normalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
