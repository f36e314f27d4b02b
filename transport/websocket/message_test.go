package websocket

import (
	"encoding/json"
	"testing"

	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/ludo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("Reports every missing field", func(t *testing.T) {
		var req playerRequest

		err := decode(&Message{Action: actionRollDice, Payload: json.RawMessage(`{}`)}, &req)

		require.ErrorIs(t, err, apperror.ErrInvalidRequest)
		assert.Contains(t, err.Error(), "playerId, roomId is required")
	})

	t.Run("Move requires a move", func(t *testing.T) {
		var req moveTokenRequest

		err := decode(&Message{Payload: json.RawMessage(`{"roomId":"ABC123","playerId":"p1"}`)}, &req)

		require.ErrorIs(t, err, apperror.ErrInvalidRequest)
		assert.Contains(t, err.Error(), "move is required")
	})

	t.Run("Fills nested fields", func(t *testing.T) {
		var req moveTokenRequest

		err := decode(&Message{Payload: json.RawMessage(`{"roomId":"ABC123","playerId":"p1","move":{"tokenIndex":2,"to":9}}`)}, &req)

		require.NoError(t, err)
		assert.Equal(t, "ABC123", req.RoomID)
		assert.Equal(t, "p1", req.PlayerID)
		assert.Equal(t, &ludo.Move{TokenIndex: 2, To: 9}, req.Move)
	})

	t.Run("Rejects malformed payloads", func(t *testing.T) {
		var req joinRoomRequest

		err := decode(&Message{Payload: json.RawMessage(`{"roomId":12}`)}, &req)

		require.ErrorIs(t, err, apperror.ErrInvalidRequest)
	})

	t.Run("Create room needs no payload", func(t *testing.T) {
		var req createRoomRequest

		require.NoError(t, decode(&Message{Action: actionCreateRoom}, &req))
		assert.Zero(t, req.MaxPlayers)
	})
}

func TestNormalizeRoomID(t *testing.T) {
	assert.Equal(t, "ABC123", normalizeRoomID("  abc123 "))
}

func TestAckEncoding(t *testing.T) {
	// Given: a roll reply with no legal moves
	reply := rollDiceAck{
		ack:        okAck(&Message{Action: actionRollDice, ID: "7"}),
		Dice:       3,
		Moves:      []ludo.Move{},
		ForcedPass: true,
	}

	// When: it is encoded
	data, err := json.Marshal(reply)
	require.NoError(t, err)

	// Then: the common fields sit next to the action fields
	assert.JSONEq(t, `{"action":"roll_dice","id":"7","ok":true,"dice":3,"moves":[],"forcedPass":true}`, string(data))
}
