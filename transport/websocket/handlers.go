package websocket

import (
	"context"
	"fmt"
)

func (that *Server) handleCreateRoom(ctx context.Context, s *session, msg *Message) error {
	var req createRoomRequest
	if err := decode(msg, &req); err != nil {
		return err
	}

	room, err := that.uRoom.CreateRoom(ctx, s.id, req.Name, req.MaxPlayers)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	that.sendResponse(s, createRoomAck{ack: okAck(msg), RoomID: room.ID, Room: room.Public()})

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, s *session, msg *Message) error {
	var req joinRoomRequest
	if err := decode(msg, &req); err != nil {
		return err
	}

	player, room, err := that.uRoom.JoinRoom(ctx, s.id, normalizeRoomID(req.RoomID), req.Name)
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	that.sendResponse(s, joinRoomAck{ack: okAck(msg), PlayerID: player.ID, Room: room.Public()})

	return nil
}

func (that *Server) handleStartGame(ctx context.Context, s *session, msg *Message) error {
	var req startGameRequest
	if err := decode(msg, &req); err != nil {
		return err
	}

	if _, err := that.uRoom.StartGame(ctx, normalizeRoomID(req.RoomID)); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	that.sendResponse(s, okAck(msg))

	return nil
}

func (that *Server) handleRollDice(ctx context.Context, s *session, msg *Message) error {
	var req playerRequest
	if err := decode(msg, &req); err != nil {
		return err
	}

	outcome, err := that.uRoom.RollDice(ctx, s.id, normalizeRoomID(req.RoomID), req.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to roll dice: %w", err)
	}

	that.sendResponse(s, rollDiceAck{
		ack:        okAck(msg),
		Dice:       outcome.Die,
		Moves:      outcome.Moves,
		ForcedPass: outcome.ForcedPass,
	})

	return nil
}

func (that *Server) handleMoveToken(ctx context.Context, s *session, msg *Message) error {
	var req moveTokenRequest
	if err := decode(msg, &req); err != nil {
		return err
	}

	effects, err := that.uRoom.MoveToken(ctx, s.id, normalizeRoomID(req.RoomID), req.PlayerID, *req.Move)
	if err != nil {
		return fmt.Errorf("failed to move token: %w", err)
	}

	that.sendResponse(s, moveTokenAck{ack: okAck(msg), Meta: effects})

	return nil
}

func (that *Server) handleSendChat(ctx context.Context, s *session, msg *Message) error {
	var req sendChatRequest
	if err := decode(msg, &req); err != nil {
		return err
	}

	if _, err := that.uRoom.SendChat(ctx, s.id, normalizeRoomID(req.RoomID), req.PlayerID, req.Text); err != nil {
		return fmt.Errorf("failed to send chat: %w", err)
	}

	that.sendResponse(s, okAck(msg))

	return nil
}

func (that *Server) handleLeaveRoom(ctx context.Context, s *session, msg *Message) error {
	var req playerRequest
	if err := decode(msg, &req); err != nil {
		return err
	}

	if err := that.uRoom.LeaveRoom(ctx, s.id, normalizeRoomID(req.RoomID), req.PlayerID); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	that.sendResponse(s, okAck(msg))

	return nil
}

func (that *Server) handleReconnectRoom(ctx context.Context, s *session, msg *Message) error {
	var req playerRequest
	if err := decode(msg, &req); err != nil {
		return err
	}

	room, err := that.uRoom.ReconnectRoom(ctx, s.id, normalizeRoomID(req.RoomID), req.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to reconnect: %w", err)
	}

	that.sendResponse(s, reconnectRoomAck{ack: okAck(msg), Room: room.Public()})

	return nil
}
