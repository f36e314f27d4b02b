package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/rocketscienceinc/ludo-backend/internal/ludo"
	"github.com/rocketscienceinc/ludo-backend/internal/pkg"
)

const (
	defaultHostName   = "Host"
	defaultPlayerName = "Anon"
	anonymousSender   = "anon"
	maxChatRunes      = 500
)

var now = time.Now

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) (*entity.Room, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
	DeleteByID(ctx context.Context, id string) error
}

// publisher delivers events to connected sessions. Calls must not block.
type publisher interface {
	Publish(roomID string, event Event)
	Notify(sessionID string, event Event)
	Subscribe(roomID, sessionID string)
	Unsubscribe(roomID, sessionID string)
	CloseRoom(roomID string)
}

// RoomManager runs every room request as load, authorize, validate, mutate,
// persist, broadcast. Requests for one room never overlap.
type RoomManager struct {
	logger    *slog.Logger
	roomRepo  roomRepo
	publisher publisher
	rnd       pkg.RandomSource
	locks     *roomLocks
}

func NewRoomManager(logger *slog.Logger, roomRepo roomRepo, publisher publisher, rnd pkg.RandomSource) *RoomManager {
	return &RoomManager{
		logger: logger.With("component", "room-manager"),

		roomRepo:  roomRepo,
		publisher: publisher,
		rnd:       rnd,
		locks:     newRoomLocks(),
	}
}

func (that *RoomManager) CreateRoom(ctx context.Context, sessionID, hostName string, maxPlayers int) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom", "sessionID", sessionID)

	if maxPlayers == 0 {
		maxPlayers = entity.MaxPlayers
	}

	if maxPlayers < entity.MinPlayers || maxPlayers > entity.MaxPlayers {
		return nil, fmt.Errorf("%w: maxPlayers must be between %d and %d",
			apperror.ErrInvalidRequest, entity.MinPlayers, entity.MaxPlayers)
	}

	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		hostName = defaultHostName
	}

	room, err := that.roomRepo.Create(ctx, entity.NewRoom(sessionID, hostName, maxPlayers))
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	that.publisher.Subscribe(room.ID, sessionID)
	that.publisher.Notify(sessionID, Event{Type: EventRoomCreated, Payload: RoomCreated{RoomID: room.ID, Room: room.Public()}})

	log.Info("room created", "roomID", room.ID, "maxPlayers", maxPlayers)

	return room, nil
}

// JoinRoom seats a new player. The match starts on its own once the second player sits down.
func (that *RoomManager) JoinRoom(ctx context.Context, sessionID, roomID, name string) (*entity.RoomPlayer, *entity.Room, error) {
	log := that.logger.With("method", "JoinRoom", "roomID", roomID, "sessionID", sessionID)

	var player *entity.RoomPlayer

	room, err := that.mutate(ctx, roomID, func(room *entity.Room) error {
		if room.IsFull() {
			return fmt.Errorf("%w: %d of %d seats taken", apperror.ErrRoomFull, len(room.Players), room.MaxPlayers)
		}

		name = strings.TrimSpace(name)
		if name == "" {
			name = defaultPlayerName
		}

		player = &entity.RoomPlayer{
			ID:        pkg.GeneratePlayerID(),
			Name:      name,
			Color:     room.NextColor(),
			SessionID: sessionID,
			Connected: true,
		}
		room.Players = append(room.Players, player)

		switch {
		case room.Game != nil:
			room.Game = ludo.AddPlayer(room.Game, entity.GamePlayer{ID: player.ID, Name: player.Name, Color: player.Color})
		case len(room.Players) == entity.MinPlayers:
			room.Game = ludo.NewGame(room.GamePlayers())
		}

		return nil
	}, func(room *entity.Room) {
		that.publisher.Subscribe(room.ID, sessionID)
		that.publisher.Publish(room.ID, Event{Type: EventPlayerJoined, Payload: PlayerJoined{Player: player.Public(), Room: room.Public()}})

		if room.Game != nil {
			that.publisher.Publish(room.ID, Event{Type: EventGameState, Payload: GameState{Game: room.Game}})
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to join room: %w", err)
	}

	log.Info("player joined", "playerID", player.ID, "color", player.Color)

	return player, room, nil
}

// StartGame deals a fresh match to everyone currently seated.
func (that *RoomManager) StartGame(ctx context.Context, roomID string) (*entity.Room, error) {
	log := that.logger.With("method", "StartGame", "roomID", roomID)

	room, err := that.mutate(ctx, roomID, func(room *entity.Room) error {
		if len(room.Players) < entity.MinPlayers {
			return apperror.ErrNotEnoughPlayers
		}

		room.Game = ludo.NewGame(room.GamePlayers())

		return nil
	}, func(room *entity.Room) {
		that.publisher.Publish(room.ID, Event{Type: EventGameState, Payload: GameState{Game: room.Game}})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	log.Info("game started", "players", len(room.Players))

	return room, nil
}

// RollDice draws a die for the turn holder. A roll with no legal moves passes the
// turn before the caller hears back.
func (that *RoomManager) RollDice(ctx context.Context, sessionID, roomID, playerID string) (ludo.RollOutcome, error) {
	log := that.logger.With("method", "RollDice", "roomID", roomID, "playerID", playerID)

	var outcome ludo.RollOutcome

	_, err := that.mutate(ctx, roomID, func(room *entity.Room) error {
		if err := confirmSeat(room, playerID, sessionID); err != nil {
			return err
		}

		if room.Game == nil {
			return apperror.ErrGameIsNotStarted
		}

		if err := ludo.CheckRoll(room.Game, playerID); err != nil {
			return err
		}

		next, rolled, err := ludo.Roll(room.Game, playerID, pkg.RollDie(that.rnd))
		if err != nil {
			return err
		}

		room.Game = next
		outcome = rolled

		return nil
	}, func(room *entity.Room) {
		that.publisher.Publish(room.ID, Event{Type: EventDiceResult, Payload: DiceResult{Value: outcome.Die, By: playerID}})

		if outcome.ForcedPass {
			that.publisher.Publish(room.ID, Event{Type: EventGameState, Payload: GameState{Game: room.Game}})
		}
	})
	if err != nil {
		return ludo.RollOutcome{}, fmt.Errorf("failed to roll dice: %w", err)
	}

	log.Info("dice rolled", "dice", outcome.Die, "moves", len(outcome.Moves), "forcedPass", outcome.ForcedPass)

	return outcome, nil
}

func (that *RoomManager) MoveToken(ctx context.Context, sessionID, roomID, playerID string, move ludo.Move) (ludo.Effects, error) {
	log := that.logger.With("method", "MoveToken", "roomID", roomID, "playerID", playerID)

	var effects ludo.Effects

	_, err := that.mutate(ctx, roomID, func(room *entity.Room) error {
		if err := confirmSeat(room, playerID, sessionID); err != nil {
			return err
		}

		if room.Game == nil {
			return apperror.ErrGameIsNotStarted
		}

		next, applied, err := ludo.PlayMove(room.Game, playerID, move)
		if err != nil {
			return err
		}

		room.Game = next
		effects = applied

		return nil
	}, func(room *entity.Room) {
		that.publisher.Publish(room.ID, Event{Type: EventMoveAccepted, Payload: MoveAccepted{Game: room.Game}})

		if len(effects.Captured) > 0 {
			that.publisher.Publish(room.ID, Event{Type: EventTokensCaptured, Payload: TokensCaptured{Captured: effects.Captured}})
		}

		if effects.Ended {
			that.publisher.Publish(room.ID, Event{Type: EventGameOver, Payload: GameOver{Winner: effects.Winner, Game: room.Game}})
		}
	})
	if err != nil {
		return ludo.Effects{}, fmt.Errorf("failed to move token: %w", err)
	}

	log.Info("move applied",
		"tokenIndex", move.TokenIndex, "to", move.To,
		"captured", len(effects.Captured), "extraTurn", effects.ExtraTurn, "ended", effects.Ended)

	return effects, nil
}

// SendChat relays a message to the room. Senders that are not seated show up as anon.
func (that *RoomManager) SendChat(ctx context.Context, sessionID, roomID, playerID, text string) (ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, fmt.Errorf("%w: empty message", apperror.ErrInvalidRequest)
	}

	if runes := []rune(text); len(runes) > maxChatRunes {
		text = string(runes[:maxChatRunes])
	}

	var message ChatMessage

	err := that.inRoom(ctx, roomID, func(_ context.Context, room *entity.Room) error {
		name := anonymousSender
		if player := room.PlayerByID(playerID); player != nil {
			if player.SessionID != sessionID {
				return apperror.ErrNotYourSeat
			}

			name = player.Name
		}

		message = ChatMessage{From: playerID, Name: name, Text: text, At: now()}
		that.publisher.Publish(room.ID, Event{Type: EventChatMessage, Payload: message})

		return nil
	})
	if err != nil {
		return ChatMessage{}, fmt.Errorf("failed to send chat: %w", err)
	}

	return message, nil
}

// LeaveRoom gives up the seat for good. The last player out deletes the room.
func (that *RoomManager) LeaveRoom(ctx context.Context, sessionID, roomID, playerID string) error {
	log := that.logger.With("method", "LeaveRoom", "roomID", roomID, "playerID", playerID)

	err := that.inRoom(ctx, roomID, func(ctx context.Context, room *entity.Room) error {
		if err := confirmSeat(room, playerID, sessionID); err != nil {
			return err
		}

		room.RemovePlayer(playerID)
		if room.Game != nil {
			room.Game = ludo.RemovePlayer(room.Game, playerID)
		}

		left := Event{Type: EventPlayerLeft, Payload: PlayerLeft{PlayerID: playerID, Room: room.Public()}}

		if room.IsEmpty() {
			if err := that.roomRepo.DeleteByID(ctx, room.ID); err != nil {
				return fmt.Errorf("failed to delete room: %w", err)
			}

			that.publisher.Publish(room.ID, left)
			that.publisher.CloseRoom(room.ID)

			log.Info("room deleted, last player left")

			return nil
		}

		if err := that.roomRepo.Update(ctx, room); err != nil {
			return fmt.Errorf("failed to update room: %w", err)
		}

		that.publisher.Publish(room.ID, left)

		if room.Game != nil {
			that.publisher.Publish(room.ID, Event{Type: EventGameState, Payload: GameState{Game: room.Game}})
		}

		if room.PlayerBySession(sessionID) == nil {
			that.publisher.Unsubscribe(room.ID, sessionID)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	log.Info("player left")

	return nil
}

// Disconnect marks every seat bound to the session as offline in the given rooms.
// Seats are kept so the player can reconnect.
func (that *RoomManager) Disconnect(ctx context.Context, sessionID string, roomIDs []string) error {
	log := that.logger.With("method", "Disconnect", "sessionID", sessionID)

	var errs []error

	for _, roomID := range roomIDs {
		var dropped []string

		_, err := that.mutate(ctx, roomID, func(room *entity.Room) error {
			for _, player := range room.Players {
				if player.SessionID == sessionID && player.Connected {
					player.Connected = false
					dropped = append(dropped, player.ID)
				}
			}

			if len(dropped) == 0 {
				return errNothingChanged
			}

			return nil
		}, func(room *entity.Room) {
			for _, playerID := range dropped {
				that.publisher.Publish(room.ID, Event{Type: EventPlayerDisconnected, Payload: PlayerPresence{PlayerID: playerID}})
			}
		})

		switch {
		case errors.Is(err, errNothingChanged), errors.Is(err, apperror.ErrRoomNotFound):
		case err != nil:
			log.Error("failed to mark players offline", "roomID", roomID, "error", err)
			errs = append(errs, fmt.Errorf("room %s: %w", roomID, err))
		default:
			log.Info("players disconnected", "roomID", roomID, "players", dropped)
		}
	}

	return errors.Join(errs...)
}

// ReconnectRoom binds an existing seat to a new session.
func (that *RoomManager) ReconnectRoom(ctx context.Context, sessionID, roomID, playerID string) (*entity.Room, error) {
	log := that.logger.With("method", "ReconnectRoom", "roomID", roomID, "playerID", playerID)

	room, err := that.mutate(ctx, roomID, func(room *entity.Room) error {
		player := room.PlayerByID(playerID)
		if player == nil {
			return fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, playerID)
		}

		player.SessionID = sessionID
		player.Connected = true

		return nil
	}, func(room *entity.Room) {
		that.publisher.Subscribe(room.ID, sessionID)
		that.publisher.Publish(room.ID, Event{Type: EventPlayerReconnected, Payload: PlayerPresence{PlayerID: playerID}})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconnect: %w", err)
	}

	log.Info("player reconnected", "sessionID", sessionID)

	return room, nil
}

func (that *RoomManager) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

var errNothingChanged = errors.New("nothing changed")

// mutate applies change to the stored room, persists it and then runs broadcast,
// all while holding the room. Nothing is written when change fails.
func (that *RoomManager) mutate(
	ctx context.Context, roomID string, change func(*entity.Room) error, broadcast func(*entity.Room),
) (*entity.Room, error) {
	var result *entity.Room

	err := that.inRoom(ctx, roomID, func(ctx context.Context, room *entity.Room) error {
		if err := change(room); err != nil {
			return err
		}

		if err := that.roomRepo.Update(ctx, room); err != nil {
			return fmt.Errorf("failed to update room: %w", err)
		}

		broadcast(room)
		result = room

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// inRoom loads the room under its lock. ctx only bounds the wait for the lock;
// once admitted the work runs to completion.
func (that *RoomManager) inRoom(ctx context.Context, roomID string, fn func(context.Context, *entity.Room) error) error {
	unlock, err := that.locks.lock(ctx, roomID)
	if err != nil {
		return err
	}
	defer unlock()

	ctx = context.WithoutCancel(ctx)

	room, err := that.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	return fn(ctx, room)
}

func confirmSeat(room *entity.Room, playerID, sessionID string) error {
	player := room.PlayerByID(playerID)
	if player == nil {
		return fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, playerID)
	}

	if player.SessionID != sessionID {
		return apperror.ErrNotYourSeat
	}

	return nil
}
