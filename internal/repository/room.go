package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
)

const (
	roomKeyPrefix   = "room:"
	maxCodeAttempts = 10
)

var now = time.Now

// RoomRepository keeps rooms alive while they see activity within the TTL.
type RoomRepository interface {
	// Create assigns an id when the room has none and fails with ErrRoomExists on a taken id.
	Create(ctx context.Context, room *entity.Room) (*entity.Room, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	// Update overwrites a live room and refreshes its expiry.
	Update(ctx context.Context, room *entity.Room) error
	DeleteByID(ctx context.Context, id string) error
	Close() error
}

type dbRoom struct {
	client *redis.Client
	ttl    time.Duration
	codes  func() string
}

func NewRoomRepository(client *redis.Client, ttl time.Duration, codes func() string) RoomRepository {
	return &dbRoom{
		client: client,
		ttl:    ttl,
		codes:  codes,
	}
}

func (that *dbRoom) Create(ctx context.Context, room *entity.Room) (*entity.Room, error) {
	return allocate(room, that.codes, func(room *entity.Room) (bool, error) {
		roomJSON, err := json.Marshal(room)
		if err != nil {
			return false, fmt.Errorf("could not marshal room: %w", err)
		}

		created, err := that.client.SetNX(ctx, roomKeyPrefix+room.ID, roomJSON, that.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("%w: failed to create room: %w", apperror.ErrStoreUnavailable, err)
		}

		return created, nil
	})
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: failed to get room by id: %w", apperror.ErrStoreUnavailable, err)
	}

	var existingRoom entity.Room
	if err = json.Unmarshal(response, &existingRoom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &existingRoom, nil
}

func (that *dbRoom) Update(ctx context.Context, room *entity.Room) error {
	room.LastActiveAt = now()

	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	updated, err := that.client.SetXX(ctx, roomKeyPrefix+room.ID, roomJSON, that.ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to set room: %w", apperror.ErrStoreUnavailable, err)
	}

	if !updated {
		return apperror.ErrRoomNotFound
	}

	return nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	if err := that.client.Del(ctx, roomKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete room by id: %w", apperror.ErrStoreUnavailable, err)
	}

	return nil
}

func (that *dbRoom) Close() error {
	return that.client.Close()
}

// allocate stamps the room and hands it to insert, drawing fresh codes while
// insert reports the id as taken.
func allocate(room *entity.Room, codes func() string, insert func(*entity.Room) (bool, error)) (*entity.Room, error) {
	stored := *room
	stored.CreatedAt = now()
	stored.LastActiveAt = stored.CreatedAt

	if stored.ID != "" {
		created, err := insert(&stored)
		if err != nil {
			return nil, err
		}

		if !created {
			return nil, fmt.Errorf("%w: %s", apperror.ErrRoomExists, stored.ID)
		}

		return &stored, nil
	}

	for range maxCodeAttempts {
		stored.ID = codes()

		created, err := insert(&stored)
		if err != nil {
			return nil, err
		}

		if created {
			return &stored, nil
		}
	}

	return nil, fmt.Errorf("%w: no free room code after %d attempts", apperror.ErrRoomExists, maxCodeAttempts)
}
