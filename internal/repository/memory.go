package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryRooms stores rooms as JSON in process memory. Expired entries are
// invisible to reads and removed by Run.
type MemoryRooms struct {
	logger *slog.Logger
	ttl    time.Duration
	codes  func() string

	mu    sync.RWMutex
	rooms map[string]memoryEntry
}

func NewMemoryRoomRepository(logger *slog.Logger, ttl time.Duration, codes func() string) *MemoryRooms {
	return &MemoryRooms{
		logger: logger.With("component", "memory-rooms"),
		ttl:    ttl,
		codes:  codes,
		rooms:  make(map[string]memoryEntry),
	}
}

func (that *MemoryRooms) Create(_ context.Context, room *entity.Room) (*entity.Room, error) {
	return allocate(room, that.codes, func(room *entity.Room) (bool, error) {
		data, err := json.Marshal(room)
		if err != nil {
			return false, fmt.Errorf("could not marshal room: %w", err)
		}

		that.mu.Lock()
		defer that.mu.Unlock()

		if entry, ok := that.rooms[room.ID]; ok && entry.expiresAt.After(now()) {
			return false, nil
		}

		that.rooms[room.ID] = memoryEntry{data: data, expiresAt: now().Add(that.ttl)}

		return true, nil
	})
}

func (that *MemoryRooms) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.RLock()
	entry, ok := that.rooms[id]
	that.mu.RUnlock()

	if !ok || !entry.expiresAt.After(now()) {
		return nil, apperror.ErrRoomNotFound
	}

	var room entity.Room
	if err := json.Unmarshal(entry.data, &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

func (that *MemoryRooms) Update(_ context.Context, room *entity.Room) error {
	room.LastActiveAt = now()

	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.rooms[room.ID]
	if !ok || !entry.expiresAt.After(room.LastActiveAt) {
		return apperror.ErrRoomNotFound
	}

	that.rooms[room.ID] = memoryEntry{data: data, expiresAt: room.LastActiveAt.Add(that.ttl)}

	return nil
}

func (that *MemoryRooms) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	delete(that.rooms, id)
	that.mu.Unlock()

	return nil
}

func (that *MemoryRooms) Close() error {
	return nil
}

// Sweep drops every expired room and returns how many were removed.
func (that *MemoryRooms) Sweep() int {
	current := now()

	that.mu.Lock()
	defer that.mu.Unlock()

	removed := 0
	for id, entry := range that.rooms {
		if !entry.expiresAt.After(current) {
			delete(that.rooms, id)
			removed++
		}
	}

	return removed
}

// Run sweeps on every tick until ctx is done.
func (that *MemoryRooms) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := that.Sweep(); removed > 0 {
				that.logger.Info("expired rooms removed", "count", removed)
			}
		}
	}
}
