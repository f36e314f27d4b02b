package usecase

import (
	"context"
	"fmt"
	"sync"
)

// roomLocks admits one mutation per room at a time. Waiters on the same room are
// released in arrival order; rooms never wait on each other.
type roomLocks struct {
	mu    sync.Mutex
	rooms map[string]*roomLock
}

type roomLock struct {
	sem  chan struct{}
	refs int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{rooms: make(map[string]*roomLock)}
}

// lock blocks until the room is free or ctx is done. The returned func releases it.
func (that *roomLocks) lock(ctx context.Context, roomID string) (func(), error) {
	that.mu.Lock()
	entry, ok := that.rooms[roomID]
	if !ok {
		entry = &roomLock{sem: make(chan struct{}, 1)}
		that.rooms[roomID] = entry
	}
	entry.refs++
	that.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
		var once sync.Once

		return func() {
			once.Do(func() {
				<-entry.sem
				that.release(roomID, entry)
			})
		}, nil
	case <-ctx.Done():
		that.release(roomID, entry)

		return nil, fmt.Errorf("waiting for room %s: %w", roomID, ctx.Err())
	}
}

func (that *roomLocks) release(roomID string, entry *roomLock) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(that.rooms, roomID)
	}
}

func (that *roomLocks) size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.rooms)
}
