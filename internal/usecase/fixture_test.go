package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/rocketscienceinc/ludo-backend/internal/pkg"
	"github.com/rocketscienceinc/ludo-backend/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// scriptedDice hands out the given die faces in order.
type scriptedDice struct {
	mu     sync.Mutex
	values []int
}

func (that *scriptedDice) Intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.values) == 0 {
		panic("dice script exhausted")
	}

	v := that.values[0]
	that.values = that.values[1:]

	return (v - 1) % n
}

func (that *scriptedDice) push(values ...int) {
	that.mu.Lock()
	that.values = append(that.values, values...)
	that.mu.Unlock()
}

type delivery struct {
	roomID    string
	sessionID string
	event     Event
}

// recorder is a publisher that keeps everything it was asked to deliver.
type recorder struct {
	mu         sync.Mutex
	deliveries []delivery
	subs       map[string]map[string]bool
}

func newRecorder() *recorder {
	return &recorder{subs: make(map[string]map[string]bool)}
}

func (that *recorder) Publish(roomID string, event Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.deliveries = append(that.deliveries, delivery{roomID: roomID, event: event})
}

func (that *recorder) Notify(sessionID string, event Event) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.deliveries = append(that.deliveries, delivery{sessionID: sessionID, event: event})
}

func (that *recorder) Subscribe(roomID, sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.subs[roomID] == nil {
		that.subs[roomID] = make(map[string]bool)
	}
	that.subs[roomID][sessionID] = true
}

func (that *recorder) Unsubscribe(roomID, sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.subs[roomID], sessionID)
}

func (that *recorder) CloseRoom(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.subs, roomID)
}

func (that *recorder) subscribed(roomID, sessionID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.subs[roomID][sessionID]
}

// types lists the event types published to the room, in order.
func (that *recorder) types(roomID string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	var types []string
	for _, d := range that.deliveries {
		if d.roomID == roomID {
			types = append(types, d.event.Type)
		}
	}

	return types
}

func (that *recorder) last(roomID, eventType string) (Event, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i := len(that.deliveries) - 1; i >= 0; i-- {
		d := that.deliveries[i]
		if d.roomID == roomID && d.event.Type == eventType {
			return d.event, true
		}
	}

	return Event{}, false
}

func (that *recorder) reset() {
	that.mu.Lock()
	that.deliveries = nil
	that.mu.Unlock()
}

type fixture struct {
	ctx     context.Context
	manager *RoomManager
	rooms   *repository.MemoryRooms
	events  *recorder
	dice    *scriptedDice
}

func newFixture(t *testing.T, dice ...int) *fixture {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	codes := pkg.NewCryptoSource()

	rooms := repository.NewMemoryRoomRepository(logger, time.Hour, func() string {
		return pkg.GenerateRoomCode(codes)
	})
	events := newRecorder()
	script := &scriptedDice{values: dice}

	return &fixture{
		ctx:     context.Background(),
		manager: NewRoomManager(logger, rooms, events, script),
		rooms:   rooms,
		events:  events,
		dice:    script,
	}
}

// twoPlayerRoom creates a room and seats Ann (red, session sa) and Bob (green, session sb).
func (that *fixture) twoPlayerRoom(t *testing.T) (string, *entity.RoomPlayer, *entity.RoomPlayer) {
	t.Helper()

	room, err := that.manager.CreateRoom(that.ctx, "host", "Host", 4)
	require.NoError(t, err)

	ann, _, err := that.manager.JoinRoom(that.ctx, "sa", room.ID, "Ann")
	require.NoError(t, err)

	bob, _, err := that.manager.JoinRoom(that.ctx, "sb", room.ID, "Bob")
	require.NoError(t, err)

	return room.ID, ann, bob
}

func (that *fixture) stored(t *testing.T, roomID string) *entity.Room {
	t.Helper()

	room, err := that.rooms.GetByID(that.ctx, roomID)
	require.NoError(t, err)

	return room
}

// setTokens rewrites a player's token row directly in the store.
func (that *fixture) setTokens(t *testing.T, roomID, playerID string, tokens []int) {
	t.Helper()

	room := that.stored(t, roomID)
	room.Game.Tokens[playerID] = tokens
	require.NoError(t, that.rooms.Update(that.ctx, room))
}

type mockRoomRepo struct {
	mock.Mock
}

func (that *mockRoomRepo) Create(ctx context.Context, room *entity.Room) (*entity.Room, error) {
	args := that.Called(ctx, room)
	created, _ := args.Get(0).(*entity.Room)

	return created, args.Error(1)
}

func (that *mockRoomRepo) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	args := that.Called(ctx, id)
	room, _ := args.Get(0).(*entity.Room)

	return room, args.Error(1)
}

func (that *mockRoomRepo) Update(ctx context.Context, room *entity.Room) error {
	return that.Called(ctx, room).Error(0)
}

func (that *mockRoomRepo) DeleteByID(ctx context.Context, id string) error {
	return that.Called(ctx, id).Error(0)
}
