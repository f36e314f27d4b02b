package apperror

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")

	ErrNotYourTurn = errors.New("it's not your turn")
	ErrRoomFull    = errors.New("room is full")
	ErrNotYourSeat = errors.New("player belongs to another session")

	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrGameFinished      = errors.New("game is already finished")
	ErrDiceNotRolled     = errors.New("roll dice before moving")
	ErrDiceAlreadyRolled = errors.New("dice already rolled, move a token")
	ErrNotEnoughPlayers  = errors.New("need at least 2 players")

	ErrInvalidMove = errors.New("invalid move")

	ErrStoreUnavailable = errors.New("room store unavailable")
	ErrRoomExists       = errors.New("room already exists")

	ErrInvalidRequest = errors.New("invalid request")
)

// Kind is the error class reported to clients next to the message.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindInvalidState Kind = "invalid_state"
	KindInvalidMove  Kind = "invalid_move"
	KindTransient    Kind = "transient"
	KindBadRequest   Kind = "bad_request"
	KindInternal     Kind = "internal"
)

const internalMessage = "internal error"

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrRoomNotFound, KindNotFound},
	{ErrPlayerNotFound, KindNotFound},
	{ErrNotYourTurn, KindForbidden},
	{ErrRoomFull, KindForbidden},
	{ErrNotYourSeat, KindForbidden},
	{ErrGameIsNotStarted, KindInvalidState},
	{ErrGameFinished, KindInvalidState},
	{ErrDiceNotRolled, KindInvalidState},
	{ErrDiceAlreadyRolled, KindInvalidState},
	{ErrNotEnoughPlayers, KindInvalidState},
	{ErrInvalidMove, KindInvalidMove},
	{ErrStoreUnavailable, KindTransient},
	{ErrInvalidRequest, KindBadRequest},
}

// KindOf classifies err by the first known sentinel found in its chain.
func KindOf(err error) Kind {
	kind, _ := lookup(err)

	return kind
}

// Public returns the message that is safe to send back to a client.
func Public(err error) string {
	_, sentinel := lookup(err)
	if sentinel == nil {
		return internalMessage
	}

	return sentinel.Error()
}

// lookup returns the kind and the matching sentinel, nil when none matches.
func lookup(err error) (Kind, error) {
	for _, known := range kinds {
		if errors.Is(err, known.err) {
			return known.kind, known.err
		}
	}

	return KindInternal, nil
}
