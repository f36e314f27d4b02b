package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("Classifies wrapped sentinels", func(t *testing.T) {
		// Given: sentinel errors wrapped by upper layers
		cases := []struct {
			err  error
			kind Kind
		}{
			{fmt.Errorf("failed to get room: %w", ErrRoomNotFound), KindNotFound},
			{fmt.Errorf("failed to join: %w", ErrRoomFull), KindForbidden},
			{fmt.Errorf("failed to roll: %w", ErrNotYourTurn), KindForbidden},
			{fmt.Errorf("failed to leave: %w", ErrNotYourSeat), KindForbidden},
			{fmt.Errorf("failed to roll: %w", ErrGameFinished), KindInvalidState},
			{fmt.Errorf("failed to move: %w", ErrDiceNotRolled), KindInvalidState},
			{fmt.Errorf("failed to move: %w", ErrInvalidMove), KindInvalidMove},
			{fmt.Errorf("failed to decode: %w", ErrInvalidRequest), KindBadRequest},
			{fmt.Errorf("%w: %w", ErrStoreUnavailable, errors.New("dial tcp")), KindTransient},
		}

		for _, tc := range cases {
			// When: classifying the error
			kind := KindOf(tc.err)

			// Then: the kind matches the sentinel
			assert.Equal(t, tc.kind, kind, tc.err.Error())
		}
	})

	t.Run("Unknown errors are internal", func(t *testing.T) {
		// Given: an error without a known sentinel
		err := errors.New("boom")

		// When / Then: it is classified as internal
		assert.Equal(t, KindInternal, KindOf(err))
	})
}

func TestPublic(t *testing.T) {
	t.Run("Returns sentinel text without wrapping context", func(t *testing.T) {
		// Given: a deeply wrapped sentinel
		err := fmt.Errorf("failed to move token: %w", fmt.Errorf("validate: %w", ErrInvalidMove))

		// When: building the public message
		msg := Public(err)

		// Then: only the sentinel text is exposed
		assert.Equal(t, "invalid move", msg)
	})

	t.Run("Hides transient causes", func(t *testing.T) {
		// Given: a store failure carrying backend details
		err := fmt.Errorf("%w: %w", ErrStoreUnavailable, errors.New("dial tcp 10.0.0.1:6379: connection refused"))

		// When / Then: only the store sentinel is exposed
		assert.Equal(t, "room store unavailable", Public(err))
	})

	t.Run("Hides unknown errors", func(t *testing.T) {
		assert.Equal(t, "internal error", Public(errors.New("nil pointer somewhere")))
	})
}
