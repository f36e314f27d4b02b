package ludo

import (
	"testing"

	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threePlayerGame() *entity.Game {
	return NewGame([]entity.GamePlayer{
		{ID: "a", Color: entity.ColorRed},
		{ID: "b", Color: entity.ColorGreen},
		{ID: "c", Color: entity.ColorYellow},
	})
}

func TestNewGame(t *testing.T) {
	game := twoPlayerGame()

	assert.Equal(t, entity.StatusPlaying, game.Status)
	assert.Zero(t, game.TurnIndex)
	assert.Nil(t, game.Dice)
	assert.Empty(t, game.History)
	assert.Equal(t, []int{-1, -1, -1, -1}, game.Tokens["a"])
	assert.Equal(t, []int{-1, -1, -1, -1}, game.Tokens["b"])
}

func TestAddPlayer(t *testing.T) {
	// Given: a running two player game
	game := twoPlayerGame()

	// When: a third player joins mid-game
	next := AddPlayer(game, entity.GamePlayer{ID: "c", Color: entity.ColorYellow})

	// Then: they take the last seat with tokens at home
	require.Len(t, next.Players, 3)
	assert.Equal(t, "c", next.Players[2].ID)
	assert.Equal(t, []int{-1, -1, -1, -1}, next.Tokens["c"])
	assert.Len(t, game.Players, 2)

	// And: joining twice is a no-op
	again := AddPlayer(next, entity.GamePlayer{ID: "c", Color: entity.ColorYellow})
	assert.Len(t, again.Players, 3)
}

func TestRemovePlayer(t *testing.T) {
	t.Run("Removing a seat before the turn holder keeps the same player", func(t *testing.T) {
		// Given: c holds the turn
		game := threePlayerGame()
		game.TurnIndex = 2

		// When: a leaves
		next := RemovePlayer(game, "a")

		// Then: c still holds the turn
		assert.Equal(t, 1, next.TurnIndex)
		assert.Equal(t, "c", next.CurrentPlayer().ID)
		assert.NotContains(t, next.Tokens, "a")
	})

	t.Run("Removing the last seat holder wraps to the first", func(t *testing.T) {
		die := 4
		game := threePlayerGame()
		game.TurnIndex = 2
		game.Dice = &die
		game.ConsecutiveSixes = 1

		next := RemovePlayer(game, "c")

		assert.Equal(t, 0, next.TurnIndex)
		assert.Nil(t, next.Dice)
		assert.Zero(t, next.ConsecutiveSixes)
	})

	t.Run("Removing a seat after the turn holder changes nothing", func(t *testing.T) {
		game := threePlayerGame()
		game.TurnIndex = 0

		next := RemovePlayer(game, "b")

		assert.Equal(t, 0, next.TurnIndex)
		assert.Equal(t, "a", next.CurrentPlayer().ID)
	})

	t.Run("Turn index stays in range through every leave", func(t *testing.T) {
		for turn := range 3 {
			for _, leaver := range []string{"a", "b", "c"} {
				game := threePlayerGame()
				game.TurnIndex = turn

				next := RemovePlayer(game, leaver)

				assert.GreaterOrEqual(t, next.TurnIndex, 0)
				assert.Less(t, next.TurnIndex, len(next.Players), "turn %d leaver %s", turn, leaver)
			}
		}
	})

	t.Run("Unknown player is ignored", func(t *testing.T) {
		next := RemovePlayer(twoPlayerGame(), "ghost")

		assert.Len(t, next.Players, 2)
	})

	t.Run("Last player leaving resets the turn", func(t *testing.T) {
		game := NewGame([]entity.GamePlayer{{ID: "a", Color: entity.ColorRed}})

		next := RemovePlayer(game, "a")

		assert.Empty(t, next.Players)
		assert.Zero(t, next.TurnIndex)
	})
}
