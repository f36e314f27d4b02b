package ludo

import (
	"slices"

	"github.com/rocketscienceinc/ludo-backend/internal/entity"
)

// NewGame seats the players in the given order with all tokens at home.
func NewGame(players []entity.GamePlayer) *entity.Game {
	game := &entity.Game{
		Players: []entity.GamePlayer{},
		Tokens:  make(map[string][]int, len(players)),
		Status:  entity.StatusPlaying,
		History: []entity.HistoryEntry{},
	}

	for _, player := range players {
		seat(game, player)
	}

	return game
}

// AddPlayer seats a late joiner at the end of the turn order.
func AddPlayer(game *entity.Game, player entity.GamePlayer) *entity.Game {
	next := game.Clone()
	if _, ok := next.PlayerByID(player.ID); ok {
		return next
	}

	seat(next, player)

	return next
}

// RemovePlayer drops the player and their tokens while keeping the turn on the
// same player when possible. Removing the turn holder voids any outstanding roll.
func RemovePlayer(game *entity.Game, playerID string) *entity.Game {
	next := game.Clone()

	idx := slices.IndexFunc(next.Players, func(player entity.GamePlayer) bool {
		return player.ID == playerID
	})
	if idx < 0 {
		return next
	}

	next.Players = slices.Delete(next.Players, idx, idx+1)
	delete(next.Tokens, playerID)

	switch {
	case len(next.Players) == 0:
		next.TurnIndex = 0
		next.Dice = nil
		next.ConsecutiveSixes = 0
	case idx < next.TurnIndex:
		next.TurnIndex--
	case idx == next.TurnIndex:
		next.TurnIndex %= len(next.Players)
		next.Dice = nil
		next.ConsecutiveSixes = 0
	}

	return next
}

func seat(game *entity.Game, player entity.GamePlayer) {
	game.Players = append(game.Players, player)

	tokens := make([]int, TokensPerPlayer)
	for i := range tokens {
		tokens[i] = HomePosition
	}

	game.Tokens[player.ID] = tokens
}
