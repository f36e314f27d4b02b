package ludo

import (
	"fmt"

	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
)

type RollOutcome struct {
	Die        int    `json:"dice"`
	Moves      []Move `json:"moves"`
	ForcedPass bool   `json:"forcedPass"`
}

// Roll records the rolled value for the turn holder. When nothing can move the
// turn passes immediately and ForcedPass is set.
func Roll(game *entity.Game, playerID string, die int) (*entity.Game, RollOutcome, error) {
	if err := CheckRoll(game, playerID); err != nil {
		return nil, RollOutcome{}, err
	}

	if die < 1 || die > DieFaces {
		return nil, RollOutcome{}, fmt.Errorf("%w: die value %d", apperror.ErrInvalidRequest, die)
	}

	next := game.Clone()
	next.Dice = &die

	if die == EntryRoll {
		next.ConsecutiveSixes++
	} else {
		next.ConsecutiveSixes = 0
	}

	next.History = append(next.History, entity.HistoryEntry{
		Type:  entity.HistoryDice,
		By:    playerID,
		Value: die,
		At:    now(),
	})

	outcome := RollOutcome{Die: die, Moves: EnumerateMoves(next, playerID, die)}
	if len(outcome.Moves) == 0 {
		Advance(next)
		outcome.ForcedPass = true
	}

	return next, outcome, nil
}

// CheckRoll reports whether playerID may roll now, so callers can skip drawing a die.
func CheckRoll(game *entity.Game, playerID string) error {
	if err := confirmTurn(game, playerID); err != nil {
		return err
	}

	if game.Dice != nil {
		return apperror.ErrDiceAlreadyRolled
	}

	return nil
}

// PlayMove validates the move against the outstanding roll, applies it and decides
// whether the same player goes again.
func PlayMove(game *entity.Game, playerID string, move Move) (*entity.Game, Effects, error) {
	if err := confirmTurn(game, playerID); err != nil {
		return nil, Effects{}, err
	}

	if game.Dice == nil {
		return nil, Effects{}, apperror.ErrDiceNotRolled
	}

	if !IsLegal(EnumerateMoves(game, playerID, *game.Dice), move) {
		return nil, Effects{}, fmt.Errorf("%w: token %d cannot reach %d with %d",
			apperror.ErrInvalidMove, move.TokenIndex, move.To, *game.Dice)
	}

	next, effects, err := ApplyMove(game, playerID, move)
	if err != nil {
		return nil, Effects{}, err
	}

	next.Dice = nil

	if effects.Ended {
		return next, effects, nil
	}

	if next.ConsecutiveSixes >= MaxConsecutiveSixes {
		effects.ExtraTurn = false
	}

	if !effects.ExtraTurn {
		Advance(next)
	}

	return next, effects, nil
}

// Advance hands the turn to the next seat in join order.
func Advance(game *entity.Game) {
	if len(game.Players) > 0 {
		game.TurnIndex = (game.TurnIndex + 1) % len(game.Players)
	}

	game.ConsecutiveSixes = 0
	game.Dice = nil
}

func confirmTurn(game *entity.Game, playerID string) error {
	if err := game.ConfirmPlaying(); err != nil {
		return err
	}

	if _, ok := game.PlayerByID(playerID); !ok {
		return fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, playerID)
	}

	current := game.CurrentPlayer()
	if current == nil || current.ID != playerID {
		return apperror.ErrNotYourTurn
	}

	return nil
}
