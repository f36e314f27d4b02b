package ludo

import (
	"fmt"
	"slices"
	"time"

	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
)

var now = time.Now

type Move struct {
	TokenIndex int `json:"tokenIndex"`
	To         int `json:"to"`
}

type Capture struct {
	PlayerID   string `json:"playerId"`
	TokenIndex int    `json:"tokenIndex"`
}

// Effects describes what a single move did to the board.
type Effects struct {
	Captured  []Capture `json:"captured"`
	ExtraTurn bool      `json:"extraTurn"`
	Ended     bool      `json:"ended"`
	Winner    string    `json:"winner,omitempty"`
}

// EnumerateMoves lists every legal (token, destination) pair for the rolled value.
// An empty result means the player has to pass.
func EnumerateMoves(game *entity.Game, playerID string, die int) []Move {
	moves := []Move{}
	if die < 1 || die > DieFaces {
		return moves
	}

	for i, pos := range game.Tokens[playerID] {
		if to, ok := destination(pos, die); ok {
			moves = append(moves, Move{TokenIndex: i, To: to})
		}
	}

	return moves
}

// destination applies the no-overshoot rule: a token may only land on or before FinishStep.
func destination(pos, die int) (int, bool) {
	switch {
	case pos == HomePosition:
		return StartStep, die == EntryRoll
	case pos < HomePosition, pos >= FinishStep:
		return 0, false
	}

	to := pos + die
	if to > FinishStep {
		return 0, false
	}

	return to, true
}

func IsLegal(moves []Move, move Move) bool {
	return slices.Contains(moves, move)
}

// ApplyMove writes the move into a copy of game and resolves captures and the win.
// Legality against the rolled value is the caller's concern, see PlayMove.
func ApplyMove(game *entity.Game, playerID string, move Move) (*entity.Game, Effects, error) {
	if game.IsFinished() {
		return nil, Effects{}, apperror.ErrGameFinished
	}

	player, ok := game.PlayerByID(playerID)
	if !ok {
		return nil, Effects{}, fmt.Errorf("%w: %s", apperror.ErrPlayerNotFound, playerID)
	}

	if move.TokenIndex < 0 || move.TokenIndex >= len(game.Tokens[playerID]) {
		return nil, Effects{}, fmt.Errorf("%w: token %d", apperror.ErrInvalidMove, move.TokenIndex)
	}

	if move.To < StartStep || move.To > FinishStep {
		return nil, Effects{}, fmt.Errorf("%w: destination %d", apperror.ErrInvalidMove, move.To)
	}

	next := game.Clone()
	tokens := next.Tokens[playerID]
	tokens[move.TokenIndex] = move.To

	effects := Effects{Captured: []Capture{}}

	if global, ok := StepsToGlobal(player.Color, move.To); ok && !IsSafe(global) {
		effects.Captured = capture(next, player, global)
	}

	next.History = append(next.History, entity.HistoryEntry{
		Type:       entity.HistoryMove,
		By:         playerID,
		TokenIndex: &move.TokenIndex,
		To:         &move.To,
		At:         now(),
	})

	rolledSix := game.Dice != nil && *game.Dice == EntryRoll
	effects.ExtraTurn = rolledSix || len(effects.Captured) > 0

	if allFinished(tokens) {
		next.Status = entity.StatusFinished
		next.Winner = playerID
		next.History = append(next.History, entity.HistoryEntry{
			Type: entity.HistoryWin,
			By:   playerID,
			At:   now(),
		})

		effects.Ended = true
		effects.ExtraTurn = false
		effects.Winner = playerID
	}

	return next, effects, nil
}

// capture sends every opposing token on the global square back home.
func capture(game *entity.Game, mover entity.GamePlayer, global int) []Capture {
	captured := []Capture{}

	for _, other := range game.Players {
		if other.ID == mover.ID {
			continue
		}

		tokens := game.Tokens[other.ID]
		for i, pos := range tokens {
			if !onTrack(pos) {
				continue
			}

			if square, _ := StepsToGlobal(other.Color, pos); square != global {
				continue
			}

			tokens[i] = HomePosition
			captured = append(captured, Capture{PlayerID: other.ID, TokenIndex: i})

			tokenIndex := i
			game.History = append(game.History, entity.HistoryEntry{
				Type:       entity.HistoryCapture,
				By:         mover.ID,
				Victim:     other.ID,
				TokenIndex: &tokenIndex,
				At:         now(),
			})
		}
	}

	return captured
}

func allFinished(tokens []int) bool {
	for _, pos := range tokens {
		if pos != FinishStep {
			return false
		}
	}

	return len(tokens) > 0
}
