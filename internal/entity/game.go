package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
)

const (
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

const (
	ColorRed    = "red"
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorBlue   = "blue"
)

// Colors is the fixed seat palette, assigned in join order.
var Colors = [4]string{ColorRed, ColorGreen, ColorYellow, ColorBlue}

const (
	HistoryDice    = "dice"
	HistoryMove    = "move"
	HistoryCapture = "capture"
	HistoryWin     = "win"
)

type GamePlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type HistoryEntry struct {
	Type       string    `json:"type"`
	By         string    `json:"by"`
	Value      int       `json:"value,omitempty"`
	TokenIndex *int      `json:"tokenIndex,omitempty"`
	To         *int      `json:"to,omitempty"`
	Victim     string    `json:"victim,omitempty"`
	At         time.Time `json:"at"`
}

// Game is the authoritative snapshot of one room's match.
type Game struct {
	Players          []GamePlayer     `json:"players"`
	Tokens           map[string][]int `json:"tokens"`
	TurnIndex        int              `json:"turnIndex"`
	Dice             *int             `json:"dice"`
	Status           string           `json:"status"`
	History          []HistoryEntry   `json:"history"`
	ConsecutiveSixes int              `json:"consecutiveSixes"`
	Winner           string           `json:"winner,omitempty"`
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsPlaying() bool {
	return that.Status == StatusPlaying
}

// ConfirmPlaying rejects any mutation of a game that is not in play.
func (that *Game) ConfirmPlaying() error {
	switch that.Status {
	case StatusPlaying:
		return nil
	case StatusFinished:
		return apperror.ErrGameFinished
	default:
		return fmt.Errorf("%w: unknown game status %q", apperror.ErrGameIsNotStarted, that.Status)
	}
}

// CurrentPlayer returns the turn holder, nil when the game has no players.
func (that *Game) CurrentPlayer() *GamePlayer {
	if that.TurnIndex < 0 || that.TurnIndex >= len(that.Players) {
		return nil
	}

	return &that.Players[that.TurnIndex]
}

func (that *Game) PlayerByID(id string) (GamePlayer, bool) {
	for _, player := range that.Players {
		if player.ID == id {
			return player, true
		}
	}

	return GamePlayer{}, false
}

// Clone returns a deep copy, so the result can be mutated without touching the original.
func (that *Game) Clone() *Game {
	clone := *that

	clone.Players = append([]GamePlayer(nil), that.Players...)

	clone.Tokens = make(map[string][]int, len(that.Tokens))
	for id, tokens := range that.Tokens {
		clone.Tokens[id] = append([]int(nil), tokens...)
	}

	clone.History = append([]HistoryEntry(nil), that.History...)

	if that.Dice != nil {
		dice := *that.Dice
		clone.Dice = &dice
	}

	return &clone
}
