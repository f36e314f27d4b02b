// Package ludo holds the authoritative rules: token positions, legal moves,
// captures, wins and turn advancement. It never touches the store or the network.
package ludo

import "github.com/rocketscienceinc/ludo-backend/internal/entity"

const (
	TokensPerPlayer = 4
	TrackLength     = 52
	HomeStretch     = 6
	FinishStep      = TrackLength + HomeStretch - 1

	HomePosition = -1
	StartStep    = 0

	DieFaces            = 6
	EntryRoll           = 6
	MaxConsecutiveSixes = 3
)

var startIndex = map[string]int{
	entity.ColorRed:    0,
	entity.ColorGreen:  13,
	entity.ColorYellow: 26,
	entity.ColorBlue:   39,
}

// safeSquares are global track indices where no token can be captured.
var safeSquares = map[int]bool{
	0: true, 8: true, 13: true, 21: true,
	26: true, 34: true, 39: true, 47: true,
}

// StepsToGlobal converts a player's relative step into a shared track index.
// It reports false for positions off the shared track or an unknown color.
func StepsToGlobal(color string, steps int) (int, bool) {
	start, ok := startIndex[color]
	if !ok || steps < 0 || steps >= TrackLength {
		return 0, false
	}

	return (start + steps) % TrackLength, true
}

func IsSafe(global int) bool {
	return safeSquares[global]
}

func onTrack(pos int) bool {
	return pos >= 0 && pos < TrackLength
}
