package pkg

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	RoomCodeLength   = 6
)

// RandomSource is the only randomness the game needs; tests script it.
type RandomSource interface {
	Intn(n int) int
}

type cryptoSource struct{}

// NewCryptoSource returns a RandomSource backed by crypto/rand.
func NewCryptoSource() RandomSource {
	return cryptoSource{}
}

func (cryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}

	return int(v.Int64())
}

// RollDie returns a value in 1..6.
func RollDie(rnd RandomSource) int {
	return rnd.Intn(6) + 1
}

// GenerateRoomCode - generates a 6 character uppercase alphanumeric code.
func GenerateRoomCode(rnd RandomSource) string {
	var code strings.Builder
	code.Grow(RoomCodeLength)

	for range RoomCodeLength {
		code.WriteByte(roomCodeAlphabet[rnd.Intn(len(roomCodeAlphabet))])
	}

	return code.String()
}

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

func GeneratePlayerID() string {
	return uuid.NewString()
}
