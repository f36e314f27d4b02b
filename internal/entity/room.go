package entity

import "time"

const (
	MinPlayers = 2
	MaxPlayers = 4
)

type RoomPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	SessionID string `json:"socketId"`
	Connected bool   `json:"connected"`
}

// Room is the unit of persistence; its Game lives and dies with it.
type Room struct {
	ID            string        `json:"id"`
	HostSessionID string        `json:"hostSocketId"`
	HostName      string        `json:"hostName"`
	MaxPlayers    int           `json:"maxPlayers"`
	Players       []*RoomPlayer `json:"players"`
	Game          *Game         `json:"game"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastActiveAt  time.Time     `json:"lastActiveAt"`
}

// PublicPlayer is a seat as other clients see it, without its session binding.
type PublicPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Connected bool   `json:"connected"`
}

// PublicRoom is the room as it is sent to clients.
type PublicRoom struct {
	ID           string         `json:"id"`
	HostName     string         `json:"hostName"`
	MaxPlayers   int            `json:"maxPlayers"`
	Players      []PublicPlayer `json:"players"`
	Game         *Game          `json:"game"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastActiveAt time.Time      `json:"lastActiveAt"`
}

func NewRoom(hostSessionID, hostName string, maxPlayers int) *Room {
	return &Room{
		HostSessionID: hostSessionID,
		HostName:      hostName,
		MaxPlayers:    maxPlayers,
		Players:       []*RoomPlayer{},
	}
}

func (that *Room) IsFull() bool {
	return len(that.Players) >= that.MaxPlayers
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

func (that *Room) PlayerByID(id string) *RoomPlayer {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

func (that *Room) PlayerBySession(sessionID string) *RoomPlayer {
	for _, player := range that.Players {
		if player.SessionID == sessionID {
			return player
		}
	}

	return nil
}

// RemovePlayer drops the player from the seat list and reports whether it was seated.
func (that *Room) RemovePlayer(id string) bool {
	for i, player := range that.Players {
		if player.ID == id {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return true
		}
	}

	return false
}

// NextColor picks the palette slot matching the seat count, skipping colors still in use.
func (that *Room) NextColor() string {
	taken := make(map[string]bool, len(that.Players))
	for _, player := range that.Players {
		taken[player.Color] = true
	}

	for offset := range len(Colors) {
		color := Colors[(len(that.Players)+offset)%len(Colors)]
		if !taken[color] {
			return color
		}
	}

	return Colors[len(that.Players)%len(Colors)]
}

// GamePlayers projects the seated players into game seats, in join order.
func (that *Room) GamePlayers() []GamePlayer {
	players := make([]GamePlayer, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, GamePlayer{
			ID:    player.ID,
			Name:  player.Name,
			Color: player.Color,
		})
	}

	return players
}

func (that *RoomPlayer) Public() PublicPlayer {
	return PublicPlayer{
		ID:        that.ID,
		Name:      that.Name,
		Color:     that.Color,
		Connected: that.Connected,
	}
}

// Public strips session ids so a room can be shared with every member.
func (that *Room) Public() *PublicRoom {
	players := make([]PublicPlayer, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, player.Public())
	}

	return &PublicRoom{
		ID:           that.ID,
		HostName:     that.HostName,
		MaxPlayers:   that.MaxPlayers,
		Players:      players,
		Game:         that.Game,
		CreatedAt:    that.CreatedAt,
		LastActiveAt: that.LastActiveAt,
	}
}
