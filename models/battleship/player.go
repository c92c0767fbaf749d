package battleship

import (
	"github.com/google/uuid"
)

const (
	PlayerMatchStatusLost      = -1
	PlayerMatchStatusUndefined = 0
	PlayerMatchStatusWon       = 1
)

type Player struct {
	uuid        string
	sessionId   string
	isHost      bool
	matchStatus int
	defenceGrid *Board
	ships       ShipLog
}

func NewPlayer(isHost bool, sessionId string, defenceGrid *Board) *Player {
	return &Player{
		uuid:        uuid.NewString()[:10],
		sessionId:   sessionId,
		isHost:      isHost,
		matchStatus: PlayerMatchStatusUndefined,
		defenceGrid: defenceGrid,
		ships:       NewShipLog(),
	}
}

func (p *Player) Uuid() string {
	return p.uuid
}

func (p *Player) SessionId() string {
	return p.sessionId
}

func (p *Player) IsHost() bool {
	return p.isHost
}

func (p *Player) MatchStatus() int {
	return p.matchStatus
}

func (p *Player) DefenceGrid() *Board {
	return p.defenceGrid
}

func (p *Player) Ships() ShipLog {
	return p.ships
}

func (p *Player) IsLoser() bool {
	return IsDefeated(p.ships)
}

func (p *Player) setMatchStatus(status int) {
	p.matchStatus = status
}
