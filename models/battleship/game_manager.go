package battleship

import (
	"sync"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

type GameManager interface {
	CreateGame() *Game
	FetchGame(gameUuid string) (*Game, error)
	TerminateGame(gameUuid string)
	CountGames() int
}

type BattleshipGameManager struct {
	games map[string]*Game
	mu    sync.RWMutex
}

var _ GameManager = (*BattleshipGameManager)(nil)

func NewBattleshipGameManager() *BattleshipGameManager {
	return &BattleshipGameManager{
		games: make(map[string]*Game, 10),
	}
}

func (bgm *BattleshipGameManager) CreateGame() *Game {
	bgm.mu.Lock()
	defer bgm.mu.Unlock()

	gameUuid := uuid.NewString()[:6]
	for _, prs := bgm.games[gameUuid]; prs; _, prs = bgm.games[gameUuid] {
		gameUuid = uuid.NewString()[:6]
	}

	game := newGame(gameUuid)
	bgm.games[gameUuid] = game
	return game
}

func (bgm *BattleshipGameManager) FetchGame(gameUuid string) (*Game, error) {
	bgm.mu.RLock()
	game, prs := bgm.games[gameUuid]
	bgm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrGameNotExists(gameUuid)
	}
	if game == nil {
		return nil, cerr.ErrGameIsNil(gameUuid)
	}

	return game, nil
}

func (bgm *BattleshipGameManager) TerminateGame(gameUuid string) {
	bgm.mu.Lock()
	delete(bgm.games, gameUuid)
	bgm.mu.Unlock()
}

func (bgm *BattleshipGameManager) CountGames() int {
	bgm.mu.RLock()
	defer bgm.mu.RUnlock()
	return len(bgm.games)
}
