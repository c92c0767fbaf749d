package battleship

import (
	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

type GameState uint8

const (
	GameStateSettingUp GameState = iota
	GameStateHostTurn
	GameStateJoinTurn
	GameStateFinished
)

func (gs GameState) String() string {
	switch gs {
	case GameStateSettingUp:
		return "setting-up"
	case GameStateHostTurn:
		return "host-turn"
	case GameStateJoinTurn:
		return "join-turn"
	case GameStateFinished:
		return "finished"
	}
	return "unknown"
}

// Game holds everything one pair of players shares: both boards and
// ship logs plus whose turn it is. A Game is driven by a single
// goroutine, so it has no locking of its own.
type Game struct {
	uuid       string
	state      GameState
	hostPlayer *Player
	joinPlayer *Player
	winner     *Player
}

func newGame(gameUuid string) *Game {
	return &Game{
		uuid:  gameUuid,
		state: GameStateSettingUp,
	}
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) State() GameState {
	return g.state
}

func (g *Game) IsFinished() bool {
	return g.state == GameStateFinished
}

func (g *Game) Winner() *Player {
	return g.winner
}

func (g *Game) CreateHostPlayer(sessionId string, defenceGrid *Board) *Player {
	g.hostPlayer = NewPlayer(true, sessionId, defenceGrid)
	return g.hostPlayer
}

func (g *Game) CreateJoinPlayer(sessionId string, defenceGrid *Board) *Player {
	g.joinPlayer = NewPlayer(false, sessionId, defenceGrid)
	return g.joinPlayer
}

func (g *Game) GetOtherPlayer(p *Player) *Player {
	if p == g.hostPlayer {
		return g.joinPlayer
	}
	return g.hostPlayer
}

// Start moves the game out of setup once both players exist. The host
// always fires first.
func (g *Game) Start() bool {
	if g.state != GameStateSettingUp || g.hostPlayer == nil || g.joinPlayer == nil {
		return false
	}
	g.state = GameStateHostTurn
	return true
}

// CurrentPlayer is the player holding the turn, nil outside of play.
func (g *Game) CurrentPlayer() *Player {
	switch g.state {
	case GameStateHostTurn:
		return g.hostPlayer
	case GameStateJoinTurn:
		return g.joinPlayer
	}
	return nil
}

type AttackResult struct {
	Coordinates Coordinates
	Outcome     Outcome
	IsGameOver  bool
}

// Attack resolves one shot of attacker against the other player's
// board. Defeat is checked before the turn passes, so the result of
// the final shot also carries the game over.
func (g *Game) Attack(attacker *Player, c Coordinates) (AttackResult, error) {
	if g.IsFinished() {
		return AttackResult{}, cerr.ErrGameFinished(g.uuid)
	}
	if g.CurrentPlayer() != attacker {
		return AttackResult{}, cerr.ErrNotTurnForAttacker(attacker.Uuid())
	}

	defender := g.GetOtherPlayer(attacker)
	outcome, err := ResolveShot(defender.defenceGrid, defender.ships, c)
	if err != nil {
		return AttackResult{}, err
	}

	result := AttackResult{Coordinates: c, Outcome: outcome}
	if defender.IsLoser() {
		g.finish(attacker)
		result.IsGameOver = true
		return result, nil
	}

	g.switchTurn()
	return result, nil
}

// Forfeit ends the game with the other player as the winner.
func (g *Game) Forfeit(loser *Player) {
	if g.IsFinished() {
		return
	}
	g.finish(g.GetOtherPlayer(loser))
}

func (g *Game) finish(winner *Player) {
	g.state = GameStateFinished
	g.winner = winner
	if winner == nil {
		return
	}
	winner.setMatchStatus(PlayerMatchStatusWon)
	if loser := g.GetOtherPlayer(winner); loser != nil {
		loser.setMatchStatus(PlayerMatchStatusLost)
	}
}

func (g *Game) switchTurn() {
	if g.state == GameStateHostTurn {
		g.state = GameStateJoinTurn
	} else {
		g.state = GameStateHostTurn
	}
}
