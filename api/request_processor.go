package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/saeidalz13/battleship-tcp/db/sqlc"
	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
	mb "github.com/saeidalz13/battleship-tcp/models/battleship"
	mc "github.com/saeidalz13/battleship-tcp/models/connection"
)

const (
	// A player that keeps sending moves the game cannot accept is
	// treated as violating the protocol.
	maxInvalidMovesPerTurn = 10
)

var upgrader = websocket.Upgrader{
	// good average time since this is not a high-latency operation such as video streaming
	HandshakeTimeout: time.Second * 5,

	// a board is the largest payload and fits in one buffer
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RequestProcessor owns the life of a connection: the join handshake,
// the pairing queue and the turn loop of every game.
type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	analytics      *sqlc.AnalyticsManager
	timeouts       Timeouts

	readyChan chan *mc.Session
	wg        sync.WaitGroup
}

func NewRequestProcessor(
	sessionManager mc.SessionManager,
	gameManager mb.GameManager,
	analytics *sqlc.AnalyticsManager,
	timeouts Timeouts,
) *RequestProcessor {
	return &RequestProcessor{
		sessionManager: sessionManager,
		gameManager:    gameManager,
		analytics:      analytics,
		timeouts:       timeouts,
		readyChan:      make(chan *mc.Session),
	}
}

// Wait blocks until every handshake and game goroutine has returned.
func (rp *RequestProcessor) Wait() {
	rp.wg.Wait()
}

// WsHandler upgrades GET requests and speaks the frame protocol inside
// binary websocket messages.
func (rp *RequestProcessor) WsHandler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied to the client
			log.Println(err)
			return
		}

		log.Println("a new websocket connection established\tRemote Addr:", conn.RemoteAddr().String())
		rp.HandleConn(ctx, mc.NewWsStream(conn))
	})
}

// HandleConn runs the join handshake of conn in its own goroutine.
func (rp *RequestProcessor) HandleConn(ctx context.Context, conn mc.Conn) {
	session := rp.sessionManager.GenerateNewSession(conn)

	rp.wg.Add(1)
	go func() {
		defer rp.wg.Done()
		rp.processJoin(ctx, session)
	}()
}

// processJoin waits for the join message. A bad board or any other
// message closes the connection without a reply.
func (rp *RequestProcessor) processJoin(ctx context.Context, session *mc.Session) {
	msg, err := session.ReadMessage(rp.timeouts.Join)
	if err != nil {
		log.Printf("join failed [%s]: %v\n", session.RemoteAddr(), err)
		rp.sessionManager.TerminateSession(session.Id())
		return
	}

	if !msg.Is(mc.MessageTypeJoin) {
		log.Printf("join failed [%s]: %v\n", session.RemoteAddr(), cerr.ErrUnexpectedMessage(string(mc.MessageTypeJoin), string(msg.Type)))
		rp.sessionManager.TerminateSession(session.Id())
		return
	}

	board, err := msg.Board()
	if err != nil {
		log.Printf("join rejected [%s]: %v\n", session.RemoteAddr(), err)
		rp.sessionManager.TerminateSession(session.Id())
		return
	}
	session.SetBoard(board)

	if err := session.WriteMessage(mc.NewAcceptMessage()); err != nil {
		log.Printf("failed to accept [%s]: %v\n", session.RemoteAddr(), err)
		rp.sessionManager.TerminateSession(session.Id())
		return
	}
	session.SetState(mc.SessionStateAwaitingOpponent)

	select {
	case rp.readyChan <- session:
	case <-ctx.Done():
		rp.sessionManager.TerminateSession(session.Id())
	}
}

// PairSessions turns every two accepted sessions into a game, in the
// order they were accepted. The first of the pair hosts.
func (rp *RequestProcessor) PairSessions(ctx context.Context) {
	var waiting *mc.Session

	for {
		select {
		case <-ctx.Done():
			if waiting != nil {
				rp.sessionManager.TerminateSession(waiting.Id())
			}
			return

		case session := <-rp.readyChan:
			// the waiting one may have been closed by cleanup or shutdown
			if waiting == nil || waiting.State() == mc.SessionStateFinished {
				waiting = session
				continue
			}

			host, join := waiting, session
			waiting = nil

			game := rp.gameManager.CreateGame()
			rp.wg.Add(1)
			go func() {
				defer rp.wg.Done()
				rp.runGame(game, host, join)
			}()
		}
	}
}

// playerErr tells which player caused a game to end early.
type playerErr struct {
	player *mb.Player
	err    error
}

func (pe playerErr) Error() string {
	return pe.err.Error()
}

func (pe playerErr) Unwrap() error {
	return pe.err
}

func (rp *RequestProcessor) runGame(game *mb.Game, hostSession, joinSession *mc.Session) {
	hostPlayer := game.CreateHostPlayer(hostSession.Id(), hostSession.Board())
	joinPlayer := game.CreateJoinPlayer(joinSession.Id(), joinSession.Board())
	sessions := map[*mb.Player]*mc.Session{
		hostPlayer: hostSession,
		joinPlayer: joinSession,
	}

	defer func() {
		rp.gameManager.TerminateGame(game.Uuid())
		rp.sessionManager.TerminateSession(hostSession.Id())
		rp.sessionManager.TerminateSession(joinSession.Id())
		log.Printf("game terminated: %s\n", game.Uuid())
	}()

	for _, session := range sessions {
		session.SetGameUuid(game.Uuid())
		session.SetState(mc.SessionStateInGame)
	}
	game.Start()
	rp.analytics.RecordGameCreated()
	log.Printf("game started: %s\thost: %s\tjoin: %s\n", game.Uuid(), hostSession.RemoteAddr(), joinSession.RemoteAddr())

	for !game.IsFinished() {
		attacker := game.CurrentPlayer()
		defender := game.GetOtherPlayer(attacker)

		result, err := rp.playTurn(game, attacker, sessions[attacker])
		if err == nil {
			// the defender learns about every shot, hit or not
			if noteErr := rp.sessionManager.Communicate(sessions[defender].Id(), mc.NewNoteMessage(result.Coordinates)); noteErr != nil {
				err = playerErr{player: defender, err: noteErr}
			}
		}
		if err != nil {
			var pe playerErr
			loser := attacker
			if errors.As(err, &pe) {
				loser = pe.player
			}
			rp.forfeit(game, loser, sessions, err)
			return
		}

		if result.IsGameOver {
			rp.finish(game, sessions)
			return
		}
	}
}

// playTurn prompts the attacker until it sends a move the game accepts,
// then replies with the outcome.
func (rp *RequestProcessor) playTurn(game *mb.Game, attacker *mb.Player, session *mc.Session) (mb.AttackResult, error) {
	for invalidMoves := 0; ; {
		if err := session.WriteMessage(mc.NewTurnMessage()); err != nil {
			return mb.AttackResult{}, err
		}

		msg, err := session.ReadMessage(rp.timeouts.Move)
		if err != nil {
			return mb.AttackResult{}, err
		}
		if !msg.Is(mc.MessageTypeMove) {
			return mb.AttackResult{}, cerr.ErrUnexpectedMessage(string(mc.MessageTypeMove), string(msg.Type))
		}

		c, err := msg.Coordinates()
		if err == nil {
			var result mb.AttackResult
			result, err = game.Attack(attacker, c)
			if err == nil {
				return result, session.WriteMessage(mc.NewOutcomeMessage(result.Outcome))
			}
		}

		if !errors.Is(err, cerr.ErrInvalidCoordinate) && !errors.Is(err, cerr.ErrAlreadyGuessed) {
			return mb.AttackResult{}, err
		}

		invalidMoves++
		log.Printf("invalid move [%s]: %v\n", session.RemoteAddr(), err)
		if invalidMoves >= maxInvalidMovesPerTurn {
			return mb.AttackResult{}, cerr.ErrTooManyInvalidMoves(invalidMoves)
		}
	}
}

func (rp *RequestProcessor) finish(game *mb.Game, sessions map[*mb.Player]*mc.Session) {
	winner := game.Winner()
	loser := game.GetOtherPlayer(winner)

	if err := sessions[winner].WriteMessage(mc.NewFinishMessage(true, "")); err != nil {
		log.Printf("failed to send finish [%s]: %v\n", sessions[winner].RemoteAddr(), err)
	}
	if err := sessions[loser].WriteMessage(mc.NewFinishMessage(false, "")); err != nil {
		log.Printf("failed to send finish [%s]: %v\n", sessions[loser].RemoteAddr(), err)
	}

	rp.analytics.RecordGameFinished(false)
	log.Printf("game finished: %s\twinner: %s\tsunk: %d/%d\n", game.Uuid(), sessions[winner].RemoteAddr(), loser.Ships().SunkenShips(), len(mb.Fleet))
}

// forfeit ends the game in favour of the player that did nothing wrong.
// The survivor is told best effort, it may be gone as well.
func (rp *RequestProcessor) forfeit(game *mb.Game, loser *mb.Player, sessions map[*mb.Player]*mc.Session, reason error) {
	// the last shot won the game and only its outcome or note failed to
	// go out, so the result stands
	if game.IsFinished() && game.Winner() != nil {
		log.Printf("failed to deliver last shot: %s\treason: %v\n", game.Uuid(), reason)
		rp.finish(game, sessions)
		return
	}

	game.Forfeit(loser)
	winner := game.GetOtherPlayer(loser)

	log.Printf("game forfeited: %s\tloser: %s\treason: %v\n", game.Uuid(), sessions[loser].RemoteAddr(), reason)

	if err := sessions[winner].WriteMessage(mc.NewFinishMessage(true, mc.FinishReasonForfeit)); err != nil {
		log.Printf("failed to send forfeit [%s]: %v\n", sessions[winner].RemoteAddr(), err)
	}
	rp.analytics.RecordGameFinished(true)
}
