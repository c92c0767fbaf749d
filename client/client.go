package client

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
	mb "github.com/saeidalz13/battleship-tcp/models/battleship"
	mc "github.com/saeidalz13/battleship-tcp/models/connection"
)

const (
	DefaultConnectTimeout = time.Second * 2
	defaultWriteTimeout   = time.Second * 10
)

// MovePicker chooses where to fire next. attackGrid holds every shot
// fired so far and must not be modified.
type MovePicker interface {
	PickMove(ctx context.Context, attackGrid *mb.Board) (mb.Coordinates, error)
}

// Observer is told about every shot as the client learns about it.
type Observer interface {
	// OnOutcome reports the result of the client's own shot.
	OnOutcome(c mb.Coordinates, outcome mb.Outcome, attackGrid *mb.Board)
	// OnNote reports a shot of the opponent on the client's board.
	OnNote(c mb.Coordinates, outcome mb.Outcome, board *mb.Board)
}

type NopObserver struct{}

func (NopObserver) OnOutcome(mb.Coordinates, mb.Outcome, *mb.Board) {}
func (NopObserver) OnNote(mb.Coordinates, mb.Outcome, *mb.Board)    {}

type Result struct {
	Won bool
	// Forfeit is set when the game ended because the opponent left or
	// misbehaved.
	Forfeit    bool
	ShotsFired int
	ShotsTaken int
}

type Client struct {
	session    *mc.Session
	board      *mb.Board
	ships      mb.ShipLog
	attackGrid *mb.Board
}

// Dial connects to a server. A zero timeout means DefaultConnectTimeout.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient speaks the protocol over an established connection.
func NewClient(conn mc.Conn) *Client {
	return &Client{
		session:    mc.NewSession(conn.RemoteAddr().String(), conn, defaultWriteTimeout),
		attackGrid: mb.NewBoard(),
	}
}

func (c *Client) Board() *mb.Board {
	return c.board
}

func (c *Client) AttackGrid() *mb.Board {
	return c.attackGrid
}

func (c *Client) Close() {
	c.session.Close()
}

// Join sends the placed board and waits for the server to accept it.
// A rejected board is answered by the server closing the connection.
func (c *Client) Join(ctx context.Context, board *mb.Board) error {
	if !board.IsReady() {
		return cerr.ErrBoardNotReady(board.CountState(mb.CellOccupied))
	}

	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	if err := c.session.WriteMessage(mc.NewJoinMessage(board)); err != nil {
		return err
	}
	msg, err := c.session.ReadMessage(0)
	if err != nil {
		return contextErr(ctx, err)
	}
	if !msg.Is(mc.MessageTypeAccept) {
		return cerr.ErrUnexpectedMessage(string(mc.MessageTypeAccept), msg.String())
	}

	c.board = board
	c.ships = mb.NewShipLog()
	c.session.SetState(mc.SessionStateAwaitingOpponent)
	return nil
}

// Play answers every turn with a move from picker until the server
// finishes the game. Cancelling ctx closes the connection.
func (c *Client) Play(ctx context.Context, picker MovePicker, observer Observer) (Result, error) {
	if c.board == nil {
		return Result{}, errors.New("join must succeed before playing")
	}
	if observer == nil {
		observer = NopObserver{}
	}

	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	var (
		result   Result
		lastMove *mb.Coordinates
	)
	c.session.SetState(mc.SessionStateInGame)

	for {
		// the opponent may take its time, the server bounds it
		msg, err := c.session.ReadMessage(0)
		if err != nil {
			return result, contextErr(ctx, err)
		}

		switch msg.Type {
		case mc.MessageTypeTurn:
			move, err := picker.PickMove(ctx, c.attackGrid)
			if err != nil {
				return result, err
			}
			if err := c.session.WriteMessage(mc.NewMoveMessage(move)); err != nil {
				return result, contextErr(ctx, err)
			}
			lastMove = &move

		case mc.MessageTypeOutcome:
			if lastMove == nil {
				return result, cerr.ErrUnexpectedMessage(string(mc.MessageTypeTurn), msg.String())
			}
			outcome, err := msg.Outcome()
			if err != nil {
				return result, err
			}
			if err := c.attackGrid.RecordOutcome(*lastMove, outcome); err != nil {
				return result, err
			}
			result.ShotsFired++
			observer.OnOutcome(*lastMove, outcome, c.attackGrid)
			lastMove = nil

		case mc.MessageTypeNote:
			coord, err := msg.Coordinates()
			if err != nil {
				return result, err
			}
			outcome, err := mb.ResolveShot(c.board, c.ships, coord)
			if err != nil {
				// the server never repeats a cell, the boards diverged
				log.Printf("failed to apply opponent shot %s: %v\n", coord, err)
				return result, err
			}
			result.ShotsTaken++
			observer.OnNote(coord, outcome, c.board)

		case mc.MessageTypeFinish:
			won, reason, err := msg.Finish()
			if err != nil {
				return result, err
			}
			result.Won = won
			result.Forfeit = reason == mc.FinishReasonForfeit
			c.session.SetState(mc.SessionStateFinished)
			return result, nil

		default:
			return result, cerr.ErrUnexpectedMessage(string(mc.MessageTypeTurn), msg.String())
		}
	}
}

func contextErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
