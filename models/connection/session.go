package connection

import (
	"io"
	"log"
	"net"
	"sync"
	"time"

	mb "github.com/saeidalz13/battleship-tcp/models/battleship"
)

type SessionState uint8

const (
	SessionStateAwaitingJoin SessionState = iota
	SessionStateAwaitingOpponent
	SessionStateInGame
	SessionStateFinished
)

func (ss SessionState) String() string {
	switch ss {
	case SessionStateAwaitingJoin:
		return "awaiting-join"
	case SessionStateAwaitingOpponent:
		return "awaiting-opponent"
	case SessionStateInGame:
		return "in-game"
	case SessionStateFinished:
		return "finished"
	}
	return "unknown"
}

// Conn is the byte stream a Session speaks frames over. net.Conn
// satisfies it, and so does WsStream.
type Conn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() net.Addr
}

type Session struct {
	id           string
	conn         Conn
	remoteAddr   string
	writeTimeout time.Duration
	createdAt    time.Time

	mu       sync.Mutex
	state    SessionState
	board    *mb.Board
	gameUuid string

	closeOnce sync.Once
}

func NewSession(id string, conn Conn, writeTimeout time.Duration) *Session {
	return &Session{
		id:           id,
		conn:         conn,
		remoteAddr:   conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		createdAt:    time.Now(),
		state:        SessionStateAwaitingJoin,
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) RemoteAddr() string {
	return s.remoteAddr
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) SetState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Board is the board received with the join message.
func (s *Session) Board() *mb.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

func (s *Session) SetBoard(board *mb.Board) {
	s.mu.Lock()
	s.board = board
	s.mu.Unlock()
}

func (s *Session) GameUuid() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameUuid
}

func (s *Session) SetGameUuid(gameUuid string) {
	s.mu.Lock()
	s.gameUuid = gameUuid
	s.mu.Unlock()
}

// ReadMessage blocks for one frame, at most for timeout when it is
// positive, and parses it.
func (s *Session) ReadMessage(timeout time.Duration) (Message, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return Message{}, classifyConnErr(err, s.remoteAddr)
	}

	payload, err := DecodeFrame(s.conn)
	if err != nil {
		return Message{}, classifyConnErr(err, s.remoteAddr)
	}

	msg, err := ParseMessage(payload)
	if err != nil {
		return Message{}, classifyConnErr(err, s.remoteAddr)
	}
	return msg, nil
}

// WriteMessage frames and writes msg. Writes are not retried: a
// partially written frame cannot be resumed.
func (s *Session) WriteMessage(msg Message) error {
	var deadline time.Time
	if s.writeTimeout > 0 {
		deadline = time.Now().Add(s.writeTimeout)
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return classifyConnErr(err, s.remoteAddr)
	}

	if err := WriteFrame(s.conn, msg.Encode()); err != nil {
		return classifyConnErr(err, s.remoteAddr)
	}
	return nil
}

// Close is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.SetState(SessionStateFinished)
		if err := s.conn.Close(); err != nil {
			log.Printf("failed to close connection [%s]: %v\n", s.remoteAddr, err)
			return
		}
		log.Println("connection closed:", s.remoteAddr)
	})
}
