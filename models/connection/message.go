package connection

import (
	"strings"
	"unicode/utf8"

	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
	mb "github.com/saeidalz13/battleship-tcp/models/battleship"
)

// Message is one protocol message: a type token followed by
// space separated arguments.
type Message struct {
	Type MessageType
	Args []string
}

func NewMessage(msgType MessageType, args ...string) Message {
	return Message{Type: msgType, Args: args}
}

func NewJoinMessage(board *mb.Board) Message {
	return NewMessage(MessageTypeJoin, board.Serialize())
}

func NewAcceptMessage() Message {
	return NewMessage(MessageTypeAccept)
}

func NewMoveMessage(c mb.Coordinates) Message {
	return NewMessage(MessageTypeMove, c.String())
}

func NewTurnMessage() Message {
	return NewMessage(MessageTypeTurn)
}

func NewNoteMessage(c mb.Coordinates) Message {
	return NewMessage(MessageTypeNote, c.String())
}

func NewOutcomeMessage(outcome mb.Outcome) Message {
	switch outcome.Kind {
	case mb.OutcomeHit:
		return NewMessage(MessageTypeOutcome, OutcomeArgHit)
	case mb.OutcomeHitAndSunk:
		return NewMessage(MessageTypeOutcome, OutcomeArgHitSink, string(outcome.Ship.Marker))
	default:
		return NewMessage(MessageTypeOutcome, OutcomeArgMiss)
	}
}

func NewFinishMessage(won bool, reason string) Message {
	arg := FinishArgLose
	if won {
		arg = FinishArgWin
	}
	if reason == "" {
		return NewMessage(MessageTypeFinish, arg)
	}
	return NewMessage(MessageTypeFinish, arg, reason)
}

func (m Message) Encode() []byte {
	if len(m.Args) == 0 {
		return []byte(m.Type)
	}
	return []byte(string(m.Type) + " " + strings.Join(m.Args, " "))
}

func (m Message) String() string {
	return string(m.Encode())
}

// ParseMessage splits a payload into its type and arguments and checks
// the argument count of the type. Unknown types are protocol violations.
// A move keeps its whole tail as one argument, possibly empty, and is
// left to the coordinate codec.
func ParseMessage(payload []byte) (Message, error) {
	text := string(payload)
	if !utf8.ValidString(text) {
		return Message{}, cerr.ErrMalformedMessage(text)
	}

	token, rest, _ := strings.Cut(text, " ")
	msg := Message{Type: MessageType(token)}
	switch {
	case msg.Type == MessageTypeMove:
		msg.Args = []string{rest}
	case rest != "":
		msg.Args = strings.Split(rest, " ")
	}

	var valid bool
	switch msg.Type {
	case MessageTypeAccept, MessageTypeTurn:
		valid = len(msg.Args) == 0

	case MessageTypeMove:
		valid = true

	case MessageTypeJoin, MessageTypeNote:
		valid = len(msg.Args) == 1 && msg.Args[0] != ""

	case MessageTypeOutcome:
		switch {
		case len(msg.Args) == 1:
			valid = msg.Args[0] == OutcomeArgMiss || msg.Args[0] == OutcomeArgHit
		case len(msg.Args) == 2:
			valid = msg.Args[0] == OutcomeArgHitSink && utf8.RuneCountInString(msg.Args[1]) == 1
		}

	case MessageTypeFinish:
		if len(msg.Args) == 1 || len(msg.Args) == 2 {
			valid = msg.Args[0] == FinishArgWin || msg.Args[0] == FinishArgLose
		}
	}

	if !valid {
		return Message{}, cerr.ErrMalformedMessage(text)
	}
	return msg, nil
}

func (m Message) Is(msgType MessageType) bool {
	return m.Type == msgType
}

// Board decodes the argument of a join message.
func (m Message) Board() (*mb.Board, error) {
	if !m.Is(MessageTypeJoin) {
		return nil, cerr.ErrUnexpectedMessage(string(MessageTypeJoin), m.String())
	}
	return mb.DeserializeBoard(m.Args[0])
}

// Coordinates decodes the argument of a move or note message.
func (m Message) Coordinates() (mb.Coordinates, error) {
	if !m.Is(MessageTypeMove) && !m.Is(MessageTypeNote) {
		return mb.Coordinates{}, cerr.ErrUnexpectedMessage(string(MessageTypeMove), m.String())
	}
	return mb.ParseCoordinates(m.Args[0])
}

// Outcome decodes an outcome message. The sunk ship is looked up by
// its marker.
func (m Message) Outcome() (mb.Outcome, error) {
	if !m.Is(MessageTypeOutcome) {
		return mb.Outcome{}, cerr.ErrUnexpectedMessage(string(MessageTypeOutcome), m.String())
	}

	switch m.Args[0] {
	case OutcomeArgHit:
		return mb.Outcome{Kind: mb.OutcomeHit}, nil
	case OutcomeArgHitSink:
		marker, _ := utf8.DecodeRuneInString(m.Args[1])
		ship, ok := mb.ShipByMarker(marker)
		if !ok {
			return mb.Outcome{}, cerr.ErrMalformedMessage(m.String())
		}
		return mb.Outcome{Kind: mb.OutcomeHitAndSunk, Ship: &ship}, nil
	default:
		return mb.Outcome{Kind: mb.OutcomeMiss}, nil
	}
}

// Finish decodes a finish message into whether the receiver won and
// the optional reason.
func (m Message) Finish() (bool, string, error) {
	if !m.Is(MessageTypeFinish) {
		return false, "", cerr.ErrUnexpectedMessage(string(MessageTypeFinish), m.String())
	}

	var reason string
	if len(m.Args) == 2 {
		reason = m.Args[1]
	}
	return m.Args[0] == FinishArgWin, reason, nil
}
