package connection

import (
	"errors"
	"fmt"
	"io"
	"net"

	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

const (
	ConnErrClosed uint8 = iota
	ConnErrTimeout
	ConnErrMalformedFrame
	ConnErrProtocolViolation
	ConnErrIO
)

// ConnErr is returned by every failed read or write of a Session.
// None of these are recoverable within a game.
type ConnErr struct {
	code uint8
	desc string
	err  error
}

func NewConnErr(code uint8) ConnErr {
	return ConnErr{code: code}
}

func (c ConnErr) AddDesc(desc string) ConnErr {
	c.desc = desc
	return c
}

func (c ConnErr) Wrap(err error) ConnErr {
	c.err = err
	return c
}

func (c ConnErr) Error() string {
	if c.err != nil {
		return fmt.Sprintf("Connection error - Code: %d\tdesc: %s\terr: %s", c.code, c.desc, c.err)
	}
	return fmt.Sprintf("Connection error - Code: %d\tdesc: %s", c.code, c.desc)
}

func (c ConnErr) Unwrap() error {
	return c.err
}

func (c ConnErr) Code() uint8 {
	return c.code
}

// classifyConnErr maps an error from the framing layer or the
// underlying connection to a ConnErr.
func classifyConnErr(err error, remoteAddr string) ConnErr {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return NewConnErr(ConnErrTimeout).AddDesc("deadline exceeded for " + remoteAddr).Wrap(err)

	case errors.Is(err, cerr.ErrConnectionClosed), errors.Is(err, net.ErrClosed), errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe):
		return NewConnErr(ConnErrClosed).AddDesc("peer closed " + remoteAddr).Wrap(err)

	case errors.Is(err, cerr.ErrMalformedLength), errors.Is(err, cerr.ErrTruncatedPayload), errors.Is(err, cerr.ErrPayloadTooLarge):
		return NewConnErr(ConnErrMalformedFrame).AddDesc("bad frame from " + remoteAddr).Wrap(err)

	case errors.Is(err, cerr.ErrProtocolViolation):
		return NewConnErr(ConnErrProtocolViolation).AddDesc("invalid message from " + remoteAddr).Wrap(err)
	}

	return NewConnErr(ConnErrIO).AddDesc("io failure with " + remoteAddr).Wrap(err)
}
