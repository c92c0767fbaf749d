package connection

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

const (
	// Width of the decimal length field in front of every payload
	LengthFieldWidth = 5
	MaxPayloadSize   = 99999
)

// EncodeFrame prefixes payload with its byte length, zero padded to
// LengthFieldWidth digits.
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, cerr.ErrPayloadSize(len(payload), MaxPayloadSize)
	}

	frame := make([]byte, 0, LengthFieldWidth+len(payload))
	frame = fmt.Appendf(frame, "%0*d", LengthFieldWidth, len(payload))
	frame = append(frame, payload...)
	return frame, nil
}

func WriteFrame(w io.Writer, payload []byte) error {
	frame, err := EncodeFrame(payload)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// DecodeFrame reads exactly one frame from r. It either returns the
// whole payload or an error; a partial payload is never returned.
// Errors from r other than EOF (e.g. deadlines) are returned as is.
func DecodeFrame(r io.Reader) ([]byte, error) {
	lengthField := make([]byte, LengthFieldWidth)
	n, err := io.ReadFull(r, lengthField)
	switch {
	case n == 0 && errors.Is(err, io.EOF):
		return nil, cerr.ErrConnectionClosed
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, cerr.ErrLengthField(lengthField[:n])
	case err != nil:
		return nil, err
	}

	for _, b := range lengthField {
		if b < '0' || b > '9' {
			return nil, cerr.ErrLengthField(lengthField)
		}
	}
	length, err := strconv.Atoi(string(lengthField))
	if err != nil || length <= 0 {
		return nil, cerr.ErrLengthField(lengthField)
	}

	payload := make([]byte, length)
	n, err = io.ReadFull(r, payload)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return nil, cerr.ErrShortPayload(length, n)
	case err != nil:
		return nil, err
	}

	return payload, nil
}
