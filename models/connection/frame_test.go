package connection

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "single byte", payload: []byte("t")},
		{name: "message", payload: []byte("move J10")},
		{name: "multi byte marker", payload: []byte("outcome hit-sink ³")},
		{name: "max size", payload: bytes.Repeat([]byte{'x'}, MaxPayloadSize)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			frame, err := EncodeFrame(test.payload)
			if err != nil {
				t.Fatal(err)
			}
			if len(frame) != LengthFieldWidth+len(test.payload) {
				t.Fatalf("expected frame length: %d\tgot: %d", LengthFieldWidth+len(test.payload), len(frame))
			}

			decoded, err := DecodeFrame(bytes.NewReader(frame))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(decoded, test.payload) {
				t.Fatalf("expected payload of %d bytes\tgot: %d bytes", len(test.payload), len(decoded))
			}
		})
	}
}

func TestEncodeFrameLengthField(t *testing.T) {
	frame, err := EncodeFrame([]byte("outcome hit-sink ³"))
	if err != nil {
		t.Fatal(err)
	}
	// 18 characters but 19 bytes
	if got := string(frame[:LengthFieldWidth]); got != "00019" {
		t.Fatalf("expected length field: %s\tgot: %s", "00019", got)
	}

	empty, err := EncodeFrame(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(empty) != "00000" {
		t.Fatalf("expected empty frame: %s\tgot: %s", "00000", empty)
	}
}

func TestEncodeFrameTooLarge(t *testing.T) {
	_, err := EncodeFrame(bytes.Repeat([]byte{'x'}, MaxPayloadSize+1))
	if !errors.Is(err, cerr.ErrPayloadTooLarge) {
		t.Fatalf("expected error: %v\tgot: %v", cerr.ErrPayloadTooLarge, err)
	}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, bytes.Repeat([]byte{'x'}, MaxPayloadSize+1)); !errors.Is(err, cerr.ErrPayloadTooLarge) {
		t.Fatalf("expected error: %v\tgot: %v", cerr.ErrPayloadTooLarge, err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected nothing written\tgot: %d bytes", buf.Len())
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	tests := []struct {
		name        string
		stream      string
		expectedErr error
	}{
		{name: "closed before frame", stream: "", expectedErr: cerr.ErrConnectionClosed},
		{name: "short length field", stream: "000", expectedErr: cerr.ErrMalformedLength},
		{name: "non numeric length", stream: "00a09move A1", expectedErr: cerr.ErrMalformedLength},
		{name: "signed length", stream: "+0004turn", expectedErr: cerr.ErrMalformedLength},
		{name: "zero length", stream: "00000", expectedErr: cerr.ErrMalformedLength},
		{name: "truncated payload", stream: "00008move", expectedErr: cerr.ErrTruncatedPayload},
		{name: "no payload", stream: "00004", expectedErr: cerr.ErrTruncatedPayload},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			payload, err := DecodeFrame(strings.NewReader(test.stream))
			if !errors.Is(err, test.expectedErr) {
				t.Fatalf("expected error: %v\tgot: %v", test.expectedErr, err)
			}
			if payload != nil {
				t.Fatalf("expected no payload\tgot: %q", payload)
			}
		})
	}
}

func TestDecodeFrameStream(t *testing.T) {
	var buf bytes.Buffer
	messages := []string{"accept", "turn", "outcome hit-sink ³", "finish win"}
	for _, msg := range messages {
		if err := WriteFrame(&buf, []byte(msg)); err != nil {
			t.Fatal(err)
		}
	}

	// one byte at a time, the way a slow socket delivers it
	r := oneByteReader{&buf}
	for _, msg := range messages {
		payload, err := DecodeFrame(r)
		if err != nil {
			t.Fatal(err)
		}
		if string(payload) != msg {
			t.Fatalf("expected payload: %s\tgot: %s", msg, payload)
		}
	}

	if _, err := DecodeFrame(r); !errors.Is(err, cerr.ErrConnectionClosed) {
		t.Fatalf("expected error: %v\tgot: %v", cerr.ErrConnectionClosed, err)
	}
}

type oneByteReader struct {
	r io.Reader
}

func (obr oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return obr.r.Read(p[:1])
}
