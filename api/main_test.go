package api

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	mb "github.com/saeidalz13/battleship-tcp/models/battleship"
	mc "github.com/saeidalz13/battleship-tcp/models/connection"
)

const testIoTimeout = time.Second * 5

// Both test boards carry the fleet in the top left corner, rows A to E.
var testFleetPlacement = [][2]string{
	{"A1", "A2"},
	{"B1", "B3"},
	{"C1", "C3"},
	{"D1", "D4"},
	{"E1", "E5"},
}

func newTestBoard(t *testing.T) *mb.Board {
	t.Helper()

	board := mb.NewBoard()
	for i, ship := range mb.Fleet {
		if err := mb.PlaceShip(board, testFleetPlacement[i][0], testFleetPlacement[i][1], ship); err != nil {
			t.Fatal(err)
		}
	}
	return board
}

// startTestServer listens on free loopback ports and serves until the
// test ends.
func startTestServer(t *testing.T, optFuncs ...Option) *Server {
	t.Helper()

	opts := append([]Option{WithHost("127.0.0.1"), WithPort(0)}, optFuncs...)
	server := NewServer(opts...)
	if err := server.Listen(); err != nil {
		t.Fatal(err)
	}

	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := server.Serve(context.Background()); err != nil {
			t.Error(err)
		}
	}()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testIoTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			t.Error(err)
		}
		<-served
	})
	return server
}

type testClient struct {
	t    *testing.T
	conn net.Conn
}

func dialTestClient(t *testing.T, server *Server) *testClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", server.Addr().String(), testIoTimeout)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{t: t, conn: conn}
}

// joinTestClient dials and completes the join handshake.
func joinTestClient(t *testing.T, server *Server) *testClient {
	t.Helper()

	tc := dialTestClient(t, server)
	tc.send(mc.NewJoinMessage(newTestBoard(t)).String())
	tc.expect("accept")
	return tc
}

func (tc *testClient) send(payload string) {
	tc.t.Helper()

	_ = tc.conn.SetWriteDeadline(time.Now().Add(testIoTimeout))
	if err := mc.WriteFrame(tc.conn, []byte(payload)); err != nil {
		tc.t.Fatalf("failed to send %q: %v", payload, err)
	}
}

func (tc *testClient) read() (string, error) {
	_ = tc.conn.SetReadDeadline(time.Now().Add(testIoTimeout))
	payload, err := mc.DecodeFrame(tc.conn)
	return string(payload), err
}

func (tc *testClient) expect(expected string) {
	tc.t.Helper()

	got, err := tc.read()
	if err != nil {
		tc.t.Fatalf("expected payload: %s\tgot error: %v", expected, err)
	}
	if got != expected {
		tc.t.Fatalf("expected payload: %s\tgot: %s", expected, got)
	}
}

// expectClosed reads until the server closes the connection. Nothing
// else may arrive before that.
func (tc *testClient) expectClosed() {
	tc.t.Helper()

	got, err := tc.read()
	if err == nil {
		tc.t.Fatalf("expected closed connection\tgot: %s", got)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		tc.t.Fatalf("expected closed connection\tgot timeout: %v", err)
	}
}

// fire plays one accepted shot: turn, move, outcome for the attacker
// and the note for the defender.
func fire(attacker, defender *testClient, coord, outcome string) {
	attacker.t.Helper()

	attacker.expect("turn")
	attacker.send("move " + coord)
	attacker.expect("outcome " + outcome)
	defender.expect("note " + coord)
}
