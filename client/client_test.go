package client

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"testing"
	"time"

	"github.com/saeidalz13/battleship-tcp/api"
	mb "github.com/saeidalz13/battleship-tcp/models/battleship"
	mc "github.com/saeidalz13/battleship-tcp/models/connection"
)

const testIoTimeout = time.Second * 5

func newTestRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

type fakeServer struct {
	t       *testing.T
	session *mc.Session
}

// newPipeClient connects a client to a scripted server end.
func newPipeClient(t *testing.T) (*Client, *fakeServer) {
	t.Helper()

	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() {
		_ = serverConn.Close()
		_ = clientConn.Close()
	})
	return NewClient(clientConn), &fakeServer{t: t, session: mc.NewSession("fake", serverConn, testIoTimeout)}
}

func (fs *fakeServer) send(payload string) {
	msg, err := mc.ParseMessage([]byte(payload))
	if err != nil {
		fs.t.Error(err)
		return
	}
	if err := fs.session.WriteMessage(msg); err != nil {
		fs.t.Error(err)
	}
}

func (fs *fakeServer) expect(expected string) {
	msg, err := fs.session.ReadMessage(testIoTimeout)
	if err != nil {
		fs.t.Error(err)
		return
	}
	if msg.String() != expected {
		fs.t.Errorf("expected message: %s\tgot: %s", expected, msg)
	}
}

type recordingObserver struct {
	outcomes []mb.Outcome
	notes    []mb.Outcome
}

func (ro *recordingObserver) OnOutcome(c mb.Coordinates, outcome mb.Outcome, attackGrid *mb.Board) {
	ro.outcomes = append(ro.outcomes, outcome)
}

func (ro *recordingObserver) OnNote(c mb.Coordinates, outcome mb.Outcome, board *mb.Board) {
	ro.notes = append(ro.notes, outcome)
}

func fixedPicker(coords ...string) MovePicker {
	next := 0
	return PickerFunc(func(ctx context.Context, attackGrid *mb.Board) (mb.Coordinates, error) {
		if next >= len(coords) {
			return mb.Coordinates{}, errors.New("out of moves")
		}
		next++
		return mb.ParseCoordinates(coords[next-1])
	})
}

func TestJoinAndPlay(t *testing.T) {
	client, server := newPipeClient(t)
	board := PlaceFleetRandomly(newTestRng(1))

	done := make(chan struct{})
	go func() {
		defer close(done)
		server.expect(mc.NewJoinMessage(board).String())
		server.send("accept")

		server.send("turn")
		server.expect("move B2")
		server.send("outcome hit")

		// asked again, e.g. after a move the server refused
		server.send("turn")
		server.expect("move B3")
		server.send("outcome hit-sink 2")

		server.send("note J10")
		server.send("finish win")
	}()

	if err := client.Join(context.Background(), board); err != nil {
		t.Fatal(err)
	}

	observer := &recordingObserver{}
	result, err := client.Play(context.Background(), fixedPicker("B2", "B3"), observer)
	if err != nil {
		t.Fatal(err)
	}
	<-done

	expected := Result{Won: true, ShotsFired: 2, ShotsTaken: 1}
	if result != expected {
		t.Fatalf("expected result: %+v\tgot: %+v", expected, result)
	}
	if len(observer.outcomes) != 2 || observer.outcomes[1].Kind != mb.OutcomeHitAndSunk {
		t.Fatalf("expected a hit and a sink\tgot: %+v", observer.outcomes)
	}

	sunk := client.AttackGrid().Cell(mb.NewCoordinates(1, 2))
	if sunk.State != mb.CellHit || sunk.Marker != mb.MarkerDestroyer {
		t.Fatalf("expected sunk destroyer segment\tgot: %+v", sunk)
	}
	if !client.Board().IsGuessed(mb.NewCoordinates(9, 9)) {
		t.Fatal("expected opponent shot on own board")
	}
}

func TestPlayForfeit(t *testing.T) {
	client, server := newPipeClient(t)
	board := PlaceFleetRandomly(newTestRng(2))

	go func() {
		server.expect(mc.NewJoinMessage(board).String())
		server.send("accept")
		server.send("finish win forfeit")
	}()

	if err := client.Join(context.Background(), board); err != nil {
		t.Fatal(err)
	}
	result, err := client.Play(context.Background(), fixedPicker(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Won || !result.Forfeit {
		t.Fatalf("expected win by forfeit\tgot: %+v", result)
	}
}

func TestJoinRejected(t *testing.T) {
	client, server := newPipeClient(t)
	board := PlaceFleetRandomly(newTestRng(3))

	go func() {
		server.expect(mc.NewJoinMessage(board).String())
		server.session.Close()
	}()

	if err := client.Join(context.Background(), board); err == nil {
		t.Fatal("expected join to fail on a closed connection")
	}
}

func TestJoinIncompleteBoard(t *testing.T) {
	client, _ := newPipeClient(t)
	if err := client.Join(context.Background(), mb.NewBoard()); err == nil {
		t.Fatal("expected an empty board to be refused")
	}
}

func TestPlayCancelled(t *testing.T) {
	client, server := newPipeClient(t)
	board := PlaceFleetRandomly(newTestRng(4))

	go func() {
		server.expect(mc.NewJoinMessage(board).String())
		server.send("accept")
	}()
	if err := client.Join(context.Background(), board); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*100)
	defer cancel()
	if _, err := client.Play(ctx, fixedPicker(), nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected error: %v\tgot: %v", context.DeadlineExceeded, err)
	}
}

func TestPlaceFleetRandomly(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		board := PlaceFleetRandomly(newTestRng(seed))
		if !board.IsReady() {
			t.Fatalf("seed %d: board not ready\n%s", seed, board)
		}
		if _, err := mb.DeserializeBoard(board.Serialize()); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
	}
}

func TestRandomPickerNeverRepeats(t *testing.T) {
	picker := NewRandomPicker(newTestRng(5))
	attackGrid := mb.NewBoard()

	for i := 0; i < mb.GridCells; i++ {
		c, err := picker.PickMove(context.Background(), attackGrid)
		if err != nil {
			t.Fatal(err)
		}
		if err := attackGrid.RecordOutcome(c, mb.Outcome{Kind: mb.OutcomeMiss}); err != nil {
			t.Fatalf("picked %s twice", c)
		}
	}
	if _, err := picker.PickMove(context.Background(), attackGrid); err == nil {
		t.Fatal("expected a full grid to have no moves left")
	}
}

// Two random players against a real server: exactly one of them wins.
func TestGameAgainstServer(t *testing.T) {
	server := api.NewServer(api.WithHost("127.0.0.1"), api.WithPort(0))
	if err := server.Listen(); err != nil {
		t.Fatal(err)
	}
	go func() { _ = server.Serve(context.Background()) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testIoTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	type played struct {
		result Result
		err    error
	}
	results := make(chan played, 2)

	for seed := uint64(10); seed < 12; seed++ {
		client, err := Dial(ctx, server.Addr().String(), 0)
		if err != nil {
			t.Fatal(err)
		}
		defer client.Close()

		rng := newTestRng(seed)
		if err := client.Join(ctx, PlaceFleetRandomly(rng)); err != nil {
			t.Fatal(err)
		}
		go func() {
			result, err := client.Play(ctx, NewRandomPicker(rng), nil)
			results <- played{result, err}
		}()
	}

	first, second := <-results, <-results
	for _, p := range []played{first, second} {
		if p.err != nil {
			t.Fatal(p.err)
		}
		if p.result.Forfeit {
			t.Fatalf("expected a regular finish\tgot: %+v", p.result)
		}
	}
	if first.result.Won == second.result.Won {
		t.Fatalf("expected exactly one winner\tgot: %+v and %+v", first.result, second.result)
	}
	winner := first.result
	if second.result.Won {
		winner = second.result
	}
	if winner.ShotsFired < mb.FleetSize() {
		t.Fatalf("expected at least %d shots from the winner\tgot: %d", mb.FleetSize(), winner.ShotsFired)
	}
}

func TestDialTimeout(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := listener.Addr().String()
	listener.Close()

	if _, err := Dial(context.Background(), addr, time.Millisecond*500); err == nil {
		t.Fatal("expected dial to a closed port to fail")
	}
}
