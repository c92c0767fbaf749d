package battleship

import (
	"errors"
	"testing"

	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

func mustParse(t *testing.T, text string) Coordinates {
	t.Helper()
	c, err := ParseCoordinates(text)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestResolveShotScenario(t *testing.T) {
	board := newStandardBoard(t)
	shipLog := NewShipLog()

	tests := []struct {
		name              string
		target            string
		expectedKind      OutcomeKind
		expectedErr       error
		expectedDestroyer int
	}{
		{name: "hit destroyer front", target: "A1", expectedKind: OutcomeHit, expectedDestroyer: 1},
		{name: "sink destroyer", target: "A2", expectedKind: OutcomeHitAndSunk, expectedDestroyer: 0},
		{name: "fire at hit cell again", target: "A1", expectedErr: cerr.ErrAlreadyGuessed, expectedDestroyer: 0},
		{name: "miss", target: "A3", expectedKind: OutcomeMiss, expectedDestroyer: 0},
		{name: "fire at miss cell again", target: "a3", expectedErr: cerr.ErrAlreadyGuessed, expectedDestroyer: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			outcome, err := ResolveShot(board, shipLog, mustParse(t, test.target))
			if test.expectedErr != nil {
				if !errors.Is(err, test.expectedErr) {
					t.Fatalf("expected error: %v\tgot: %v", test.expectedErr, err)
				}
			} else {
				if err != nil {
					t.Fatal(err)
				}
				if outcome.Kind != test.expectedKind {
					t.Fatalf("expected outcome: %s\tgot: %s", test.expectedKind, outcome.Kind)
				}
			}

			if shipLog[MarkerDestroyer] != test.expectedDestroyer {
				t.Fatalf("expected destroyer segments: %d\tgot: %d", test.expectedDestroyer, shipLog[MarkerDestroyer])
			}
		})
	}
}

func TestResolveShotSinksOnLastSegmentOnly(t *testing.T) {
	for _, ship := range Fleet {
		t.Run(ship.Name, func(t *testing.T) {
			board := newStandardBoard(t)
			shipLog := NewShipLog()

			var segments []Coordinates
			for idx, cell := range board {
				if cell.State == CellOccupied && cell.Marker == ship.Marker {
					c, _ := CoordinatesFromIndex(idx)
					segments = append(segments, c)
				}
			}
			if len(segments) != ship.Length {
				t.Fatalf("expected segments: %d\tgot: %d", ship.Length, len(segments))
			}

			for i, c := range segments {
				outcome, err := ResolveShot(board, shipLog, c)
				if err != nil {
					t.Fatal(err)
				}

				if i < len(segments)-1 {
					if outcome.Kind != OutcomeHit {
						t.Fatalf("expected outcome: %s\tgot: %s", OutcomeHit, outcome.Kind)
					}
					continue
				}

				if outcome.Kind != OutcomeHitAndSunk {
					t.Fatalf("expected outcome: %s\tgot: %s", OutcomeHitAndSunk, outcome.Kind)
				}
				if outcome.Ship == nil || outcome.Ship.Id != ship.Id {
					t.Fatalf("expected sunk ship: %s\tgot: %+v", ship.Name, outcome.Ship)
				}
			}

			for _, other := range Fleet {
				expected := other.Length
				if other.Id == ship.Id {
					expected = 0
				}
				if shipLog[other.Marker] != expected {
					t.Fatalf("expected %s segments: %d\tgot: %d", other.Name, expected, shipLog[other.Marker])
				}
			}
		})
	}
}

func TestResolveShotRefireDoesNotMutate(t *testing.T) {
	board := newStandardBoard(t)
	shipLog := NewShipLog()

	targets := []string{"A1", "J10", "E5", "F1"}
	for _, target := range targets {
		if _, err := ResolveShot(board, shipLog, mustParse(t, target)); err != nil {
			t.Fatal(err)
		}
	}

	boardBefore := *board
	remainingBefore := shipLog.Remaining()

	for _, target := range targets {
		if _, err := ResolveShot(board, shipLog, mustParse(t, target)); !errors.Is(err, cerr.ErrAlreadyGuessed) {
			t.Fatalf("expected error: %v\tgot: %v", cerr.ErrAlreadyGuessed, err)
		}
	}

	if *board != boardBefore {
		t.Fatal("board changed after firing at resolved cells")
	}
	if shipLog.Remaining() != remainingBefore {
		t.Fatalf("expected remaining: %d\tgot: %d", remainingBefore, shipLog.Remaining())
	}
}

func TestIsDefeated(t *testing.T) {
	board := newStandardBoard(t)
	shipLog := NewShipLog()

	hits := 0
	for idx := range board {
		if board[idx].State != CellOccupied {
			continue
		}
		if IsDefeated(shipLog) {
			t.Fatalf("expected not defeated after %d hits", hits)
		}

		c, _ := CoordinatesFromIndex(idx)
		if _, err := ResolveShot(board, shipLog, c); err != nil {
			t.Fatal(err)
		}
		hits++
	}

	if hits != FleetSize() {
		t.Fatalf("expected hits: %d\tgot: %d", FleetSize(), hits)
	}
	if !IsDefeated(shipLog) {
		t.Fatal("expected defeated after hitting every segment")
	}
	if board.CountState(CellHit) != FleetSize() || board.CountState(CellOccupied) != 0 {
		t.Fatalf("expected all %d segments hit\tgot: %d hit, %d occupied", FleetSize(), board.CountState(CellHit), board.CountState(CellOccupied))
	}
}

func TestRecordOutcome(t *testing.T) {
	attackGrid := NewBoard()
	c := mustParse(t, "B2")

	if err := attackGrid.RecordOutcome(c, Outcome{Kind: OutcomeHit}); err != nil {
		t.Fatal(err)
	}
	if !attackGrid.IsGuessed(c) {
		t.Fatal("expected B2 to be guessed")
	}
	if err := attackGrid.RecordOutcome(c, Outcome{Kind: OutcomeMiss}); !errors.Is(err, cerr.ErrAlreadyGuessed) {
		t.Fatalf("expected error: %v\tgot: %v", cerr.ErrAlreadyGuessed, err)
	}

	sunk := Fleet[ShipIdCruiser]
	c3 := mustParse(t, "B3")
	if err := attackGrid.RecordOutcome(c3, Outcome{Kind: OutcomeHitAndSunk, Ship: &sunk}); err != nil {
		t.Fatal(err)
	}
	if attackGrid.Cell(c3).Marker != MarkerCruiser {
		t.Fatalf("expected marker: %q\tgot: %q", MarkerCruiser, attackGrid.Cell(c3).Marker)
	}
}
