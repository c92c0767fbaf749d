package battleship

import (
	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

type OutcomeKind uint8

const (
	OutcomeMiss OutcomeKind = iota
	OutcomeHit
	OutcomeHitAndSunk
)

func (ok OutcomeKind) String() string {
	switch ok {
	case OutcomeMiss:
		return "miss"
	case OutcomeHit:
		return "hit"
	case OutcomeHitAndSunk:
		return "hit-sink"
	}
	return "unknown"
}

// Outcome is the result of one shot. Ship is only set for
// OutcomeHitAndSunk.
type Outcome struct {
	Kind OutcomeKind
	Ship *Ship
}

// ResolveShot fires at c on the defender's board. Cells that were
// already fired at return ErrAlreadyGuessed and nothing changes.
func ResolveShot(board *Board, shipLog ShipLog, c Coordinates) (Outcome, error) {
	if !c.IsInBound() {
		return Outcome{}, cerr.ErrCoordinateIndex(c.Index())
	}

	idx := c.Index()
	cell := board[idx]

	switch cell.State {
	case CellEmpty:
		board[idx].State = CellMiss
		return Outcome{Kind: OutcomeMiss}, nil

	case CellOccupied:
		board[idx].State = CellHit
		if shipLog[cell.Marker] > 0 {
			shipLog[cell.Marker]--
		}
		if shipLog.IsSunk(cell.Marker) {
			ship, _ := ShipByMarker(cell.Marker)
			return Outcome{Kind: OutcomeHitAndSunk, Ship: &ship}, nil
		}
		return Outcome{Kind: OutcomeHit}, nil

	default:
		return Outcome{}, cerr.ErrPositionAlreadyGuessed(c.String())
	}
}

func IsDefeated(shipLog ShipLog) bool {
	for _, count := range shipLog {
		if count != 0 {
			return false
		}
	}
	return true
}

// RecordOutcome marks a shot on a board that tracks the opponent.
// The marker is only known once the ship has been sunk.
func (b *Board) RecordOutcome(c Coordinates, outcome Outcome) error {
	idx := c.Index()
	if b[idx].State == CellHit || b[idx].State == CellMiss {
		return cerr.ErrPositionAlreadyGuessed(c.String())
	}

	switch outcome.Kind {
	case OutcomeMiss:
		b[idx] = Cell{State: CellMiss}
	case OutcomeHit:
		b[idx] = Cell{State: CellHit}
	case OutcomeHitAndSunk:
		b[idx] = Cell{State: CellHit, Marker: outcome.Ship.Marker}
	}
	return nil
}

// IsGuessed reports whether c was already fired at on this board.
func (b *Board) IsGuessed(c Coordinates) bool {
	state := b[c.Index()].State
	return state == CellHit || state == CellMiss
}
