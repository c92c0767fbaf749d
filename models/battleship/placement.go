package battleship

import (
	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

// span returns the cells a ship from front to back would cover, in
// ascending order. The endpoints must share a row or a column and the
// span must be exactly length cells long.
func span(front, back string, length int) ([]Coordinates, bool) {
	start, err := ParseCoordinates(front)
	if err != nil {
		return nil, false
	}
	end, err := ParseCoordinates(back)
	if err != nil {
		return nil, false
	}
	if length < 1 {
		return nil, false
	}

	if start.Index() > end.Index() {
		start, end = end, start
	}

	var step Coordinates
	switch {
	case start == end:
		if length != 1 {
			return nil, false
		}
	case start.Row == end.Row:
		step = NewCoordinates(0, 1)
		if int(end.Col-start.Col)+1 != length {
			return nil, false
		}
	case start.Col == end.Col:
		step = NewCoordinates(1, 0)
		if int(end.Row-start.Row)+1 != length {
			return nil, false
		}
	default:
		return nil, false
	}

	cells := make([]Coordinates, 0, length)
	for i := 0; i < length; i++ {
		c := NewCoordinates(start.Row+uint8(i)*step.Row, start.Col+uint8(i)*step.Col)
		if !c.IsInBound() {
			return nil, false
		}
		cells = append(cells, c)
	}
	return cells, true
}

// ValidatePlacement reports whether a ship of the given length can be
// placed between front and back. Endpoint order does not matter.
func ValidatePlacement(board *Board, front, back string, length int) bool {
	cells, ok := span(front, back, length)
	if !ok {
		return false
	}

	for _, c := range cells {
		if board.Cell(c).State != CellEmpty {
			return false
		}
	}
	return true
}

// PlaceShip puts the ship between front and back. It must only be
// called after ValidatePlacement succeeded; the board is left untouched
// and ErrInvalidPlacement is returned otherwise.
func PlaceShip(board *Board, front, back string, ship Ship) error {
	if !ValidatePlacement(board, front, back, ship.Length) {
		return cerr.ErrPlacement(front, back, ship.Length)
	}

	cells, _ := span(front, back, ship.Length)
	for _, c := range cells {
		board[c.Index()] = Cell{State: CellOccupied, Marker: ship.Marker}
	}
	return nil
}
