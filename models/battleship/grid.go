package battleship

import (
	"strconv"

	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

const (
	GridSize  = 10
	GridCells = GridSize * GridSize

	rowLetters = "ABCDEFGHIJ"
)

// Coordinates is a (row, col) pair on the grid, both in [0, GridSize).
type Coordinates struct {
	Row uint8 `json:"row"`
	Col uint8 `json:"col"`
}

func NewCoordinates(row, col uint8) Coordinates {
	return Coordinates{Row: row, Col: col}
}

// ParseCoordinates converts a grid reference such as "b7" or "J10"
// into Coordinates. The letter selects the row and the number (1-10)
// selects the column.
func ParseCoordinates(text string) (Coordinates, error) {
	if len(text) != 2 && len(text) != 3 {
		return Coordinates{}, cerr.ErrCoordinate(text)
	}

	letter := text[0]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	if letter < 'A' || letter > 'J' {
		return Coordinates{}, cerr.ErrCoordinate(text)
	}

	// Atoi would accept a sign, which is not part of the grammar
	for i := 1; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return Coordinates{}, cerr.ErrCoordinate(text)
		}
	}
	col, err := strconv.Atoi(text[1:])
	if err != nil || col < 1 || col > GridSize {
		return Coordinates{}, cerr.ErrCoordinate(text)
	}

	return NewCoordinates(letter-'A', uint8(col-1)), nil
}

func CoordinatesFromIndex(idx int) (Coordinates, error) {
	if idx < 0 || idx >= GridCells {
		return Coordinates{}, cerr.ErrCoordinateIndex(idx)
	}
	return NewCoordinates(uint8(idx/GridSize), uint8(idx%GridSize)), nil
}

func (c Coordinates) Index() int {
	return int(c.Row)*GridSize + int(c.Col)
}

func (c Coordinates) IsInBound() bool {
	return c.Row < GridSize && c.Col < GridSize
}

// String returns the canonical upper-case form, e.g. "A10".
func (c Coordinates) String() string {
	return string(rowLetters[c.Row]) + strconv.Itoa(int(c.Col)+1)
}
