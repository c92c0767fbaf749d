package battleship

import (
	"fmt"
	"strings"
	"unicode/utf8"

	cerr "github.com/saeidalz13/battleship-tcp/internal/error"
)

type CellState uint8

const (
	CellEmpty CellState = iota
	CellOccupied
	CellHit
	CellMiss
)

func (cs CellState) String() string {
	switch cs {
	case CellEmpty:
		return "empty"
	case CellOccupied:
		return "occupied"
	case CellHit:
		return "hit"
	case CellMiss:
		return "miss"
	}
	return fmt.Sprintf("CellState(%d)", uint8(cs))
}

// Cell keeps the marker of the ship it belongs to, so a hit cell
// still knows which ship was hit.
type Cell struct {
	State  CellState
	Marker rune
}

type Board [GridCells]Cell

func NewBoard() *Board {
	return &Board{}
}

func (b *Board) Cell(c Coordinates) Cell {
	return b[c.Index()]
}

func (b *Board) CountState(state CellState) int {
	n := 0
	for _, cell := range b {
		if cell.State == state {
			n++
		}
	}
	return n
}

// IsReady reports whether every ship of the fleet is on the board
// with exactly its length in cells.
func (b *Board) IsReady() bool {
	counts := b.markerCounts()
	for _, ship := range Fleet {
		if counts[ship.Marker] != ship.Length {
			return false
		}
	}
	return len(counts) == len(Fleet)
}

func (b *Board) markerCounts() map[rune]int {
	counts := make(map[rune]int, len(Fleet))
	for _, cell := range b {
		if cell.State == CellOccupied || cell.State == CellHit {
			counts[cell.Marker]++
		}
	}
	return counts
}

// Serialize returns one rune per cell in row-major order: '0' for
// water and the ship marker for ship segments. Fired cells are not
// part of the wire format; a hit segment serializes as its ship.
func (b *Board) Serialize() string {
	var sb strings.Builder
	sb.Grow(GridCells + 1)
	for _, cell := range b {
		switch cell.State {
		case CellOccupied, CellHit:
			sb.WriteRune(cell.Marker)
		default:
			sb.WriteRune(MarkerEmpty)
		}
	}
	return sb.String()
}

// DeserializeBoard parses the wire form produced by Serialize. Only
// structure is checked: every cell is water or a fleet marker and each
// ship has exactly its length in cells.
func DeserializeBoard(s string) (*Board, error) {
	if !utf8.ValidString(s) {
		return nil, cerr.ErrBoardLength(len(s))
	}
	if n := utf8.RuneCountInString(s); n != GridCells {
		return nil, cerr.ErrBoardLength(n)
	}

	board := NewBoard()
	idx := 0
	for _, r := range s {
		if r != MarkerEmpty {
			if _, ok := ShipByMarker(r); !ok {
				return nil, cerr.ErrBoardMarker(r, idx)
			}
			board[idx] = Cell{State: CellOccupied, Marker: r}
		}
		idx++
	}

	counts := board.markerCounts()
	for _, ship := range Fleet {
		if counts[ship.Marker] != ship.Length {
			return nil, cerr.ErrBoardShipSize(ship.Name, ship.Length, counts[ship.Marker])
		}
	}
	return board, nil
}

// String renders the board as a grid with row letters and column
// numbers. Hits show as X and misses as *.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("  ")
	for col := 1; col <= GridSize; col++ {
		fmt.Fprintf(&sb, " %2d", col)
	}
	sb.WriteByte('\n')

	for row := 0; row < GridSize; row++ {
		sb.WriteByte(rowLetters[row])
		sb.WriteByte(' ')
		for col := 0; col < GridSize; col++ {
			cell := b[row*GridSize+col]
			var r rune
			switch cell.State {
			case CellOccupied:
				r = cell.Marker
			case CellHit:
				r = 'X'
			case CellMiss:
				r = '*'
			default:
				r = '~'
			}
			fmt.Fprintf(&sb, "  %c", r)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
