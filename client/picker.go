package client

import (
	"context"
	"errors"
	"math/rand/v2"

	mb "github.com/saeidalz13/battleship-tcp/models/battleship"
)

// RandomPicker fires at a random cell that was not fired at before.
type RandomPicker struct {
	rng *rand.Rand
}

var _ MovePicker = (*RandomPicker)(nil)

func NewRandomPicker(rng *rand.Rand) *RandomPicker {
	return &RandomPicker{rng: rng}
}

func (rp *RandomPicker) PickMove(ctx context.Context, attackGrid *mb.Board) (mb.Coordinates, error) {
	open := make([]mb.Coordinates, 0, mb.GridCells)
	for idx := 0; idx < mb.GridCells; idx++ {
		c, _ := mb.CoordinatesFromIndex(idx)
		if !attackGrid.IsGuessed(c) {
			open = append(open, c)
		}
	}
	if len(open) == 0 {
		return mb.Coordinates{}, errors.New("every cell was already fired at")
	}
	return open[rp.rng.IntN(len(open))], nil
}

// PickerFunc adapts a function to MovePicker.
type PickerFunc func(ctx context.Context, attackGrid *mb.Board) (mb.Coordinates, error)

func (f PickerFunc) PickMove(ctx context.Context, attackGrid *mb.Board) (mb.Coordinates, error) {
	return f(ctx, attackGrid)
}

// PlaceFleetRandomly places every ship of the fleet on a fresh board.
func PlaceFleetRandomly(rng *rand.Rand) *mb.Board {
	board := mb.NewBoard()
	for _, ship := range mb.Fleet {
		for {
			row, col := uint8(rng.IntN(mb.GridSize)), uint8(rng.IntN(mb.GridSize))
			backRow, backCol := row, col
			if rng.IntN(2) == 0 {
				backCol += uint8(ship.Length - 1)
			} else {
				backRow += uint8(ship.Length - 1)
			}

			front := mb.NewCoordinates(row, col)
			back := mb.NewCoordinates(backRow, backCol)
			if !back.IsInBound() {
				continue
			}
			if mb.ValidatePlacement(board, front.String(), back.String(), ship.Length) {
				// validated right above
				_ = mb.PlaceShip(board, front.String(), back.String(), ship)
				break
			}
		}
	}
	return board
}
