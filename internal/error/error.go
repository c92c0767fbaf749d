package error

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrInvalidPlacement  = errors.New("invalid placement")
	ErrAlreadyGuessed    = errors.New("coordinate already guessed")

	// Framing layer
	ErrMalformedLength  = errors.New("malformed frame length")
	ErrTruncatedPayload = errors.New("truncated frame payload")
	ErrPayloadTooLarge  = errors.New("frame payload too large")
	ErrConnectionClosed = errors.New("connection closed")

	ErrProtocolViolation = errors.New("protocol violation")
	ErrInvalidBoard      = errors.New("invalid board")
)

func ErrCoordinate(text string) error {
	return fmt.Errorf("%w: %q", ErrInvalidCoordinate, text)
}

func ErrCoordinateIndex(idx int) error {
	return fmt.Errorf("%w: index %d out of grid bound", ErrInvalidCoordinate, idx)
}

func ErrPlacement(front, back string, length int) error {
	return fmt.Errorf("%w: %s-%s for length %d", ErrInvalidPlacement, front, back, length)
}

func ErrPositionAlreadyGuessed(coord string) error {
	return fmt.Errorf("%w: %s", ErrAlreadyGuessed, coord)
}

func ErrLengthField(field []byte) error {
	return fmt.Errorf("%w: %q", ErrMalformedLength, field)
}

func ErrShortPayload(expected, got int) error {
	return fmt.Errorf("%w: expected %d bytes\tgot: %d", ErrTruncatedPayload, expected, got)
}

func ErrPayloadSize(size, max int) error {
	return fmt.Errorf("%w: %d bytes exceeds %d", ErrPayloadTooLarge, size, max)
}

func ErrUnexpectedMessage(expected, got string) error {
	return fmt.Errorf("%w: expected %q message\tgot: %q", ErrProtocolViolation, expected, got)
}

func ErrMalformedMessage(payload string) error {
	return fmt.Errorf("%w: malformed message %q", ErrProtocolViolation, payload)
}

func ErrTooManyInvalidMoves(attempts int) error {
	return fmt.Errorf("%w: %d invalid moves in a single turn", ErrProtocolViolation, attempts)
}

func ErrBoardLength(length int) error {
	return fmt.Errorf("%w: expected 100 cells\tgot: %d", ErrInvalidBoard, length)
}

func ErrBoardMarker(marker rune, idx int) error {
	return fmt.Errorf("%w: unknown marker %q at index %d", ErrInvalidBoard, marker, idx)
}

func ErrBoardShipSize(name string, expected, got int) error {
	return fmt.Errorf("%w: %s expected %d cells\tgot: %d", ErrInvalidBoard, name, expected, got)
}

func ErrBoardNotReady(occupied int) error {
	return fmt.Errorf("%w: fleet not fully placed, %d cells occupied", ErrInvalidBoard, occupied)
}

func ErrGameNotExists(gameUuid string) error {
	return fmt.Errorf("game with this uuid does not exist, uuid: %s", gameUuid)
}

func ErrGameIsNil(gameUuid string) error {
	return fmt.Errorf("game with this uuid is nil, uuid: %s", gameUuid)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id does not exist, id: %s", sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session with this id is nil, id: %s", sessionId)
}

func ErrNotTurnForAttacker(playerUuid string) error {
	return fmt.Errorf("%w: not the turn for attacker player, uuid: %s", ErrProtocolViolation, playerUuid)
}

func ErrGameFinished(gameUuid string) error {
	return fmt.Errorf("%w: game is already finished, uuid: %s", ErrProtocolViolation, gameUuid)
}
