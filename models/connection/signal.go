package connection

// MessageType is the leading token of every payload.
type MessageType string

const (
	// client -> server, argument: serialized board
	MessageTypeJoin MessageType = "join"
	// server -> client, the board was accepted
	MessageTypeAccept MessageType = "accept"
	// client -> server, argument: coordinates to fire at
	MessageTypeMove MessageType = "move"
	// server -> client, result of the last move
	MessageTypeOutcome MessageType = "outcome"
	// server -> client, the client may move now
	MessageTypeTurn MessageType = "turn"
	// server -> client, the opponent fired at the argument coordinates
	MessageTypeNote MessageType = "note"
	// server -> client, win or lose plus an optional reason
	MessageTypeFinish MessageType = "finish"
)

const (
	OutcomeArgMiss    = "miss"
	OutcomeArgHit     = "hit"
	OutcomeArgHitSink = "hit-sink"

	FinishArgWin  = "win"
	FinishArgLose = "lose"

	// Sent along with a win when the opponent disconnected, timed out
	// or sent an invalid message.
	FinishReasonForfeit = "forfeit"
)
