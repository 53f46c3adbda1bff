package topics

const (
	// Bets
	BetPlaced = "bet_placed"

	// Events
	EventSettled = "event_settled"

	// DLQs
	EventSettledDLQ = "event_settled_dlq"
)
