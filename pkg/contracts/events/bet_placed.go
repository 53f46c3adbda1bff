package events

// Evento publicado pelo api-server após uma aposta ser gravada.
// Consumido pelo odds-worker para recalcular as odds do evento.
type BetPlaced struct {
	BetID           string  `json:"bet_id"`
	UserID          string  `json:"user_id"`
	EventID         string  `json:"event_id"`
	Team            string  `json:"team"` // "a" | "b"
	Amount          int64   `json:"amount"`
	OddsAtPlacement float64 `json:"odds_at_placement"`
	TsUnixMs        int64   `json:"ts_unix_ms"`
}
