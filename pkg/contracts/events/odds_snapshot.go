package events

import "time"

// OddsSnapshot é o valor guardado em cache para as odds correntes de um evento.
// Escrito pelo odds-worker depois de calculate_odds e lido pelo api-server.
type OddsSnapshot struct {
	EventID    string    `json:"event_id"`
	OddsA      float64   `json:"current_odds_a"`
	OddsB      float64   `json:"current_odds_b"`
	TotalBetsA int64     `json:"total_bets_a"`
	TotalBetsB int64     `json:"total_bets_b"`
	Status     string    `json:"status,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
