package events

import "time"

// Evento publicado quando um admin encerra um evento esportivo com vencedor.
// O settlement-worker liquida as apostas e atualiza o leaderboard.
type EventSettled struct {
	EventID    string    `json:"event_id"`
	Winner     string    `json:"winner"` // "a" | "b" | "draw"
	TeamAScore *int      `json:"team_a_score,omitempty"`
	TeamBScore *int      `json:"team_b_score,omitempty"`
	SettledBy  string    `json:"settled_by"`
	Ts         time.Time `json:"ts"`
}
