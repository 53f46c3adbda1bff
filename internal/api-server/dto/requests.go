package dto

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest: ponteiros distinguem campo ausente de string vazia
type UpdateProfileRequest struct {
	Username        *string `json:"username"`
	ProfileImageURL *string `json:"profile_image_url"`
}

type PlaceBetRequest struct {
	EventID string `json:"event_id"`
	Team    string `json:"team"` // "a" | "b"
	Amount  int64  `json:"amount"`
}

type CreateEventRequest struct {
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	Category     *string   `json:"category,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	TeamA        string    `json:"team_a"`
	TeamB        string    `json:"team_b"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	IsFeatured   bool      `json:"is_featured"`
	InitialOddsA float64   `json:"initial_odds_a"`
	InitialOddsB float64   `json:"initial_odds_b"`
}

type SettleEventRequest struct {
	Winner     string `json:"winner"` // "a" | "b" | "draw"
	TeamAScore *int   `json:"team_a_score,omitempty"`
	TeamBScore *int   `json:"team_b_score,omitempty"`
}
