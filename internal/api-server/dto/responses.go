package dto

import (
	"time"

	"github.com/radieske/points-bet-platform/internal/supabase"
)

// UserSummary é o usuário devolvido no cadastro
type UserSummary struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	PointsBalance int64  `json:"points_balance"`
}

type RegisterResponse struct {
	Message string            `json:"message"`
	User    UserSummary       `json:"user"`
	Session *supabase.Session `json:"session"`
}

type LoginUser struct {
	ID              string  `json:"id"`
	Email           string  `json:"email"`
	Username        string  `json:"username"`
	PointsBalance   int64   `json:"points_balance"`
	ProfileImageURL *string `json:"profile_image_url"`
	IsActive        bool    `json:"is_active"`
}

type LoginResponse struct {
	Message string            `json:"message"`
	User    LoginUser         `json:"user"`
	Session *supabase.Session `json:"session"`
}

type ProfileUser struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	PointsBalance   int64      `json:"points_balance"`
	ProfileImageURL *string    `json:"profile_image_url"`
	LastLoginAt     *time.Time `json:"last_login_at"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ProfileResponse struct {
	User ProfileUser `json:"user"`
}

type UpdatedUser struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	PointsBalance   int64     `json:"points_balance"`
	ProfileImageURL *string   `json:"profile_image_url"`
	IsActive        bool      `json:"is_active"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type UpdateProfileResponse struct {
	Message string      `json:"message"`
	User    UpdatedUser `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PlaceBetResponse struct {
	Bet           Bet   `json:"bet"`
	PointsBalance int64 `json:"points_balance"`
}

type OddsResponse struct {
	EventID    string    `json:"event_id"`
	OddsA      float64   `json:"current_odds_a"`
	OddsB      float64   `json:"current_odds_b"`
	TotalBetsA int64     `json:"total_bets_a"`
	TotalBetsB int64     `json:"total_bets_b"`
	Cached     bool      `json:"cached"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type SettleAcceptedResponse struct {
	Message string `json:"message"`
	EventID string `json:"event_id"`
	Winner  string `json:"winner"`
}
