package dto

import "time"

// Linhas espelhadas do schema do BaaS (tabelas public.*)

type User struct {
	ID              string     `json:"id"`
	AuthID          string     `json:"auth_id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	PointsBalance   int64      `json:"points_balance"`
	ProfileImageURL *string    `json:"profile_image_url"`
	LastLoginAt     *time.Time `json:"last_login_at"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const (
	EventUpcoming  = "upcoming"
	EventLive      = "live"
	EventCompleted = "completed"
	EventCanceled  = "canceled"
)

type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	Category     *string   `json:"category"`
	ImageURL     *string   `json:"image_url"`
	TeamA        string    `json:"team_a"`
	TeamB        string    `json:"team_b"`
	TeamAScore   *int      `json:"team_a_score"`
	TeamBScore   *int      `json:"team_b_score"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	IsFeatured   bool      `json:"is_featured"`
	Status       string    `json:"status"`
	InitialOddsA float64   `json:"initial_odds_a"`
	InitialOddsB float64   `json:"initial_odds_b"`
	CurrentOddsA float64   `json:"current_odds_a"`
	CurrentOddsB float64   `json:"current_odds_b"`
	TotalBetsA   int64     `json:"total_bets_a"`
	TotalBetsB   int64     `json:"total_bets_b"`
	Winner       *string   `json:"winner"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OpenForBetting: só upcoming e live aceitam apostas
func (e Event) OpenForBetting() bool {
	return e.Status == EventUpcoming || e.Status == EventLive
}

const (
	BetPending = "pending"
	BetWon     = "won"
	BetLost    = "lost"
	BetVoided  = "voided"
)

type Bet struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	EventID         string     `json:"event_id"`
	Team            string     `json:"team"`
	Amount          int64      `json:"amount"`
	OddsAtPlacement float64    `json:"odds_at_placement"`
	PotentialPayout int64      `json:"potential_payout"`
	Status          string     `json:"status"`
	SettledAt       *time.Time `json:"settled_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const TxBetPlaced = "bet_placed"

type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"type"`
	ReferenceID *string   `json:"reference_id"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// LeaderboardEntry vem da view user_leaderboard
type LeaderboardEntry struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	PointsBalance   int64   `json:"points_balance"`
	ProfileImageURL *string `json:"profile_image_url"`
	TotalBets       int64   `json:"total_bets"`
	TotalWins       int64   `json:"total_wins"`
	TotalLosses     int64   `json:"total_losses"`
	WinPercentage   float64 `json:"win_percentage"`
	TotalPointsWon  int64   `json:"total_points_won"`
	BettingSkill    float64 `json:"betting_skill"`
}
