package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	PointsBalance   int64      `json:"points_balance"`
	ProfileImageURL *string    `json:"profile_image_url,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	IsActive        bool       `json:"is_active"`
}

type AuthResult struct {
	Message string   `json:"message"`
	User    User     `json:"user"`
	Session *Session `json:"session"`
}

type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	TeamA        string    `json:"team_a"`
	TeamB        string    `json:"team_b"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
	IsFeatured   bool      `json:"is_featured"`
	CurrentOddsA float64   `json:"current_odds_a"`
	CurrentOddsB float64   `json:"current_odds_b"`
	Winner       *string   `json:"winner"`
}

type Odds struct {
	EventID    string  `json:"event_id"`
	OddsA      float64 `json:"current_odds_a"`
	OddsB      float64 `json:"current_odds_b"`
	TotalBetsA int64   `json:"total_bets_a"`
	TotalBetsB int64   `json:"total_bets_b"`
	Cached     bool    `json:"cached"`
}

type Bet struct {
	ID              string  `json:"id"`
	EventID         string  `json:"event_id"`
	Team            string  `json:"team"`
	Amount          int64   `json:"amount"`
	OddsAtPlacement float64 `json:"odds_at_placement"`
	PotentialPayout int64   `json:"potential_payout"`
	Status          string  `json:"status"`
}

type LeaderboardEntry struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	PointsBalance int64  `json:"points_balance"`
}

type ProfileUpdate struct {
	Username        *string `json:"username,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// ---------- auth ----------

func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.Do(ctx, http.MethodGet, "/users/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, p ProfileUpdate) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.Do(ctx, http.MethodPut, "/users/profile", token, p, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ---------- events ----------

func (c *Client) Events(ctx context.Context, status string) ([]Event, error) {
	path := "/events"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out struct {
		Events []Event `json:"events"`
	}
	if err := c.Do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (c *Client) Event(ctx context.Context, id string) (*Event, error) {
	var out struct {
		Event Event `json:"event"`
	}
	if err := c.Do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out.Event, nil
}

func (c *Client) EventOdds(ctx context.Context, id string) (*Odds, error) {
	var out Odds
	if err := c.Do(ctx, http.MethodGet, "/events/"+url.PathEscape(id)+"/odds", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------- bets / users ----------

func (c *Client) PlaceBet(ctx context.Context, token, eventID, team string, amount int64) (*Bet, int64, error) {
	var out struct {
		Bet           Bet   `json:"bet"`
		PointsBalance int64 `json:"points_balance"`
	}
	body := map[string]any{"event_id": eventID, "team": team, "amount": amount}
	if err := c.Do(ctx, http.MethodPost, "/bets", token, body, &out); err != nil {
		return nil, 0, err
	}
	return &out.Bet, out.PointsBalance, nil
}

func (c *Client) UserBets(ctx context.Context, token string) ([]Bet, error) {
	var out struct {
		Bets []Bet `json:"bets"`
	}
	if err := c.Do(ctx, http.MethodGet, "/bets/user", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Bets, nil
}

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	path := "/users/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Leaderboard []LeaderboardEntry `json:"leaderboard"`
	}
	if err := c.Do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out.Leaderboard, nil
}
