package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/radieske/points-bet-platform/internal/api-server/dto"
)

// Postgres grava apostas direto no banco do BaaS: o débito de pontos e a
// aposta precisam da mesma transação, o que o PostgREST não oferece.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrEventClosed        = errors.New("event is not open for betting")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidTeam        = errors.New("invalid team")
)

// PlaceBetParams: AuthID é o id do usuário no GoTrue (users.auth_id)
type PlaceBetParams struct {
	AuthID  string
	EventID string
	Team    string
	Amount  int64
}

type PlaceBetResult struct {
	Bet           dto.Bet
	PointsBalance int64
}

// PlaceBet trava usuário e evento (FOR UPDATE), valida status e saldo,
// grava aposta + transação e debita os pontos numa única transação
func (p *Postgres) PlaceBet(ctx context.Context, in PlaceBetParams) (*PlaceBetResult, error) {
	if in.Team != "a" && in.Team != "b" {
		return nil, ErrInvalidTeam
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var userID string
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, points_balance FROM users WHERE auth_id=$1 AND is_active FOR UPDATE`, in.AuthID).
		Scan(&userID, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}

	var status string
	var oddsA, oddsB float64
	err = tx.QueryRowContext(ctx,
		`SELECT status, current_odds_a, current_odds_b FROM events WHERE id=$1 FOR UPDATE`, in.EventID).
		Scan(&status, &oddsA, &oddsB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock event: %w", err)
	}

	if status != dto.EventUpcoming && status != dto.EventLive {
		return nil, ErrEventClosed
	}
	if balance < in.Amount {
		return nil, ErrInsufficientPoints
	}

	odds := oddsA
	bumpTotals := `UPDATE events SET total_bets_a = total_bets_a + $1, updated_at = NOW() WHERE id=$2`
	if in.Team == "b" {
		odds = oddsB
		bumpTotals = `UPDATE events SET total_bets_b = total_bets_b + $1, updated_at = NOW() WHERE id=$2`
	}

	bet := dto.Bet{
		ID:              uuid.NewString(),
		UserID:          userID,
		EventID:         in.EventID,
		Team:            in.Team,
		Amount:          in.Amount,
		OddsAtPlacement: odds,
		PotentialPayout: PotentialPayout(in.Amount, odds),
		Status:          dto.BetPending,
	}

	if err = tx.QueryRowContext(ctx, `
		INSERT INTO bets (id, user_id, event_id, team, amount, odds_at_placement, potential_payout, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'pending')
		RETURNING created_at, updated_at`,
		bet.ID, bet.UserID, bet.EventID, bet.Team, bet.Amount, bet.OddsAtPlacement, bet.PotentialPayout,
	).Scan(&bet.CreatedAt, &bet.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert bet: %w", err)
	}

	// ledger: débito registrado com valor negativo
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, type, reference_id, description)
		VALUES ($1,$2,$3,'bet_placed',$4,$5)`,
		uuid.NewString(), userID, -in.Amount, bet.ID, "bet:"+in.EventID+":"+in.Team); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	var newBalance int64
	if err = tx.QueryRowContext(ctx,
		`UPDATE users SET points_balance = points_balance - $1, updated_at = NOW() WHERE id=$2 RETURNING points_balance`,
		in.Amount, userID).Scan(&newBalance); err != nil {
		return nil, fmt.Errorf("debit user: %w", err)
	}

	if _, err = tx.ExecContext(ctx, bumpTotals, in.Amount, in.EventID); err != nil {
		return nil, fmt.Errorf("bump event totals: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &PlaceBetResult{Bet: bet, PointsBalance: newBalance}, nil
}

// PotentialPayout = floor(amount * odds). O produto é arredondado em 6 casas
// antes do floor para que 100 * 2.3 (229.99999999999997) resulte em 230.
func PotentialPayout(amount int64, odds float64) int64 {
	v := math.Round(float64(amount)*odds*1e6) / 1e6
	return int64(math.Floor(v))
}

// Ping é usado pelo /healthz
func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }
