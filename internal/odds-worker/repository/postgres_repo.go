package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/radieske/points-bet-platform/pkg/contracts/events"
)

var ErrEventNotFound = errors.New("event not found")

// PostgresRepo recalcula odds via stored procedure e lê o resultado
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// Recalculate executa calculate_odds e devolve o snapshot atualizado do evento
func (r *PostgresRepo) Recalculate(ctx context.Context, eventID string) (events.OddsSnapshot, error) {
	if _, err := r.DB.ExecContext(ctx, `SELECT calculate_odds($1)`, eventID); err != nil {
		return events.OddsSnapshot{}, fmt.Errorf("calculate_odds: %w", err)
	}

	const q = `
		SELECT current_odds_a, current_odds_b, total_bets_a, total_bets_b, status, updated_at
		FROM events
		WHERE id = $1
	`
	s := events.OddsSnapshot{EventID: eventID}
	err := r.DB.QueryRowContext(ctx, q, eventID).
		Scan(&s.OddsA, &s.OddsB, &s.TotalBetsA, &s.TotalBetsB, &s.Status, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return events.OddsSnapshot{}, ErrEventNotFound
	}
	if err != nil {
		return events.OddsSnapshot{}, fmt.Errorf("read odds: %w", err)
	}
	return s, nil
}
