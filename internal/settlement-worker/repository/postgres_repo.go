package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo chama as stored procedures de liquidação
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// SettleBets marca apostas como won/lost/voided e credita os prêmios.
// A procedure é idempotente: apostas já liquidadas são ignoradas.
func (r *PostgresRepo) SettleBets(ctx context.Context, eventID, winner string) error {
	if _, err := r.DB.ExecContext(ctx, `SELECT settle_bets($1, $2)`, eventID, winner); err != nil {
		return fmt.Errorf("settle_bets: %w", err)
	}
	return nil
}

func (r *PostgresRepo) RefreshLeaderboard(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, `SELECT refresh_leaderboard()`); err != nil {
		return fmt.Errorf("refresh_leaderboard: %w", err)
	}
	return nil
}
