// Package store lê e grava as tabelas do BaaS via PostgREST/RPC.
// Funções Get* retornam (nil, nil) quando a linha não existe.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/radieske/points-bet-platform/internal/api-server/dto"
	"github.com/radieske/points-bet-platform/internal/supabase"
)

// adminPageSize é o maior per_page aceito pelo GoTrue
const adminPageSize = 1000

type Store struct {
	sb *supabase.Client
}

func New(sb *supabase.Client) *Store { return &Store{sb: sb} }

// ---------- users ----------

// UsernameTaken ignora o próprio usuário quando excludeAuthID != ""
func (s *Store) UsernameTaken(ctx context.Context, username, excludeAuthID string) (bool, error) {
	q := s.sb.From("users").Select("username").Eq("username", username).Limit(1)
	if excludeAuthID != "" {
		q = q.Neq("auth_id", excludeAuthID)
	}
	var rows []struct{}
	if err := q.Execute(ctx, &rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// EmailRegistered percorre os usuários do GoTrue comparando sem caixa
func (s *Store) EmailRegistered(ctx context.Context, email string) (bool, error) {
	for page := 1; ; page++ {
		users, err := s.sb.Auth.Admin.ListUsers(ctx, page, adminPageSize)
		if err != nil {
			return false, err
		}
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				return true, nil
			}
		}
		if len(users) < adminPageSize {
			return false, nil
		}
	}
}

// CreateUserRecord chama insert_user, que grava public.users ignorando RLS
func (s *Store) CreateUserRecord(ctx context.Context, authID, email, username string, points int64) (*dto.User, error) {
	var raw json.RawMessage
	err := s.sb.RPC(ctx, "insert_user", map[string]any{
		"p_auth_id":        authID,
		"p_email":          email,
		"p_username":       username,
		"p_points_balance": points,
		"p_is_active":      true,
	}, &raw)
	if err != nil {
		return nil, err
	}
	u, err := decodeUserRecord(raw)
	if err != nil {
		return nil, err
	}
	// a função pode devolver só o id; completa com o que foi enviado
	if u.Email == "" {
		u.Email = email
		u.Username = username
		u.PointsBalance = points
		u.IsActive = true
	}
	u.AuthID = authID
	return u, nil
}

// decodeUserRecord aceita objeto, lista com um objeto ou o id como string
func decodeUserRecord(raw json.RawMessage) (*dto.User, error) {
	raw = bytes.TrimSpace(raw)
	u := &dto.User{}
	if len(raw) == 0 || string(raw) == "null" {
		return u, nil
	}
	switch raw[0] {
	case '[':
		var list []dto.User
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode insert_user: %w", err)
		}
		if len(list) > 0 {
			*u = list[0]
		}
	case '{':
		if err := json.Unmarshal(raw, u); err != nil {
			return nil, fmt.Errorf("decode insert_user: %w", err)
		}
	case '"':
		if err := json.Unmarshal(raw, &u.ID); err != nil {
			return nil, fmt.Errorf("decode insert_user: %w", err)
		}
	}
	return u, nil
}

func (s *Store) GetUserByAuthID(ctx context.Context, authID string) (*dto.User, error) {
	var u dto.User
	err := s.sb.From("users").Select("*").Eq("auth_id", authID).Single().Execute(ctx, &u)
	if supabase.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, authID string, at time.Time) error {
	return s.sb.From("users").Eq("auth_id", authID).
		Update(ctx, map[string]any{"last_login_at": at.UTC().Format(time.RFC3339Nano)}, nil)
}

// ProfilePatch: campos nil não são alterados
type ProfilePatch struct {
	Username        *string
	ProfileImageURL *string
}

func (s *Store) UpdateProfile(ctx context.Context, authID string, p ProfilePatch, at time.Time) (*dto.User, error) {
	patch := map[string]any{"updated_at": at.UTC().Format(time.RFC3339Nano)}
	if p.Username != nil {
		patch["username"] = *p.Username
	}
	if p.ProfileImageURL != nil {
		if *p.ProfileImageURL == "" {
			patch["profile_image_url"] = nil
		} else {
			patch["profile_image_url"] = *p.ProfileImageURL
		}
	}
	var u dto.User
	if err := s.sb.From("users").Select("*").Eq("auth_id", authID).Single().Update(ctx, patch, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ---------- events ----------

type EventFilter struct {
	Status   string
	Featured *bool
	Limit    int
	Offset   int
}

func (s *Store) ListEvents(ctx context.Context, f EventFilter) ([]dto.Event, error) {
	q := s.sb.From("events").Select("*").Order("start_time", true)
	if f.Status != "" {
		q = q.Eq("status", f.Status)
	}
	if f.Featured != nil {
		q = q.Eq("is_featured", *f.Featured)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	out := []dto.Event{}
	if err := q.Execute(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*dto.Event, error) {
	var e dto.Event
	err := s.sb.From("events").Select("*").Eq("id", id).Single().Execute(ctx, &e)
	if supabase.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) CreateEvent(ctx context.Context, in dto.CreateEventRequest) (*dto.Event, error) {
	row := map[string]any{
		"title":          in.Title,
		"description":    in.Description,
		"category":       in.Category,
		"image_url":      in.ImageURL,
		"team_a":         in.TeamA,
		"team_b":         in.TeamB,
		"start_time":     in.StartTime.UTC().Format(time.RFC3339),
		"end_time":       in.EndTime.UTC().Format(time.RFC3339),
		"is_featured":    in.IsFeatured,
		"status":         dto.EventUpcoming,
		"initial_odds_a": in.InitialOddsA,
		"initial_odds_b": in.InitialOddsB,
		"current_odds_a": in.InitialOddsA,
		"current_odds_b": in.InitialOddsB,
	}
	var e dto.Event
	if err := s.sb.From("events").Select("*").Single().Insert(ctx, row, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// CompleteEvent marca o evento como completed com o vencedor. Só altera
// eventos ainda abertos; devolve (nil, nil) se nenhuma linha mudou.
func (s *Store) CompleteEvent(ctx context.Context, id string, in dto.SettleEventRequest, at time.Time) (*dto.Event, error) {
	patch := map[string]any{
		"status":     dto.EventCompleted,
		"winner":     in.Winner,
		"updated_at": at.UTC().Format(time.RFC3339Nano),
	}
	if in.TeamAScore != nil {
		patch["team_a_score"] = *in.TeamAScore
	}
	if in.TeamBScore != nil {
		patch["team_b_score"] = *in.TeamBScore
	}
	var rows []dto.Event
	err := s.sb.From("events").Select("*").
		Eq("id", id).In("status", dto.EventUpcoming, dto.EventLive).
		Update(ctx, patch, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// SettleBets roda a liquidação no banco (caminho síncrono, sem worker)
func (s *Store) SettleBets(ctx context.Context, eventID, winner string) error {
	return s.sb.RPC(ctx, "settle_bets", map[string]any{"event_id": eventID, "winner": winner}, nil)
}

// ---------- bets / transactions ----------

func (s *Store) ListUserBets(ctx context.Context, userID string) ([]dto.Bet, error) {
	out := []dto.Bet{}
	err := s.sb.From("bets").Select("*").Eq("user_id", userID).Order("created_at", false).Execute(ctx, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]dto.Transaction, error) {
	q := s.sb.From("transactions").Select("*").Eq("user_id", userID).Order("created_at", false)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	out := []dto.Transaction{}
	if err := q.Execute(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- leaderboard ----------

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	out := []dto.LeaderboardEntry{}
	err := s.sb.From("user_leaderboard").Select("*").Order("points_balance", false).Limit(limit).Execute(ctx, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) RefreshLeaderboard(ctx context.Context) error {
	return s.sb.RPC(ctx, "refresh_leaderboard", nil, nil)
}
