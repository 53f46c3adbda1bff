package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/api-server/auth"
	"github.com/radieske/points-bet-platform/internal/api-server/dto"
	"github.com/radieske/points-bet-platform/internal/apperr"
	"github.com/radieske/points-bet-platform/pkg/contracts/events"
)

const minOdds = 1.01

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errs.Write(w, r, apperr.Validation("Invalid JSON body"))
		return
	}
	if msg := validateCreateEvent(req); msg != "" {
		s.errs.Write(w, r, apperr.Validation(msg))
		return
	}

	ev, err := s.deps.Store.CreateEvent(r.Context(), req)
	if err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to create event", err))
		return
	}
	s.log.Info("event created", zap.String("event_id", ev.ID), zap.String("title", ev.Title))
	writeJSON(w, http.StatusCreated, map[string]any{"event": ev})
}

func validateCreateEvent(req dto.CreateEventRequest) string {
	var msgs []string
	if strings.TrimSpace(req.Title) == "" {
		msgs = append(msgs, "title is required")
	}
	if strings.TrimSpace(req.TeamA) == "" || strings.TrimSpace(req.TeamB) == "" {
		msgs = append(msgs, "team_a and team_b are required")
	}
	switch {
	case req.StartTime.IsZero() || req.EndTime.IsZero():
		msgs = append(msgs, "start_time and end_time are required")
	case !req.StartTime.Before(req.EndTime):
		msgs = append(msgs, "start_time must be before end_time")
	}
	if req.InitialOddsA < minOdds || req.InitialOddsB < minOdds {
		msgs = append(msgs, "initial odds must be at least 1.01")
	}
	return strings.Join(msgs, ". ")
}

// settleEvent encerra o evento e enfileira a liquidação. Sem publisher
// (ou com falha no Kafka) a liquidação roda de forma síncrona no banco.
func (s *Server) settleEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	if !validID(id) {
		writeErrorMsg(w, http.StatusNotFound, "Event not found")
		return
	}

	var req dto.SettleEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errs.Write(w, r, apperr.Validation("Invalid JSON body"))
		return
	}
	if msg := validateSettle(req); msg != "" {
		s.errs.Write(w, r, apperr.Validation(msg))
		return
	}

	ev, err := s.deps.Store.GetEvent(ctx, id)
	if err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to fetch event", err))
		return
	}
	if ev == nil {
		writeErrorMsg(w, http.StatusNotFound, "Event not found")
		return
	}
	if !ev.OpenForBetting() {
		s.errs.Write(w, r, apperr.Conflict("Event already settled"))
		return
	}

	now := s.deps.Now()
	done, err := s.deps.Store.CompleteEvent(ctx, id, req, now)
	if err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to settle event", err))
		return
	}
	if done == nil {
		// outro admin encerrou entre o GET e o PATCH
		s.errs.Write(w, r, apperr.Conflict("Event already settled"))
		return
	}

	msg := events.EventSettled{
		EventID:    id,
		Winner:     req.Winner,
		TeamAScore: req.TeamAScore,
		TeamBScore: req.TeamBScore,
		SettledBy:  auth.FromContext(ctx).ID,
		Ts:         now.UTC(),
	}
	if s.deps.SettlePublisher != nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		err := s.deps.SettlePublisher.Publish(pctx, id, msg)
		cancel()
		if err == nil {
			writeJSON(w, http.StatusAccepted, dto.SettleAcceptedResponse{
				Message: "Event settlement queued",
				EventID: id,
				Winner:  req.Winner,
			})
			return
		}
		s.log.Warn("publish event_settled failed, settling inline", zap.String("event_id", id), zap.Error(err))
	}

	if err := s.deps.Store.SettleBets(ctx, id, req.Winner); err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to settle bets", err))
		return
	}
	s.afterLeaderboardChange(ctx)
	if s.deps.Odds != nil {
		if err := s.deps.Odds.Invalidate(ctx, id); err != nil {
			s.log.Warn("odds cache invalidate failed", zap.String("event_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, dto.SettleAcceptedResponse{
		Message: "Event settled",
		EventID: id,
		Winner:  req.Winner,
	})
}

func validateSettle(req dto.SettleEventRequest) string {
	var msgs []string
	switch req.Winner {
	case "a", "b", "draw":
	default:
		msgs = append(msgs, "winner must be 'a', 'b' or 'draw'")
	}
	if (req.TeamAScore != nil && *req.TeamAScore < 0) || (req.TeamBScore != nil && *req.TeamBScore < 0) {
		msgs = append(msgs, "scores must be non-negative")
	}
	return strings.Join(msgs, ". ")
}

func (s *Server) refreshLeaderboard(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.RefreshLeaderboard(r.Context()); err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to refresh leaderboard", err))
		return
	}
	if s.deps.Leaderboard != nil {
		if err := s.deps.Leaderboard.InvalidateAll(r.Context()); err != nil {
			s.log.Warn("leaderboard cache invalidate failed", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Leaderboard refreshed"})
}

// afterLeaderboardChange recalcula a view e derruba o cache (best-effort)
func (s *Server) afterLeaderboardChange(ctx context.Context) {
	if err := s.deps.Store.RefreshLeaderboard(ctx); err != nil {
		s.log.Warn("refresh leaderboard failed", zap.Error(err))
	}
	if s.deps.Leaderboard != nil {
		if err := s.deps.Leaderboard.InvalidateAll(ctx); err != nil {
			s.log.Warn("leaderboard cache invalidate failed", zap.Error(err))
		}
	}
}
