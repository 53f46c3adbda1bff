package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/api-server/auth"
	"github.com/radieske/points-bet-platform/internal/api-server/dto"
	"github.com/radieske/points-bet-platform/internal/api-server/repo"
	"github.com/radieske/points-bet-platform/internal/apperr"
	"github.com/radieske/points-bet-platform/pkg/contracts/events"
)

// publishTimeout limita a espera pelo Kafka depois que a aposta já foi gravada
const publishTimeout = 3 * time.Second

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())

	var req dto.PlaceBetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errs.Write(w, r, apperr.Validation("Invalid JSON body"))
		return
	}
	if msg := validatePlaceBet(req); msg != "" {
		s.errs.Write(w, r, apperr.Validation(msg))
		return
	}

	res, err := s.deps.Bets.PlaceBet(r.Context(), repo.PlaceBetParams{
		AuthID:  p.ID,
		EventID: req.EventID,
		Team:    req.Team,
		Amount:  req.Amount,
	})
	switch {
	case errors.Is(err, repo.ErrEventNotFound):
		writeErrorMsg(w, http.StatusNotFound, "Event not found")
		return
	case errors.Is(err, repo.ErrUserNotFound):
		writeErrorMsg(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, repo.ErrEventClosed):
		s.errs.Write(w, r, apperr.Conflict("Event is not open for betting"))
		return
	case errors.Is(err, repo.ErrInsufficientPoints):
		s.errs.Write(w, r, apperr.Conflict("Insufficient points"))
		return
	case err != nil:
		s.errs.Write(w, r, apperr.Internal("Failed to place bet", err))
		return
	}

	if s.deps.BetPublisher != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), publishTimeout)
		defer cancel()
		ev := events.BetPlaced{
			BetID:           res.Bet.ID,
			UserID:          res.Bet.UserID,
			EventID:         res.Bet.EventID,
			Team:            res.Bet.Team,
			Amount:          res.Bet.Amount,
			OddsAtPlacement: res.Bet.OddsAtPlacement,
			TsUnixMs:        s.deps.Now().UnixMilli(),
		}
		// chave = evento: mantém a ordem dos recálculos de odds por partição
		if err := s.deps.BetPublisher.Publish(ctx, ev.EventID, ev); err != nil {
			s.log.Warn("publish bet_placed failed", zap.String("bet_id", ev.BetID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{Bet: res.Bet, PointsBalance: res.PointsBalance})
}

func validatePlaceBet(req dto.PlaceBetRequest) string {
	var msgs []string
	switch {
	case strings.TrimSpace(req.EventID) == "":
		msgs = append(msgs, "event_id is required")
	case !validID(req.EventID):
		msgs = append(msgs, "event_id must be a valid UUID")
	}
	if req.Team != "a" && req.Team != "b" {
		msgs = append(msgs, "team must be 'a' or 'b'")
	}
	if req.Amount <= 0 {
		msgs = append(msgs, "amount must be a positive integer")
	}
	return strings.Join(msgs, ". ")
}

func (s *Server) listUserBets(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	bets, err := s.deps.Store.ListUserBets(r.Context(), user.ID)
	if err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to fetch bets", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bets": bets})
}

// currentUser carrega a linha de public.users do usuário autenticado
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*dto.User, bool) {
	p := auth.FromContext(r.Context())
	user, err := s.deps.Store.GetUserByAuthID(r.Context(), p.ID)
	if err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to fetch user data", err))
		return nil, false
	}
	if user == nil {
		writeErrorMsg(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	return user, true
}
