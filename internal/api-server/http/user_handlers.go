package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/api-server/dto"
	"github.com/radieske/points-bet-platform/internal/apperr"
)

// leaderboard é público; ?limit= vai de 1 a 100 (default 10)
func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 10, 1, 100)
	if err != nil {
		s.errs.Write(w, r, err)
		return
	}
	ctx := r.Context()

	var entries []dto.LeaderboardEntry
	if s.deps.Leaderboard != nil {
		hit, err := s.deps.Leaderboard.Get(ctx, limit, &entries)
		if err != nil {
			s.log.Warn("leaderboard cache get failed", zap.Error(err))
		} else if hit {
			writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
			return
		}
	}

	entries, err = s.deps.Store.Leaderboard(ctx, limit)
	if err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to fetch leaderboard", err))
		return
	}
	if s.deps.Leaderboard != nil {
		if err := s.deps.Leaderboard.Set(ctx, limit, entries); err != nil {
			s.log.Warn("leaderboard cache set failed", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 50, 1, 200)
	if err != nil {
		s.errs.Write(w, r, err)
		return
	}
	offset, err := intQuery(r, "offset", 0, 0, 1<<30)
	if err != nil {
		s.errs.Write(w, r, err)
		return
	}
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	txs, err := s.deps.Store.ListTransactions(r.Context(), user.ID, limit, offset)
	if err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to fetch transactions", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}
