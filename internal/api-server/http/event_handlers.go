package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/api-server/dto"
	"github.com/radieske/points-bet-platform/internal/api-server/store"
	"github.com/radieske/points-bet-platform/internal/apperr"
	"github.com/radieske/points-bet-platform/pkg/contracts/events"
)

var validStatuses = map[string]bool{
	dto.EventUpcoming: true, dto.EventLive: true, dto.EventCompleted: true, dto.EventCanceled: true,
}

// listEvents aceita ?status=&featured=&limit=&offset=
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	f := store.EventFilter{Status: r.URL.Query().Get("status")}
	if f.Status != "" && !validStatuses[f.Status] {
		s.errs.Write(w, r, apperr.Validation("status must be one of upcoming, live, completed, canceled"))
		return
	}
	var err error
	if f.Featured, err = boolQuery(r, "featured"); err != nil {
		s.errs.Write(w, r, err)
		return
	}
	if f.Limit, err = intQuery(r, "limit", 20, 1, 100); err != nil {
		s.errs.Write(w, r, err)
		return
	}
	if f.Offset, err = intQuery(r, "offset", 0, 0, 1<<30); err != nil {
		s.errs.Write(w, r, err)
		return
	}

	list, err := s.deps.Store.ListEvents(r.Context(), f)
	if err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to fetch events", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": list})
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validID(id) {
		writeErrorMsg(w, http.StatusNotFound, "Event not found")
		return
	}
	ev, err := s.deps.Store.GetEvent(r.Context(), id)
	if err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to fetch event", err))
		return
	}
	if ev == nil {
		writeErrorMsg(w, http.StatusNotFound, "Event not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": ev})
}

// getEventOdds retorna as odds do cache e, na falta, do BaaS (salvando no cache)
func (s *Server) getEventOdds(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	if !validID(id) {
		writeErrorMsg(w, http.StatusNotFound, "Event not found")
		return
	}

	if s.deps.Odds != nil {
		snap, ok, err := s.deps.Odds.Get(ctx, id)
		if err != nil {
			s.log.Warn("odds cache get failed", zap.String("event_id", id), zap.Error(err))
		} else if ok {
			writeJSON(w, http.StatusOK, oddsResponse(*snap, true))
			return
		}
	}

	ev, err := s.deps.Store.GetEvent(ctx, id)
	if err != nil {
		s.errs.Write(w, r, apperr.Internal("Failed to fetch odds", err))
		return
	}
	if ev == nil {
		writeErrorMsg(w, http.StatusNotFound, "Event not found")
		return
	}

	snap := events.OddsSnapshot{
		EventID:    ev.ID,
		OddsA:      ev.CurrentOddsA,
		OddsB:      ev.CurrentOddsB,
		TotalBetsA: ev.TotalBetsA,
		TotalBetsB: ev.TotalBetsB,
		Status:     ev.Status,
		UpdatedAt:  ev.UpdatedAt,
	}
	if s.deps.Odds != nil {
		if err := s.deps.Odds.Set(ctx, snap); err != nil {
			s.log.Warn("odds cache set failed", zap.String("event_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, oddsResponse(snap, false))
}

func oddsResponse(s events.OddsSnapshot, cached bool) dto.OddsResponse {
	return dto.OddsResponse{
		EventID:    s.EventID,
		OddsA:      s.OddsA,
		OddsB:      s.OddsB,
		TotalBetsA: s.TotalBetsA,
		TotalBetsB: s.TotalBetsB,
		Cached:     cached,
		UpdatedAt:  s.UpdatedAt,
	}
}
