package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/points-bet-platform/internal/api-server/dto"
	"github.com/radieske/points-bet-platform/internal/supabase"
)

func newStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	sb, err := supabase.New(supabase.Config{URL: srv.URL, ServiceKey: "k", Retry: supabase.NoRetry()})
	require.NoError(t, err)
	return New(sb)
}

func TestUsernameTakenExcludesSelf(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.alice", q.Get("username"))
		assert.Equal(t, "neq.auth-1", q.Get("auth_id"))
		assert.Equal(t, "1", q.Get("limit"))
		_, _ = w.Write([]byte(`[]`))
	})

	taken, err := s.UsernameTaken(context.Background(), "alice", "auth-1")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestEmailRegisteredIsCaseInsensitive(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"users":[{"id":"1","email":"Bob@Example.com"}]}`))
	})

	found, err := s.EmailRegistered(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCreateUserRecordDecodesShapes(t *testing.T) {
	bodies := []string{
		`{"id":"u1","email":"a@b.io","username":"alice","points_balance":1000}`,
		`[{"id":"u1","email":"a@b.io","username":"alice","points_balance":1000}]`,
		`"u1"`,
	}
	for _, body := range bodies {
		body := body
		s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/rest/v1/rpc/insert_user", r.URL.Path)
			var args map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&args))
			assert.Equal(t, float64(1000), args["p_points_balance"])
			assert.Equal(t, true, args["p_is_active"])
			_, _ = w.Write([]byte(body))
		})

		u, err := s.CreateUserRecord(context.Background(), "auth-1", "a@b.io", "alice", 1000)
		require.NoError(t, err, body)
		assert.Equal(t, "u1", u.ID, body)
		assert.Equal(t, "alice", u.Username, body)
		assert.Equal(t, int64(1000), u.PointsBalance, body)
	}
}

func TestGetUserByAuthIDNoRows(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = w.Write([]byte(`{"code":"PGRST116","message":"no rows"}`))
	})

	u, err := s.GetUserByAuthID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestListEventsFilters(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.live", q.Get("status"))
		assert.Equal(t, "eq.true", q.Get("is_featured"))
		assert.Equal(t, "5", q.Get("limit"))
		_, _ = w.Write([]byte(`[{"id":"e1","title":"Final","team_a":"A","team_b":"B","status":"live","start_time":"2030-01-01T10:00:00+00:00","end_time":"2030-01-01T12:00:00+00:00","created_at":"2029-12-01T00:00:00.123456+00:00","updated_at":"2029-12-01T00:00:00+00:00"}]`))
	})

	featured := true
	events, err := s.ListEvents(context.Background(), EventFilter{Status: "live", Featured: &featured, Limit: 5})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Final", events[0].Title)
}

func TestCompleteEventOnlyOpenEvents(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "in.(upcoming,live)", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`[]`))
	})

	e, err := s.CompleteEvent(context.Background(), "e1", dto.SettleEventRequest{Winner: "a"}, time.Now())
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestRefreshLeaderboard(t *testing.T) {
	called := false
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		called = r.URL.Path == "/rest/v1/rpc/refresh_leaderboard"
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, s.RefreshLeaderboard(context.Background()))
	assert.True(t, called)
}
