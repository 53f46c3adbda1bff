package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/points-bet-platform/internal/api-server/auth"
	"github.com/radieske/points-bet-platform/internal/api-server/repo"
	"github.com/radieske/points-bet-platform/internal/api-server/store"
	"github.com/radieske/points-bet-platform/internal/shared/metrics"
	"github.com/radieske/points-bet-platform/internal/supabase"
	"github.com/radieske/points-bet-platform/pkg/contracts/events"
)

// ---------- fakes ----------

type fakeVerifier map[string]*auth.Principal

func (f fakeVerifier) Verify(_ context.Context, token string) (*auth.Principal, error) {
	if token == "boom" {
		return nil, errors.New("gotrue down")
	}
	p, ok := f[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return p, nil
}

type fakeAuth struct {
	signUp    func(email, password string) (*supabase.AuthResponse, error)
	signIn    func(email, password string) (*supabase.AuthResponse, error)
	signedOut []string
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string, _ map[string]any) (*supabase.AuthResponse, error) {
	return f.signUp(email, password)
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, password string) (*supabase.AuthResponse, error) {
	return f.signIn(email, password)
}

func (f *fakeAuth) SignOut(_ context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return nil
}

type fakeAdmin struct{ deleted []string }

func (f *fakeAdmin) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeBets struct {
	got repo.PlaceBetParams
	res *repo.PlaceBetResult
	err error
}

func (f *fakeBets) PlaceBet(_ context.Context, in repo.PlaceBetParams) (*repo.PlaceBetResult, error) {
	f.got = in
	return f.res, f.err
}

type published struct {
	key string
	v   any
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{key, v})
	return nil
}

type fakeOdds map[string]events.OddsSnapshot

func (f fakeOdds) Get(_ context.Context, id string) (*events.OddsSnapshot, bool, error) {
	s, ok := f[id]
	if !ok {
		return nil, false, nil
	}
	return &s, true, nil
}

func (f fakeOdds) Set(_ context.Context, s events.OddsSnapshot) error {
	f[s.EventID] = s
	return nil
}

func (f fakeOdds) Invalidate(_ context.Context, id string) error {
	delete(f, id)
	return nil
}

type fakeLeaderboard struct {
	data        map[int][]byte
	invalidated int
}

func (f *fakeLeaderboard) Get(_ context.Context, limit int, dst any) (bool, error) {
	b, ok := f.data[limit]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (f *fakeLeaderboard) Set(_ context.Context, limit int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.data[limit] = b
	return nil
}

func (f *fakeLeaderboard) InvalidateAll(context.Context) error {
	f.invalidated++
	f.data = map[int][]byte{}
	return nil
}

type fakeDenylist struct {
	revoked map[string]time.Duration
	err     error
}

func (f *fakeDenylist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	f.revoked[token] = ttl
	return nil
}

func (f *fakeDenylist) IsRevoked(_ context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[token]
	return ok, nil
}

// ---------- helpers ----------

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var principals = fakeVerifier{
	"user-token":  {ID: "auth-1", Email: "alice@example.com", Role: "user"},
	"admin-token": {ID: "auth-admin", Email: "root@example.com", Role: "admin"},
}

type env struct {
	baas    *http.ServeMux
	deps    Deps
	auth    *fakeAuth
	admin   *fakeAdmin
	bets    *fakeBets
	betPub  *fakePublisher
	settPub *fakePublisher
	odds    fakeOdds
	board   *fakeLeaderboard
	deny    *fakeDenylist
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		baas:    http.NewServeMux(),
		auth:    &fakeAuth{},
		admin:   &fakeAdmin{},
		bets:    &fakeBets{},
		betPub:  &fakePublisher{},
		settPub: &fakePublisher{},
		odds:    fakeOdds{},
		board:   &fakeLeaderboard{data: map[int][]byte{}},
		deny:    &fakeDenylist{revoked: map[string]time.Duration{}},
	}
	srv := httptest.NewServer(e.baas)
	t.Cleanup(srv.Close)
	sb, err := supabase.New(supabase.Config{URL: srv.URL, ServiceKey: "service-key", Retry: supabase.NoRetry()})
	require.NoError(t, err)

	e.deps = Deps{
		Store:           store.New(sb),
		Auth:            e.auth,
		AuthAdmin:       e.admin,
		Verifier:        principals,
		Bets:            e.bets,
		BetPublisher:    e.betPub,
		SettlePublisher: e.settPub,
		Odds:            e.odds,
		Leaderboard:     e.board,
		Denylist:        e.deny,
		InitialPoints:   1000,
		CORSOrigins:     []string{"*"},
		Now:             func() time.Time { return fixedNow },
	}
	return e
}

func (e *env) handler() http.Handler { return NewServer(e.deps).Router() }

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

// respond escreve um corpo JSON fixo
func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

const noRows = `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`

const aliceRow = `{"id":"u-1","auth_id":"auth-1","email":"alice@example.com","username":"alice","points_balance":1000,"is_active":true}`

// ---------- router / middleware ----------

func TestHealth(t *testing.T) {
	e := newEnv(t)
	for _, p := range []string{"/health", "/api/health"} {
		rec := e.do(http.MethodGet, p, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decodeBody(t, rec)["status"])
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	}
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	rec := newEnv(t).do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeBody(t, rec)["error"])
}

func TestAuthenticateBranches(t *testing.T) {
	e := newEnv(t)
	e.baas.Handle("/rest/v1/users", respond(200, aliceRow))
	e.deny.revoked["admin-token"] = time.Minute

	cases := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"missing", "", 401, "No token provided"},
		{"bad scheme", "Token abc", 401, "Invalid token format"},
		{"too many parts", "Bearer a b", 401, "Invalid token format"},
		{"unknown token", "Bearer nope", 401, "Invalid token"},
		{"revoked", "Bearer admin-token", 401, "Invalid token"},
		{"verifier failure", "Bearer boom", 500, "Authentication server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.handler().ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, decodeBody(t, rec)["error"])
		})
	}

	rec := e.do(http.MethodGet, "/api/auth/profile", "user-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDenylistFailureFailsOpen(t *testing.T) {
	e := newEnv(t)
	e.baas.Handle("/rest/v1/users", respond(200, aliceRow))
	e.deny.err = errors.New("redis down")

	rec := e.do(http.MethodGet, "/api/users/profile", "user-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodPost, "/api/admin/leaderboard/refresh", "user-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin privileges required", decodeBody(t, rec)["error"])

	rec = e.do(http.MethodPost, "/api/admin/leaderboard/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminWithoutPrincipal(t *testing.T) {
	rec := httptest.NewRecorder()
	requireAdmin(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", decodeBody(t, rec)["error"])
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	e := newEnv(t)
	e.deps.RateLimitRPS = 1
	e.deps.RateLimitBurst = 2
	h := e.handler()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			assert.Equal(t, "Too Many Requests", decodeBody(t, rec)["error"])
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimiterIgnoresForwardedHeadersByDefault(t *testing.T) {
	e := newEnv(t)
	e.deps.RateLimitRPS = 1
	e.deps.RateLimitBurst = 2
	h := e.handler()

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429, 429}, codes)
}

func TestRateLimiterUsesForwardedForBehindTrustedProxy(t *testing.T) {
	e := newEnv(t)
	e.deps.RateLimitRPS = 1
	e.deps.RateLimitBurst = 1
	e.deps.TrustProxy = true
	h := e.handler()

	codes := make([]int, 0, 3)
	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.1"} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimiterCleanupDropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := fixedNow
	rl.now = func() time.Time { return now }
	require.True(t, rl.allow("1.1.1.1"))

	now = now.Add(11 * time.Minute)
	rl.Cleanup()

	assert.Empty(t, rl.limiters)
}

func TestRecovererReturns500(t *testing.T) {
	ew := ErrorWriter{Production: true}
	h := recoverer(ew)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.NotContains(t, body, "message")
}

func TestMetricsUseRoutePattern(t *testing.T) {
	e := newEnv(t)
	e.baas.Handle("/rest/v1/events", respond(406, noRows))
	reg := prometheus.NewRegistry()
	e.deps.Metrics = metrics.NewHTTP(reg, "api-server")

	e.do(http.MethodGet, "/api/events/6f1c2b3a-9d4e-4f5a-8b7c-1d2e3f4a5b6c", "", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.deps.Metrics.Requests.WithLabelValues("/api/events/{id}", "GET", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(e.deps.Metrics.InFlight))
}
