package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/api-server/auth"
	"github.com/radieske/points-bet-platform/internal/api-server/repo"
	"github.com/radieske/points-bet-platform/internal/api-server/store"
	"github.com/radieske/points-bet-platform/internal/shared/metrics"
	"github.com/radieske/points-bet-platform/internal/supabase"
	"github.com/radieske/points-bet-platform/pkg/contracts/events"
)

// AuthAPI é o subconjunto do GoTrue usado pelos controllers
type AuthAPI interface {
	SignUp(ctx context.Context, email, password string, data map[string]any) (*supabase.AuthResponse, error)
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.AuthResponse, error)
	SignOut(ctx context.Context, accessToken string) error
}

// AdminAuthAPI remove usuários do GoTrue (compensação do cadastro)
type AdminAuthAPI interface {
	DeleteUser(ctx context.Context, id string) error
}

type BetPlacer interface {
	PlaceBet(ctx context.Context, in repo.PlaceBetParams) (*repo.PlaceBetResult, error)
}

// Publisher publica um evento serializado em JSON com chave
type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
}

type OddsCache interface {
	Get(ctx context.Context, eventID string) (*events.OddsSnapshot, bool, error)
	Set(ctx context.Context, s events.OddsSnapshot) error
	Invalidate(ctx context.Context, eventID string) error
}

type LeaderboardCache interface {
	Get(ctx context.Context, limit int, dst any) (bool, error)
	Set(ctx context.Context, limit int, v any) error
	InvalidateAll(ctx context.Context) error
}

type Denylist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Deps reúne as dependências do api-server. Caches, Denylist, publishers
// e Metrics são opcionais (nil desliga o recurso).
type Deps struct {
	Log       *zap.Logger
	Store     *store.Store
	Auth      AuthAPI
	AuthAdmin AdminAuthAPI
	Verifier  auth.Verifier
	Bets      BetPlacer

	BetPublisher    Publisher
	SettlePublisher Publisher

	Odds        OddsCache
	Leaderboard LeaderboardCache
	Denylist    Denylist
	Metrics     *metrics.HTTP

	InitialPoints  int64
	Production     bool
	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int
	RequestTimeout time.Duration
	TrustProxy     bool

	Now func() time.Time
}

type Server struct {
	deps    Deps
	log     *zap.Logger
	errs    ErrorWriter
	limiter *RateLimiter
}

func NewServer(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.InitialPoints == 0 {
		d.InitialPoints = 1000
	}
	s := &Server{
		deps: d,
		log:  d.Log,
		errs: ErrorWriter{Log: d.Log, Production: d.Production},
	}
	if d.RateLimitRPS > 0 {
		s.limiter = NewRateLimiter(d.RateLimitRPS, d.RateLimitBurst)
	}
	return s
}

// Limiter expõe o rate limiter para o main agendar a limpeza
func (s *Server) Limiter() *RateLimiter { return s.limiter }

// Router monta as rotas /api/* e /health
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// X-Forwarded-For/X-Real-IP só valem atrás de proxy confiável
	if s.deps.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestID)
	r.Use(requestLogger(s.log))
	r.Use(recoverer(s.errs))
	if s.deps.Metrics != nil {
		r.Use(httpMetrics(s.deps.Metrics))
	}
	r.Use(corsHandler(s.deps.CORSOrigins))
	r.Use(securityHeaders)
	if s.limiter != nil {
		r.Use(s.limiter.Handler(s.errs))
	}
	if s.deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.deps.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMsg(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMsg(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Post("/logout", s.logout)

			r.With(s.authenticate).Get("/profile", s.getProfile)
			r.With(s.authenticate, validateProfileUpdate).Put("/profile", s.updateProfile)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.listEvents)
			r.Get("/{id}", s.getEvent)
			r.Get("/{id}/odds", s.getEventOdds)
		})

		r.Route("/bets", func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/", s.placeBet)
			r.Get("/user", s.listUserBets)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/leaderboard", s.leaderboard)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Get("/profile", s.getProfile)
				r.With(validateProfileUpdate).Put("/profile", s.updateProfile)
				r.Get("/transactions", s.listTransactions)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.authenticate, requireAdmin)
			r.Post("/events", s.createEvent)
			r.Post("/events/{id}/settle", s.settleEvent)
			r.Post("/leaderboard/refresh", s.refreshLeaderboard)
		})
	})

	return r
}

// corsHandler: "*" libera qualquer origem (sem credenciais)
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: !(len(origins) == 1 && origins[0] == "*"),
		MaxAge:           600,
	})
	return c.Handler
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
