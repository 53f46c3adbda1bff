// Package auth valida bearer tokens emitidos pelo GoTrue e carrega o
// usuário autenticado no contexto da requisição.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/radieske/points-bet-platform/internal/supabase"
)

// ErrInvalidToken: token expirado, assinatura inválida ou rejeitado pelo GoTrue
var ErrInvalidToken = errors.New("invalid token")

// Principal é o usuário autenticado (id = auth.users.id)
type Principal struct {
	ID        string
	Email     string
	Role      string
	ExpiresAt time.Time
}

func (p *Principal) IsAdmin() bool { return p != nil && p.Role == "admin" }

// Verifier retorna ErrInvalidToken para tokens recusados; qualquer outro
// erro indica falha ao consultar o servidor de autenticação.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// JWTVerifier valida HS256 com o segredo do projeto, sem ida à rede
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

type claims struct {
	Email       string         `json:"email"`
	AppMetadata map[string]any `json:"app_metadata"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	var c claims
	parsed, err := v.parser.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !parsed.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	u := supabase.User{ID: c.Subject, Email: c.Email, AppMetadata: c.AppMetadata}
	p := &Principal{ID: c.Subject, Email: c.Email, Role: u.AppRole()}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p, nil
}

// UserGetter é o subconjunto do cliente GoTrue usado aqui
type UserGetter interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
}

// RemoteVerifier pergunta ao GoTrue (GET /auth/v1/user) a cada requisição
type RemoteVerifier struct {
	users UserGetter
}

func NewRemoteVerifier(users UserGetter) *RemoteVerifier { return &RemoteVerifier{users: users} }

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	u, err := v.users.GetUser(ctx, token)
	if err != nil {
		// 4xx do GoTrue = token recusado; sem resposta ou 5xx = falha do servidor
		if st := supabase.StatusCode(err); st >= 400 && st < 500 {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("auth server: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidToken
	}
	p := &Principal{ID: u.ID, Email: u.Email, Role: u.AppRole()}
	if exp, ok := TokenExpiry(token); ok {
		p.ExpiresAt = exp
	}
	return p, nil
}

// TokenExpiry lê o claim exp sem validar assinatura; só use após verificar o token
func TokenExpiry(token string) (time.Time, bool) {
	var c jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil || c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// BearerToken extrai o token do header Authorization. O segundo retorno é a
// mensagem de erro para o cliente (vazia quando ok).
func BearerToken(r *http.Request) (string, string) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", "No token provided"
	}
	parts := strings.Split(h, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid token format"
	}
	if parts[1] == "" {
		return "", "No token provided"
	}
	return parts[1], ""
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext retorna nil quando a rota não passou pelo middleware de auth
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxKey{}).(*Principal)
	return p
}
