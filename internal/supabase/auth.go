package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// User é o usuário do GoTrue (auth.users), não a linha de public.users
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Role         string         `json:"role,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// AppRole retorna app_metadata.role ou "user"
func (u *User) AppRole() string {
	if u == nil || u.AppMetadata == nil {
		return "user"
	}
	if r, ok := u.AppMetadata["role"].(string); ok && r != "" {
		return r
	}
	return "user"
}

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// AuthResponse: Session é nil quando o cadastro exige confirmação de e-mail
type AuthResponse struct {
	User    *User
	Session *Session
}

type AuthClient struct {
	c     *Client
	Admin *AdminClient
}

// SignUp cria o usuário com user_metadata = data
func (a *AuthClient) SignUp(ctx context.Context, email, password string, data map[string]any) (*AuthResponse, error) {
	payload := map[string]any{"email": email, "password": password}
	if len(data) > 0 {
		payload["data"] = data
	}
	body, err := a.c.send(ctx, request{method: http.MethodPost, path: "/auth/v1/signup", body: payload})
	if err != nil {
		return nil, err
	}
	return parseAuthResponse(body)
}

func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error) {
	body, err := a.c.send(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}
	return parseAuthResponse(body)
}

// GetUser valida o access token no GoTrue
func (a *AuthClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	body, err := a.c.send(ctx, request{method: http.MethodGet, path: "/auth/v1/user", bearer: accessToken})
	if err != nil {
		return nil, err
	}
	var u User
	if err := decode(body, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, nil
	}
	return &u, nil
}

// SignOut revoga a sessão do token informado
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	_, err := a.c.send(ctx, request{method: http.MethodPost, path: "/auth/v1/logout", bearer: accessToken})
	return err
}

func parseAuthResponse(body []byte) (*AuthResponse, error) {
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("supabase: decode auth response: %w", err)
	}
	if s.AccessToken != "" {
		return &AuthResponse{User: s.User, Session: &s}, nil
	}
	// sem sessão o GoTrue devolve o próprio usuário no corpo
	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("supabase: decode auth user: %w", err)
	}
	if u.ID == "" {
		return &AuthResponse{}, nil
	}
	return &AuthResponse{User: &u}, nil
}

// AdminClient usa a service key nas rotas /auth/v1/admin
type AdminClient struct {
	c *Client
}

func (a *AdminClient) ListUsers(ctx context.Context, page, perPage int) ([]User, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	body, err := a.c.send(ctx, request{method: http.MethodGet, path: "/auth/v1/admin/users", query: q})
	if err != nil {
		return nil, err
	}
	var out struct {
		Users []User `json:"users"`
	}
	if err := decode(body, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (a *AdminClient) DeleteUser(ctx context.Context, id string) error {
	_, err := a.c.send(ctx, request{method: http.MethodDelete, path: "/auth/v1/admin/users/" + url.PathEscape(id)})
	return err
}
