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
	"github.com/radieske/points-bet-platform/internal/api-server/store"
	"github.com/radieske/points-bet-platform/internal/supabase"
	"github.com/radieske/points-bet-platform/internal/validation"
)

// register: valida, checa unicidade, cria no GoTrue e grava public.users.
// Se o insert_user falhar o usuário do GoTrue é removido.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if msg := validation.Register(req.Email, req.Username, req.Password); msg != "" {
		writeErrorMsg(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	email := validation.SanitizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	taken, err := s.deps.Store.UsernameTaken(ctx, username, "")
	if err != nil {
		s.log.Error("check username failed", zap.Error(err))
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to check username availability")
		return
	}
	if taken {
		writeErrorMsg(w, http.StatusBadRequest, "Username already taken")
		return
	}

	exists, err := s.deps.Store.EmailRegistered(ctx, email)
	if err != nil {
		s.log.Error("check email failed", zap.Error(err))
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to check email availability")
		return
	}
	if exists {
		writeErrorMsg(w, http.StatusBadRequest, "Email already registered")
		return
	}

	authRes, err := s.deps.Auth.SignUp(ctx, email, req.Password, map[string]any{"username": username})
	if err != nil {
		if !supabase.IsAPIError(err) {
			s.log.Error("signup failed", zap.Error(err))
			writeErrorMsg(w, http.StatusInternalServerError, "Registration failed. Please try again later.")
			return
		}
		s.log.Warn("signup rejected", zap.Error(err))
		writeErrorMsg(w, http.StatusBadRequest, apiMessage(err))
		return
	}
	if authRes == nil || authRes.User == nil {
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user, err := s.deps.Store.CreateUserRecord(ctx, authRes.User.ID, email, username, s.deps.InitialPoints)
	if err != nil {
		s.log.Error("create user record failed", zap.String("auth_id", authRes.User.ID), zap.Error(err))
		// compensação: usa contexto próprio para não perder a limpeza se o cliente desconectar
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if derr := s.deps.AuthAdmin.DeleteUser(cctx, authRes.User.ID); derr != nil {
			s.log.Error("rollback auth user failed", zap.String("auth_id", authRes.User.ID), zap.Error(derr))
		}
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to create user record")
		return
	}

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		Message: "User registered successfully",
		User: dto.UserSummary{
			ID:            user.ID,
			Email:         user.Email,
			Username:      user.Username,
			PointsBalance: user.PointsBalance,
		},
		Session: authRes.Session,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if msg := validation.Login(req.Email, req.Password); msg != "" {
		writeErrorMsg(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	email := validation.SanitizeEmail(req.Email)

	authRes, err := s.deps.Auth.SignInWithPassword(ctx, email, req.Password)
	if err != nil {
		if !supabase.IsAPIError(err) {
			s.log.Error("login failed", zap.Error(err))
			writeErrorMsg(w, http.StatusInternalServerError, "Login failed. Please try again later.")
			return
		}
		s.log.Info("login rejected", zap.Error(err))
		writeErrorMsg(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if authRes == nil || authRes.User == nil {
		writeErrorMsg(w, http.StatusUnauthorized, "Authentication failed")
		return
	}

	user, err := s.deps.Store.GetUserByAuthID(ctx, authRes.User.ID)
	if err != nil || user == nil {
		s.log.Error("fetch user data failed", zap.String("auth_id", authRes.User.ID), zap.Error(err))
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to fetch user data")
		return
	}

	if err := s.deps.Store.TouchLastLogin(ctx, authRes.User.ID, s.deps.Now()); err != nil {
		s.log.Warn("update last_login_at failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Message: "Login successful",
		User: dto.LoginUser{
			ID:              user.ID,
			Email:           user.Email,
			Username:        user.Username,
			PointsBalance:   user.PointsBalance,
			ProfileImageURL: user.ProfileImageURL,
			IsActive:        user.IsActive,
		},
		Session: authRes.Session,
	})
}

// maxRevokeTTL limita a vida de uma chave na denylist
const maxRevokeTTL = time.Hour

// logout é público; com token presente revoga no GoTrue e, se o token for
// válido, grava na denylist até o exp (no máximo maxRevokeTTL)
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if token, msg := auth.BearerToken(r); msg == "" {
		ctx := r.Context()
		if err := s.deps.Auth.SignOut(ctx, token); err != nil {
			s.log.Info("remote sign out failed", zap.Error(err))
		}
		s.revoke(ctx, token)
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

func (s *Server) revoke(ctx context.Context, token string) {
	if s.deps.Denylist == nil || s.deps.Verifier == nil {
		return
	}
	p, err := s.deps.Verifier.Verify(ctx, token)
	if err != nil {
		s.log.Debug("logout with unverifiable token, skipping denylist", zap.Error(err))
		return
	}
	ttl := maxRevokeTTL
	if !p.ExpiresAt.IsZero() {
		ttl = p.ExpiresAt.Sub(s.deps.Now())
		if ttl > maxRevokeTTL {
			ttl = maxRevokeTTL
		}
	}
	if ttl <= 0 {
		return
	}
	if err := s.deps.Denylist.Revoke(ctx, token, ttl); err != nil {
		s.log.Warn("denylist revoke failed", zap.Error(err))
	}
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	if p == nil {
		writeErrorMsg(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := s.deps.Store.GetUserByAuthID(r.Context(), p.ID)
	if err != nil || user == nil {
		s.log.Error("fetch profile failed", zap.String("auth_id", p.ID), zap.Error(err))
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to fetch user profile")
		return
	}

	writeJSON(w, http.StatusOK, dto.ProfileResponse{User: dto.ProfileUser{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		PointsBalance:   user.PointsBalance,
		ProfileImageURL: user.ProfileImageURL,
		LastLoginAt:     user.LastLoginAt,
		IsActive:        user.IsActive,
		CreatedAt:       user.CreatedAt,
	}})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	if p == nil {
		writeErrorMsg(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	req, ok := profileUpdateFrom(r.Context())
	if !ok || (req.Username == nil && req.ProfileImageURL == nil) {
		writeErrorMsg(w, http.StatusBadRequest, "No update data provided")
		return
	}

	// username vazio é ignorado; profile_image_url vazio limpa a imagem
	if req.Username != nil && *req.Username == "" {
		req.Username = nil
	}

	ctx := r.Context()
	if req.Username != nil {
		taken, err := s.deps.Store.UsernameTaken(ctx, *req.Username, p.ID)
		if err != nil {
			s.log.Error("check username failed", zap.Error(err))
			writeErrorMsg(w, http.StatusInternalServerError, "Failed to check username availability")
			return
		}
		if taken {
			writeErrorMsg(w, http.StatusBadRequest, "Username already taken")
			return
		}
	}

	user, err := s.deps.Store.UpdateProfile(ctx, p.ID, store.ProfilePatch{
		Username:        req.Username,
		ProfileImageURL: req.ProfileImageURL,
	}, s.deps.Now())
	if err != nil {
		s.log.Error("update profile failed", zap.String("auth_id", p.ID), zap.Error(err))
		writeErrorMsg(w, http.StatusInternalServerError, "Failed to update user profile")
		return
	}

	writeJSON(w, http.StatusOK, dto.UpdateProfileResponse{
		Message: "Profile updated successfully",
		User: dto.UpdatedUser{
			ID:              user.ID,
			Email:           user.Email,
			Username:        user.Username,
			PointsBalance:   user.PointsBalance,
			ProfileImageURL: user.ProfileImageURL,
			IsActive:        user.IsActive,
			UpdatedAt:       user.UpdatedAt,
		},
	})
}

// apiMessage devolve a mensagem do BaaS para o cliente
func apiMessage(err error) string {
	var e *supabase.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
