package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/radieske/points-bet-platform/internal/api-server/dto"
	"github.com/radieske/points-bet-platform/internal/validation"
)

// maxBodyBytes limita o corpo JSON das requisições
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

type profileUpdateKey struct{}

// validateProfileUpdate decodifica e valida o PUT /profile antes do controller
func validateProfileUpdate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.UpdateProfileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeErrorMsg(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if msg := validation.ProfileUpdate(deref(req.Username), deref(req.ProfileImageURL)); msg != "" {
			writeErrorMsg(w, http.StatusBadRequest, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileUpdateKey{}, req)))
	})
}

func profileUpdateFrom(ctx context.Context) (dto.UpdateProfileRequest, bool) {
	req, ok := ctx.Value(profileUpdateKey{}).(dto.UpdateProfileRequest)
	return req, ok
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
