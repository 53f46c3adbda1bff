package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/apperr"
)

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorMsg mantém o formato {"error": "..."} usado pelos controllers
func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ErrorResponse é o corpo padronizado do tratador central
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ErrorWriter normaliza qualquer erro em status + corpo.
// Em produção a mensagem só aparece para erros operacionais.
type ErrorWriter struct {
	Log        *zap.Logger
	Production bool
}

func (ew ErrorWriter) Response(err error) (int, ErrorResponse) {
	ae := apperr.From(err)
	if ae.IsValidation() {
		return http.StatusBadRequest, ErrorResponse{Error: apperr.CodeValidation, Message: ae.Message}
	}
	if ae.Status == http.StatusNotFound {
		return http.StatusNotFound, ErrorResponse{Error: apperr.CodeNotFound}
	}

	code := ae.Code
	if code == "" {
		code = apperr.CodeInternal
	}
	resp := ErrorResponse{Error: code}
	if !ew.Production || ae.Operational {
		resp.Message = ae.Message
	}
	return ae.Status, resp
}

func (ew ErrorWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	status, body := ew.Response(err)
	if ew.Log != nil {
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		}
		if status >= 500 {
			ew.Log.Error("request failed", fields...)
		} else {
			ew.Log.Warn("request rejected", fields...)
		}
	}
	writeJSON(w, status, body)
}
