package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// CodeNoRows é o código PostgREST para .single() sem linha
const CodeNoRows = "PGRST116"

// Error é uma resposta de erro do BaaS (PostgREST ou GoTrue)
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
	Hint       string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.StatusCode, e.Message)
}

// IsNoRows indica consulta .Single() que não encontrou registro
func IsNoRows(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeNoRows
}

// IsAPIError indica que o BaaS respondeu (em oposição a falha de transporte)
func IsAPIError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// StatusCode retorna o status HTTP do erro ou 0 quando não houve resposta
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// parseError cobre os formatos do PostgREST ({code,message,details,hint})
// e do GoTrue ({error,error_description} ou {code,error_code,msg}).
func parseError(status int, body []byte) *Error {
	var raw struct {
		Code             json.RawMessage `json:"code"`
		ErrorCode        string          `json:"error_code"`
		Message          string          `json:"message"`
		Msg              string          `json:"msg"`
		Err              string          `json:"error"`
		ErrorDescription string          `json:"error_description"`
		Details          string          `json:"details"`
		Hint             string          `json:"hint"`
	}
	e := &Error{StatusCode: status}
	if err := json.Unmarshal(body, &raw); err != nil {
		e.Message = strings.TrimSpace(string(body))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	// code pode vir como string (PostgREST) ou número (GoTrue)
	var code string
	if len(raw.Code) > 0 && json.Unmarshal(raw.Code, &code) == nil {
		e.Code = code
	}
	if raw.ErrorCode != "" {
		e.Code = raw.ErrorCode
	}
	if e.Code == "" && raw.Err != "" && raw.ErrorDescription != "" {
		e.Code = raw.Err
	}

	switch {
	case raw.Message != "":
		e.Message = raw.Message
	case raw.Msg != "":
		e.Message = raw.Msg
	case raw.ErrorDescription != "":
		e.Message = raw.ErrorDescription
	case raw.Err != "":
		e.Message = raw.Err
	default:
		e.Message = http.StatusText(status)
	}
	e.Details = raw.Details
	e.Hint = raw.Hint
	return e
}
