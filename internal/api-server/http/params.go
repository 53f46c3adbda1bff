package httpapi

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/radieske/points-bet-platform/internal/apperr"
)

// intQuery lê um inteiro da query string limitado a [min, max]
func intQuery(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, apperr.Validation(name + " must be an integer greater than or equal to " + strconv.Itoa(min))
	}
	if n > max {
		n = max
	}
	return n, nil
}

func boolQuery(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation(name + " must be true or false")
	}
	return &b, nil
}

// validID indica se o id tem formato de UUID
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
