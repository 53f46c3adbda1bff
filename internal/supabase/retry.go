package supabase

import (
	"math"
	"net/http"
	"time"
)

// RetryConfig controla o backoff exponencial entre tentativas
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	// RetryableStatusCodes vazio usa 429/500/502/503/504
	RetryableStatusCodes []int
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// NoRetry desliga as novas tentativas (útil em testes)
func NoRetry() RetryConfig {
	return RetryConfig{MaxRetries: 0, InitialBackoff: time.Millisecond}
}

func (r RetryConfig) backoff(attempt int) time.Duration {
	mult := r.BackoffMultiplier
	if mult <= 0 {
		mult = 2
	}
	d := time.Duration(float64(r.InitialBackoff) * math.Pow(mult, float64(attempt-1)))
	if r.MaxBackoff > 0 && d > r.MaxBackoff {
		d = r.MaxBackoff
	}
	return d
}

func (r RetryConfig) retryable(status int) bool {
	codes := r.RetryableStatusCodes
	if len(codes) == 0 {
		codes = []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		}
	}
	for _, c := range codes {
		if c == status {
			return true
		}
	}
	return false
}
