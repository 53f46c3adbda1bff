// Package supabase é o cliente HTTP do BaaS: PostgREST (/rest/v1), RPC e
// GoTrue (/auth/v1). Toda chamada usa a service key do servidor.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
	HTTPClient *http.Client
	Retry      RetryConfig
}

// Client é seguro para uso concorrente
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	retry      RetryConfig

	Auth *AuthClient
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase: URL is required")
	}
	if cfg.ServiceKey == "" {
		return nil, errors.New("supabase: service key is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	retry := cfg.Retry
	if retry.MaxRetries == 0 && retry.InitialBackoff == 0 {
		retry = DefaultRetryConfig()
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		httpClient: hc,
		retry:      retry,
	}
	c.Auth = &AuthClient{c: c, Admin: &AdminClient{c: c}}
	return c, nil
}

// RPC invoca uma função remota e decodifica o retorno em out (pode ser nil)
func (c *Client) RPC(ctx context.Context, fn string, args any, out any) error {
	if args == nil {
		args = map[string]any{}
	}
	body, err := c.send(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/rpc/" + fn,
		body:   args,
	})
	if err != nil {
		return err
	}
	return decode(body, out)
}

// Ping consulta o health do GoTrue; usado pelo /healthz
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.send(ctx, request{method: http.MethodGet, path: "/auth/v1/health"})
	return err
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
	bearer  string // token do usuário; vazio usa a service key
}

// send executa a requisição com retry em 429/5xx e falhas de rede.
// Respostas >= 400 viram *Error.
func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	var payload []byte
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("supabase: marshal body: %w", err)
		}
		payload = b
	}

	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.retry.backoff(attempt)); err != nil {
				return nil, err
			}
		}

		status, body, err := c.do(ctx, r, u, payload)
		if err != nil {
			if ctx.Err() != nil || !idempotent(r.method) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if status >= 400 {
			apiErr := parseError(status, body)
			if c.retry.retryable(status) && (idempotent(r.method) || status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable) {
				lastErr = apiErr
				continue
			}
			return nil, apiErr
		}
		return body, nil
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, r request, u string, payload []byte) (int, []byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("supabase: create request: %w", err)
	}

	bearer := r.bearer
	if bearer == "" {
		bearer = c.serviceKey
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("supabase: %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("supabase: read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// POST não é repetido após falha de rede; só quando o servidor recusou sem processar
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

func decode(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("supabase: decode response: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
