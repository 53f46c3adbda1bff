// Package apiclient é o cliente Go da API REST (/api/*).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

const (
	MsgTimeout = "Request timed out. Please try again."
	MsgNetwork = "Network connection issue. Please check your internet connection and try again."
	MsgUnknown = "Something went wrong"
	msgParse   = "Failed to parse response"
)

// Error é o erro normalizado devolvido por todas as chamadas.
// Status é 0 quando não houve resposta HTTP.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// IsTimeout indica se a requisição estourou o prazo
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == 0 && e.Message == MsgTimeout
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }
func WithTimeout(d time.Duration) Option  { return func(c *Client) { c.timeout = d } }
func WithLogger(l *zap.Logger) Option     { return func(c *Client) { c.log = l } }

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
}

// New cria o cliente; baseURL sem o sufixo /api (ex.: https://api.example.com)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Do executa METHOD /api<endpoint>. body nil não envia corpo; out nil descarta a resposta.
func (c *Client) Do(ctx context.Context, method, endpoint, token string, body, out any) error {
	url := c.baseURL + "/api" + endpoint

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("api request", zap.String("method", method), zap.String("url", url), zap.Bool("has_body", body != nil))

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(ctx, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.transportError(ctx, url, err)
	}
	c.log.Debug("api response", zap.Int("status", resp.StatusCode), zap.String("url", url))

	isJSON := strings.Contains(resp.Header.Get("Content-Type"), "application/json")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(raw, isJSON)
		c.log.Warn("api request failed", zap.Int("status", resp.StatusCode), zap.String("error", msg))
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if !isJSON {
		// resposta em texto só serve para destino string
		if s, ok := out.(*string); ok {
			*s = string(raw)
			return nil
		}
		return &Error{Status: resp.StatusCode, Message: msgParse}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: msgParse, Err: err}
	}
	return nil
}

func (c *Client) transportError(ctx context.Context, url string, err error) error {
	var ne net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		c.log.Warn("api request timed out", zap.String("url", url), zap.Duration("timeout", c.timeout))
		return &Error{Message: MsgTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	c.log.Warn("api network error", zap.String("url", url), zap.Error(err))
	return &Error{Message: MsgNetwork, Err: err}
}

// errorMessage: campo "error" do JSON, texto cru ou mensagem genérica
func errorMessage(raw []byte, isJSON bool) string {
	if isJSON {
		var body struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return msgParse
		}
		if body.Error != "" {
			return body.Error
		}
		return MsgUnknown
	}
	if s := strings.TrimSpace(string(raw)); s != "" {
		return s
	}
	return MsgUnknown
}
