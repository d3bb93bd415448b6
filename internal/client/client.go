package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	cb "github.com/daSkciN/estoque-app-front/pkg/circuitbreaker"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 4 << 20

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxFailures uint32
	OpenTimeout time.Duration
}

// APIClient talks to the remote inventory API. Every call goes through
// one circuit breaker; 4xx replies are reported but do not trip it.
type APIClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	breaker *cb.Breaker[[]byte]
	logger  *slog.Logger
}

func NewAPIClient(cfg Config, logger *slog.Logger) *APIClient {
	return NewAPIClientWithHTTP(cfg, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, logger)
}

func NewAPIClientWithHTTP(cfg Config, httpClient *http.Client, logger *slog.Logger) *APIClient {
	if logger == nil {
		logger = slog.Default()
	}
	bcfg := cb.DefaultConfig("inventory-api")
	if cfg.MaxFailures > 0 {
		bcfg.MaxFailures = cfg.MaxFailures
	}
	if cfg.OpenTimeout > 0 {
		bcfg.OpenTimeout = cfg.OpenTimeout
	}
	bcfg.IsSuccessful = func(err error) bool {
		var netErr *domain.NetworkError
		if errors.As(err, &netErr) {
			return netErr.StatusCode >= 400 && netErr.StatusCode < 500
		}
		return err == nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		http:    httpClient,
		breaker: cb.New[[]byte](bcfg, logger),
		logger:  logger,
	}
}

func (c *APIClient) BreakerState() string {
	return c.breaker.State()
}

func (c *APIClient) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%s: build request: %w", op, err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			req.Header.Set(middleware.RequestIDHeader, reqID)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, &domain.NetworkError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &domain.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: statusError(resp.StatusCode, data)}
		}
		if err != nil {
			return nil, &domain.NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
		}
		return data, nil
	})
	if err != nil {
		if cb.IsRejected(err) {
			err = &domain.NetworkError{Op: op, Err: err}
		}
		c.logger.WarnContext(ctx, "remote call failed", "op", op, "method", method, "path", path, "error", err)
		return nil, err
	}
	return data, nil
}

func statusError(code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(code)
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return errors.New(msg)
}

func decode[T any](op string, data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &domain.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out, nil
}
