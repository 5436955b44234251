package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/symptom-insight-server/internal/domain"
	"github.com/symptom-insight-server/internal/metrics"
)

const (
	defaultRateLimit = 10       // requests per second
	maxResponseBytes = 20 << 20 // generated images arrive base64 encoded
)

// serviceClient holds what every remote client shares: endpoint, key,
// bounded HTTP client, rate limiter and circuit breaker.
type serviceClient struct {
	name       string
	endpoint   string
	apiKey     string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

func newServiceClient(name string, config domain.ServiceConfig, defaults domain.ServiceConfig, logger *logrus.Logger) *serviceClient {
	if config.Endpoint == "" {
		config.Endpoint = defaults.Endpoint
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RateLimit == 0 {
		config.RateLimit = defaultRateLimit
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &serviceClient{
		name:     name,
		endpoint: config.Endpoint,
		apiKey:   config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		breaker:   NewCircuitBreaker(name, DefaultCircuitBreakerConfig(), logger),
		logger:    logger,
	}
}

// Name returns the service name used in logs and metrics.
func (c *serviceClient) Name() string {
	return c.name
}

// Endpoint returns the configured service URL.
func (c *serviceClient) Endpoint() string {
	return c.endpoint
}

// Breaker exposes the client's circuit breaker for health reporting.
func (c *serviceClient) Breaker() *gobreaker.CircuitBreaker {
	return c.breaker
}

// do sends the request produced by build through the rate limiter and the
// breaker and returns the body of a 200 response.
func (c *serviceClient) do(ctx context.Context, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, domain.NewNetworkError(c.name, fmt.Errorf("rate limit wait failed: %w", err))
	}

	started := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, domain.NewNetworkError(c.name, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, domain.NewNetworkError(c.name, fmt.Errorf("failed to read response: %w", err))
		}

		if resp.StatusCode != http.StatusOK {
			return nil, upstreamError(c.name, resp.StatusCode, body)
		}
		return body, nil
	})

	switch {
	case err == nil:
		metrics.ObserveUpstream(c.name, metrics.OutcomeSuccess, started)
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.ObserveUpstream(c.name, metrics.OutcomeCircuitOpen, started)
	default:
		metrics.ObserveUpstream(c.name, metrics.OutcomeError, started)
	}

	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"service":  c.name,
			"duration": time.Since(started).String(),
			"error":    err.Error(),
		}).Warn("Upstream request failed")
		return nil, breakerError(c.name, err)
	}

	c.logger.WithFields(logrus.Fields{
		"service":  c.name,
		"duration": time.Since(started).String(),
	}).Debug("Upstream request succeeded")

	return result.([]byte), nil
}

// upstreamError carries the body's top-level "message" when there is one.
func upstreamError(service string, status int, body []byte) error {
	var payload struct {
		Message any `json:"message"`
	}
	message := ""
	if json.Unmarshal(body, &payload) == nil && payload.Message != nil {
		message = fmt.Sprint(payload.Message)
	}
	return domain.NewUpstreamError(service, status, message)
}

// Describe renders a client error as the short text stored in result error
// fields.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrCircuitOpen) {
		return fmt.Sprintf("Service unavailable: %s", err.Error())
	}

	var resErr *domain.ResolutionError
	if errors.As(err, &resErr) {
		switch resErr.Kind {
		case domain.KindUpstream:
			if resErr.Message != "" {
				return fmt.Sprintf("API error: %s", resErr.Message)
			}
			return fmt.Sprintf("API error: %d", resErr.StatusCode)
		case domain.KindParse:
			return "Invalid JSON response from API"
		case domain.KindNetwork:
			return fmt.Sprintf("Request failed: %v", resErr.Err)
		}
	}

	return fmt.Sprintf("Request failed: %v", err)
}
