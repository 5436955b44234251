package external

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/symptom-insight-server/internal/domain"
)

// ErrCircuitOpen is returned while a service's breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit open")

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	MaxRequests  uint32        `json:"max_requests"`
	Interval     time.Duration `json:"interval"`
	Timeout      time.Duration `json:"timeout"`
	MinRequests  uint32        `json:"min_requests"`
	FailureRatio float64       `json:"failure_ratio"`
}

// DefaultCircuitBreakerConfig trips after 60% failures over at least three
// calls and probes again after a minute.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxRequests:  5,
		Interval:     30 * time.Second,
		Timeout:      60 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

// NewCircuitBreaker builds a breaker that logs state changes. Upstream 4xx
// responses are answers, not outages, and do not count as failures.
func NewCircuitBreaker(name string, config CircuitBreakerConfig, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"service": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var resErr *domain.ResolutionError
			if errors.As(err, &resErr) && resErr.Kind == domain.KindUpstream {
				return resErr.StatusCode < http.StatusInternalServerError && resErr.StatusCode != http.StatusTooManyRequests
			}
			return false
		},
	})
}

// breakerError maps gobreaker rejections onto ErrCircuitOpen.
func breakerError(service string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %w", service, ErrCircuitOpen)
	}
	return err
}

// ServiceHealth represents the health status of an external service
type ServiceHealth struct {
	Service   string    `json:"service"`
	Healthy   bool      `json:"healthy"`
	State     string    `json:"state"`
	LastCheck time.Time `json:"last_check"`
}

// BreakerRegistry tracks the breakers of every configured client for the
// health endpoint.
type BreakerRegistry struct {
	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewBreakerRegistry creates an empty registry
func NewBreakerRegistry() *BreakerRegistry {
	return &BreakerRegistry{breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

// Register adds a named breaker.
func (r *BreakerRegistry) Register(service string, breaker *gobreaker.CircuitBreaker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakers[service] = breaker
}

// Health reports one entry per registered service. A service is healthy
// unless its breaker is open.
func (r *BreakerRegistry) Health() []ServiceHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	out := make([]ServiceHealth, 0, len(r.breakers))
	for name, breaker := range r.breakers {
		state := breaker.State()
		out = append(out, ServiceHealth{
			Service:   name,
			Healthy:   state != gobreaker.StateOpen,
			State:     state.String(),
			LastCheck: now,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}
