// Package guard decorates a types.Store with a per-call timeout, a circuit
// breaker and a rate limiter. It never retries: a failed call is reported to
// the caller as is.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// ErrCircuitOpen is returned, wrapped in a *types.StoreError, while the
// breaker rejects calls.
var ErrCircuitOpen = errors.New("store circuit breaker is open")

// Config tunes the guard. Zero values select the defaults.
type Config struct {
	// Timeout bounds each store call. Zero means 5s; negative disables it.
	Timeout time.Duration
	// MaxFailures is the number of consecutive store failures that open
	// the circuit. Zero means 5.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before a trial call.
	// Zero means 30s.
	OpenTimeout time.Duration
	// Rate is the sustained calls per second. Zero disables limiting.
	Rate float64
	// Burst is the limiter bucket size. Zero means 1.
	Burst int
}

const (
	defaultTimeout     = 5 * time.Second
	defaultMaxFailures = 5
	defaultOpenTimeout = 30 * time.Second
)

// Store is a guarded types.Store.
type Store struct {
	next    types.Store
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ types.Store = (*Store)(nil)

// New wraps next. A nil logger discards state change messages.
func New(next types.Store, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	g := &Store{next: next, timeout: cfg.Timeout, logger: logger}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "silk-store",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: healthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	if cfg.Rate > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst)
	}
	return g
}

// State reports the breaker state: "closed", "half-open" or "open".
func (g *Store) State() string { return g.breaker.State().String() }

// healthy reports whether err leaves the store's health intact. Errors the
// store returns about its input are answers, not outages, and a caller
// cancelling its own call says nothing about the store.
func healthy(err error) bool {
	if err == nil {
		return true
	}
	for _, answer := range []error{
		context.Canceled,
		types.ErrNotFound,
		types.ErrInvalidID,
		types.ErrInvalidData,
		types.ErrInvalidFilter,
	} {
		if errors.Is(err, answer) {
			return true
		}
	}
	return false
}

// call runs fn through the limiter, the timeout and the breaker.
func call[T any](ctx context.Context, g *Store, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return zero, types.NewStoreError(op, err)
		}
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	v, err := g.breaker.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, types.NewStoreError(op, ErrCircuitOpen)
	}
	if err != nil {
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}

// exec adapts an error-only store call.
func exec(ctx context.Context, g *Store, op string, fn func(context.Context) error) error {
	_, err := call(ctx, g, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
