// Package operation waits for provider operations to reach a terminal state.
//
// A Poller repeatedly fetches an operation's status, sleeping between
// observations for the interval its backoff policy returns. The default
// policy is a constant one second interval with no attempt limit, so Wait
// only returns once the operation is Done or the gateway reports an error.
package operation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/jbweber/gcevm/internal/provider"
)

// DefaultInterval is the fixed delay between status polls.
const DefaultInterval = time.Second

var (
	// ErrPollLimitReached is returned when WithMaxAttempts is set and the
	// operation is still not Done after that many polls.
	ErrPollLimitReached = errors.New("operation did not finish within the poll limit")

	// ErrPollingStopped is returned when the policy returns backoff.Stop.
	ErrPollingStopped = errors.New("polling stopped by policy")
)

// StatusGetter fetches the current status of an operation.
//
// In production, this is satisfied by *gce.Client.
type StatusGetter interface {
	GetOperationStatus(ctx context.Context, h provider.OperationHandle) (provider.OperationStatus, error)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// timerSleeper is the real Sleeper.
type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Result is the outcome of a successful Wait.
type Result struct {
	// Status is the final, terminal status.
	Status provider.OperationStatus
	// Attempts is the number of status polls performed.
	Attempts int
}

// Option configures a Poller.
type Option func(*Poller)

// WithPolicy sets the policy that yields the delay before each re-poll.
func WithPolicy(b backoff.BackOff) Option {
	return func(p *Poller) { p.policy = b }
}

// WithInterval sets a constant delay between polls.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.policy = backoff.NewConstantBackOff(d) }
}

// WithSleeper replaces the real timer, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(p *Poller) { p.sleeper = s }
}

// WithMaxAttempts bounds the number of polls. Zero or less means unbounded.
func WithMaxAttempts(n int) Option {
	return func(p *Poller) { p.maxAttempts = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// Poller waits for operations.
type Poller struct {
	client      StatusGetter
	policy      backoff.BackOff
	sleeper     Sleeper
	maxAttempts int
	logger      *zap.Logger
}

// New creates a Poller over client.
func New(client StatusGetter, opts ...Option) *Poller {
	p := &Poller{
		client:  client,
		policy:  backoff.NewConstantBackOff(DefaultInterval),
		sleeper: timerSleeper{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait polls h until it is Done.
//
// A Done status carrying an error detail yields *provider.OperationFailedError.
// Errors from the gateway are returned as they are, without retrying.
func (p *Poller) Wait(ctx context.Context, h provider.OperationHandle) (Result, error) {
	log := p.logger.With(zap.String("operation", h.Name), zap.String("zone", h.Zone))
	log.Info("Waiting for operation to finish...")

	p.policy.Reset()
	attempts := 0
	for {
		status, err := p.client.GetOperationStatus(ctx, h)
		attempts++
		if err != nil {
			return Result{Attempts: attempts}, err
		}

		if status.IsTerminal() {
			if status.Failed() {
				return Result{Status: status, Attempts: attempts}, &provider.OperationFailedError{
					Operation: h,
					Detail:    *status.Error,
				}
			}
			log.Info("done.", zap.Int("polls", attempts))
			return Result{Status: status, Attempts: attempts}, nil
		}

		if p.maxAttempts > 0 && attempts >= p.maxAttempts {
			return Result{Status: status, Attempts: attempts},
				fmt.Errorf("operation %s still %s after %d polls: %w", h.Name, status.Kind, attempts, ErrPollLimitReached)
		}

		next := p.policy.NextBackOff()
		if next == backoff.Stop {
			return Result{Status: status, Attempts: attempts},
				fmt.Errorf("operation %s still %s: %w", h.Name, status.Kind, ErrPollingStopped)
		}

		log.Debug("operation not done", zap.Stringer("status", status.Kind), zap.Duration("next", next))
		if err := p.sleeper.Sleep(ctx, next); err != nil {
			return Result{Status: status, Attempts: attempts}, err
		}
	}
}
