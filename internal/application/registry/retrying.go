package registry

import (
	"context"
	"time"

	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/domain/shared"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/document"
	"github.com/alem-hub/institute-hub/pkg/circuitbreaker"
	"github.com/alem-hub/institute-hub/pkg/logger"
	"github.com/alem-hub/institute-hub/pkg/retry"
)

var _ institute.Repository = (*RetryingRepository)(nil)

// breakerCooldown is how long a tripped breaker fails calls before probing.
const breakerCooldown = 10 * time.Second

// RetryingRepository retries a remote repository's infrastructure failures
// and bounds every attempt by a timeout. Domain errors are returned on the
// first attempt. After repeated infrastructure failures a circuit breaker
// fails calls immediately until the cool-down has passed.
type RetryingRepository struct {
	inner   institute.Repository
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
}

// NewRetryingRepository wraps inner. A zero timeout leaves attempts unbounded.
func NewRetryingRepository(inner institute.Repository, attempts int, timeout time.Duration, log *logger.Logger) *RetryingRepository {
	if log == nil {
		log = logger.NewNop()
	}
	breaker := circuitbreaker.StorageBreaker(breakerCooldown,
		func(err error) bool { return !shared.IsDomain(err) },
		func(name string, from, to circuitbreaker.State) {
			log.Warn("storage circuit breaker changed state",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	)
	retrier := retry.StorageRetrier(attempts,
		retry.WithRetryIf(func(err error) bool {
			return !shared.IsDomain(err) && !circuitbreaker.IsRejected(err)
		}),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("storage call failed, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	)
	return &RetryingRepository{inner: inner, retrier: retrier, breaker: breaker, timeout: timeout}
}

// Load implements institute.Repository.
func (r *RetryingRepository) Load(ctx context.Context) (*institute.Institute, error) {
	var inst *institute.Institute
	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		return r.attempt(ctx, func(ctx context.Context) (err error) {
			inst, err = r.inner.Load(ctx)
			return err
		})
	})
	return inst, err
}

// Save implements institute.Repository.
func (r *RetryingRepository) Save(ctx context.Context, inst *institute.Institute) error {
	return r.retrier.Do(ctx, func(ctx context.Context) error {
		return r.attempt(ctx, func(ctx context.Context) error {
			return r.inner.Save(ctx, inst)
		})
	})
}

// History passes through to the wrapped repository when it keeps revisions.
func (r *RetryingRepository) History(ctx context.Context, limit int) ([]document.Revision, error) {
	lister, ok := r.inner.(RevisionLister)
	if !ok {
		return nil, ErrHistoryUnsupported
	}
	return retry.DoWithData(ctx, r.retrier, func(ctx context.Context) ([]document.Revision, error) {
		var revisions []document.Revision
		err := r.attempt(ctx, func(ctx context.Context) (err error) {
			revisions, err = lister.History(ctx, limit)
			return err
		})
		return revisions, err
	})
}

// attempt runs one call through the breaker under the per-attempt timeout.
func (r *RetryingRepository) attempt(ctx context.Context, fn func(context.Context) error) error {
	return r.breaker.Execute(ctx, func(ctx context.Context) error {
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		return fn(ctx)
	})
}
