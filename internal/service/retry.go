package service

import (
	"context"
	"time"

	"warehouse-receiving/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// RetryPolicy bounds how often a transient failure is retried.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy returns the policy used by the API server.
func DefaultRetryPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:      maxRetries,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
	}
}

type retryingFulfiller struct {
	next   Fulfiller
	policy RetryPolicy
	logger zerolog.Logger
}

// NewRetryingFulfiller retries next on transient failures. Each attempt is a
// fresh unit of work; business rejections and fatal errors return immediately.
func NewRetryingFulfiller(next Fulfiller, policy RetryPolicy, logger zerolog.Logger) Fulfiller {
	return &retryingFulfiller{
		next:   next,
		policy: policy,
		logger: logger.With().Str("service", "fulfillment_retry").Logger(),
	}
}

func (f *retryingFulfiller) Fulfill(ctx context.Context, req *model.FulfillmentRequest) (*model.FulfillmentResult, error) {
	var result *model.FulfillmentResult
	attempt := 0

	operation := func() error {
		attempt++
		r, err := f.next.Fulfill(ctx, req)
		if err != nil {
			if model.KindOf(err) == model.KindTransient {
				return err
			}
			return backoff.Permanent(err)
		}
		result = r
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("transient fulfillment failure, retrying")
	}

	if err := backoff.RetryNotify(operation, f.newBackOff(ctx), notify); err != nil {
		return nil, classifyStoreError(err)
	}

	return result, nil
}

func (f *retryingFulfiller) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if f.policy.InitialInterval > 0 {
		exp.InitialInterval = f.policy.InitialInterval
	}
	if f.policy.MaxInterval > 0 {
		exp.MaxInterval = f.policy.MaxInterval
	}
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(f.policy.MaxRetries)), ctx)
}
