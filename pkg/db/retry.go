package db

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
)

const (
	retryAttempts = 3
	retryBase     = 25 * time.Millisecond
)

// WithConflictRetry runs fn, retrying a bounded number of times when it
// surfaces a retryable conflict (a lost conditional-update race or a
// serialization failure). Non-retryable errors pass through untouched.
func WithConflictRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(retryAttempts, retry.NewExponential(retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return retry.RetryableError(err)
		}
		return err
	})
}
