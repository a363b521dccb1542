package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codelenshq/codelens/internal/models"
)

func shortenRetryDelay(t *testing.T) {
	t.Helper()
	original := retryBaseDelay
	retryBaseDelay = time.Millisecond
	t.Cleanup(func() { retryBaseDelay = original })
}

func TestRetryTransient(t *testing.T) {
	shortenRetryDelay(t)

	transientErr := errors.New("rate limited")
	permanentErr := errors.New("bad request")
	isTransient := func(err error) bool { return errors.Is(err, transientErr) }

	t.Run("Succeeds first try", func(t *testing.T) {
		attempts := 0
		err := retryTransient(context.Background(), isTransient, func() error {
			attempts++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("Retries transient failures until success", func(t *testing.T) {
		attempts := 0
		err := retryTransient(context.Background(), isTransient, func() error {
			attempts++
			if attempts < 3 {
				return transientErr
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("Non-transient failure stops immediately", func(t *testing.T) {
		attempts := 0
		err := retryTransient(context.Background(), isTransient, func() error {
			attempts++
			return permanentErr
		})
		assert.ErrorIs(t, err, permanentErr)
		assert.Equal(t, 1, attempts)
	})

	t.Run("Exhaustion surfaces as transient provider error", func(t *testing.T) {
		attempts := 0
		err := retryTransient(context.Background(), isTransient, func() error {
			attempts++
			return transientErr
		})
		var providerErr *models.ProviderTransientError
		assert.ErrorAs(t, err, &providerErr)
		assert.Equal(t, maxProviderRetries, attempts)
	})

	t.Run("Cancelled context ends the wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := retryTransient(ctx, isTransient, func() error {
			return transientErr
		})
		var providerErr *models.ProviderTransientError
		assert.ErrorAs(t, err, &providerErr)
		assert.ErrorIs(t, providerErr.Err, context.Canceled)
	})
}
