package database

import (
	"log"
	"strings"
	"time"
)

// RetryPolicy retries an operation when its error is classified as a
// transient infrastructure condition rather than a real failure.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt
	MaxRetries int
	// Backoff returns the delay before the given retry (1-based)
	Backoff func(retry int) time.Duration
	// Retryable classifies errors; nil means nothing is retried
	Retryable func(error) bool
}

// LinearBackoff returns a backoff function with delays step, 2*step, 3*step, ...
func LinearBackoff(step time.Duration) func(int) time.Duration {
	return func(retry int) time.Duration {
		return time.Duration(retry) * step
	}
}

// Do runs op, retrying per the policy. The last error is returned.
func (p RetryPolicy) Do(op func() error) error {
	err := op()
	for retry := 1; retry <= p.MaxRetries; retry++ {
		if err == nil || p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		delay := p.Backoff(retry)
		log.Printf("transient store error, retrying in %v (%d/%d): %v", delay, retry, p.MaxRetries, err)
		time.Sleep(delay)
		err = op()
	}
	return err
}

// IsSchemaCacheError reports whether err is the transient "schema cache not
// yet updated" condition seen right after schema migrations.
func IsSchemaCacheError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "schema cache")
}
