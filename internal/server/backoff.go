package server

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// BackoffPolicy bounds reconnect attempts
type BackoffPolicy struct {
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64 // +/- fraction of each interval
	MaxRetries          int     // 0 means unlimited
}

// DefaultBackoffPolicy returns the policy used when nothing is configured
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		InitialInterval:     time.Second,
		MaxInterval:         time.Minute,
		Multiplier:          2,
		RandomizationFactor: 0.2,
		MaxRetries:          10,
	}
}

// NewBackOff builds the reconnect schedule. It never stops on elapsed time,
// only when MaxRetries is used up or ctx is done.
func (p BackoffPolicy) NewBackOff(ctx context.Context) backoff.BackOffContext {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.InitialInterval
	expo.MaxInterval = p.MaxInterval
	expo.Multiplier = p.Multiplier
	expo.RandomizationFactor = p.RandomizationFactor
	expo.MaxElapsedTime = 0
	expo.Reset()

	var b backoff.BackOff = expo
	if p.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxRetries))
	}
	return backoff.WithContext(b, ctx)
}
