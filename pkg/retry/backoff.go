package retry

import "github.com/cenkalti/backoff/v4"

func newBackOff(p Policy) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.MaxElapsedTime = p.MaxElapsedTime
	exp.RandomizationFactor = p.Jitter
	exp.Reset()
	return exp
}
