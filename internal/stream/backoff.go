package stream

import (
	"math"
	"math/rand"
	"time"
)

// backoffDelay returns the reconnect delay for the given attempt: base
// doubled per attempt, capped at max, with ±25% jitter to avoid thundering
// herds against a recovering provider.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if max <= 0 {
		max = 60 * time.Second
	}

	delay := float64(base) * math.Pow(2, float64(attempt))
	if delay > float64(max) {
		delay = float64(max)
	}

	jitter := 1.0 + (rand.Float64()*0.5 - 0.25)
	return time.Duration(delay * jitter)
}
