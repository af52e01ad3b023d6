package session

import (
	"math/rand"
	"time"
)

// Delay returns how long to wait before connect retry n (1-based). The
// delay grows by Multiplier per retry and never exceeds MaxDelay, jitter
// included. With Jitter set it is drawn from [d/2, d).
func (b BackoffConfig) Delay(n int, rng *rand.Rand) time.Duration {
	if b.InitialDelay <= 0 {
		return 0
	}
	mult := max(b.Multiplier, 1.0)
	d := float64(b.InitialDelay)
	for i := 1; i < n; i++ {
		d *= mult
		if b.MaxDelay > 0 && d >= float64(b.MaxDelay) {
			d = float64(b.MaxDelay)
			break
		}
	}
	if b.Jitter && rng != nil {
		d = d/2 + rng.Float64()*d/2
	}
	return time.Duration(d)
}
