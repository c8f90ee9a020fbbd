package retry

import (
	"context"
	"math/rand"
	"time"
)

type Operation = func() error

// Policy controls exponential backoff between attempts. Jitter spreads
// retries so clients hitting the same flaky endpoint do not sync up.
type Policy struct {
	MaxAttempts  int
	Multiplier   float64
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Jitter       time.Duration
}

func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts:  4,
		Multiplier:   2.0,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Jitter:       50 * time.Millisecond,
	}
}

type Retrier struct {
	policy *Policy
	rnd    *rand.Rand
}

func New(policy *Policy) *Retrier {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Retrier{
		policy: policy,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Do runs op until it succeeds, the attempt budget is spent, or the
// context is cancelled. The last operation error is returned when the
// budget runs out.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var err error
	delay := r.policy.InitialDelay

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt == r.policy.MaxAttempts {
			return err
		}

		wait := delay + time.Duration(r.rnd.Float64()*float64(r.policy.Jitter))
		if wait > r.policy.MaxDelay {
			wait = r.policy.MaxDelay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * r.policy.Multiplier)
		if delay > r.policy.MaxDelay {
			delay = r.policy.MaxDelay
		}
	}
	return err
}
