package retry

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy computes the delay before a resubmission
type BackoffStrategy interface {
	// NextDelay returns the delay after the given failed attempt (1-based)
	NextDelay(attempt int) time.Duration
}

// FixedBackoff waits the same delay between attempts
type FixedBackoff struct {
	delay  time.Duration
	jitter JitterFunc
}

// NewFixedBackoff creates a fixed backoff strategy
func NewFixedBackoff(delay time.Duration, opts ...BackoffOption) *FixedBackoff {
	o := applyOptions(opts)
	return &FixedBackoff{
		delay:  delay,
		jitter: o.jitter,
	}
}

// NextDelay calculates the delay for the next attempt
func (b *FixedBackoff) NextDelay(attempt int) time.Duration {
	delay := b.delay
	if b.jitter != nil {
		delay = b.jitter(delay)
	}
	return delay
}

// ExponentialBackoff multiplies the delay after every attempt, up to maxDelay
type ExponentialBackoff struct {
	initialDelay time.Duration
	multiplier   float64
	maxDelay     time.Duration
	jitter       JitterFunc
}

// NewExponentialBackoff creates an exponential backoff strategy
func NewExponentialBackoff(initialDelay time.Duration, opts ...BackoffOption) *ExponentialBackoff {
	o := applyOptions(opts)

	b := &ExponentialBackoff{
		initialDelay: initialDelay,
		multiplier:   2.0,
		maxDelay:     30 * time.Second,
		jitter:       o.jitter,
	}
	if o.multiplier != nil {
		b.multiplier = *o.multiplier
	}
	if o.maxDelay != nil {
		b.maxDelay = *o.maxDelay
	}
	return b
}

// NextDelay calculates the delay for the next attempt
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	// Compare in float64 so large attempts cannot overflow the conversion
	delay := b.maxDelay
	if d := float64(b.initialDelay) * math.Pow(b.multiplier, float64(attempt-1)); d < float64(b.maxDelay) {
		delay = time.Duration(d)
	}

	if b.jitter != nil {
		delay = b.jitter(delay)
	}
	return delay
}

// JitterFunc randomizes a delay so rejected callers do not retry in lockstep
type JitterFunc func(time.Duration) time.Duration

// FullJitter returns a random delay in [0, delay)
func FullJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(delay)))
}

// EqualJitter returns delay/2 + random(0, delay/2)
func EqualJitter(delay time.Duration) time.Duration {
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + time.Duration(rand.Int63n(int64(half)))
}

// BackoffOption configures a backoff strategy
type BackoffOption func(*backoffOptions)

type backoffOptions struct {
	multiplier *float64
	maxDelay   *time.Duration
	jitter     JitterFunc
}

func applyOptions(opts []BackoffOption) backoffOptions {
	var o backoffOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMultiplier sets the growth factor (exponential backoff only)
func WithMultiplier(multiplier float64) BackoffOption {
	return func(o *backoffOptions) {
		o.multiplier = &multiplier
	}
}

// WithMaxDelay caps the delay (exponential backoff only)
func WithMaxDelay(maxDelay time.Duration) BackoffOption {
	return func(o *backoffOptions) {
		o.maxDelay = &maxDelay
	}
}

// WithJitter sets the jitter function
func WithJitter(jitter JitterFunc) BackoffOption {
	return func(o *backoffOptions) {
		o.jitter = jitter
	}
}
