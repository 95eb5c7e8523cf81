package retry

import (
	"time"

	"github.com/jzx17/goexecutor/pkg/types"
)

// Condition decides whether a submission error is worth another attempt
type Condition func(error) bool

// Policy describes how rejected submissions are retried
type Policy struct {
	// MaxAttempts is the total number of submissions, including the first
	MaxAttempts int

	// Backoff computes the wait between attempts; nil means no wait
	Backoff BackoffStrategy

	// Condition selects retryable errors; nil means OnRejected
	Condition Condition
}

// DefaultPolicy retries rejections three times with jittered exponential backoff
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff: NewExponentialBackoff(10*time.Millisecond,
			WithMaxDelay(time.Second),
			WithJitter(EqualJitter)),
		Condition: OnRejected,
	}
}

// OnRejected retries only saturation rejections. Shutdown, nil tasks and
// an unstarted executor are permanent.
func OnRejected(err error) bool {
	return types.IsRejected(err)
}

func (p Policy) shouldRetry(err error, attempt int) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	if p.Condition == nil {
		return OnRejected(err)
	}
	return p.Condition(err)
}

func (p Policy) nextDelay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff.NextDelay(attempt)
}
