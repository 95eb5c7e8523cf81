// Package retry resubmits tasks that a saturated executor rejected.
//
// The executor never retries on its own: a full pool and queue fail the
// submission with a *types.RejectedError and leave the decision to the
// caller. A Retrier makes that decision from a Policy.
//
// Backoff strategies:
//   - FixedBackoff: the same delay every time
//   - ExponentialBackoff: delay grows by a multiplier up to a cap
//
// Jitter (FullJitter, EqualJitter) spreads resubmissions out so rejected
// callers do not come back in lockstep.
//
// Basic usage:
//
//	r := retry.New(retry.Policy{
//		MaxAttempts: 5,
//		Backoff:     retry.NewExponentialBackoff(20*time.Millisecond, retry.WithJitter(retry.FullJitter)),
//	}, retry.WithLogger(logger))
//
//	h, err := r.Submit(ctx, exec, task)
//	if types.IsRejected(err) {
//		// still saturated after every attempt
//	}
//
// Only rejections are retried by default. Shutdown and other permanent
// errors are returned after the first attempt.
package retry
