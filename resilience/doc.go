// Package resilience provides the bounded retry used by network probes.
//
// A probe may be attempted a fixed number of times with a fixed delay
// between attempts. There is no jitter on the constant strategy and no
// retry across invocations; repeated invocations are the operator's job.
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  3,
//	    InitialDelay: time.Second,
//	})
//
//	err := retry.Execute(ctx, func(ctx context.Context) error {
//	    return probeOnce(ctx)
//	})
package resilience
