// Package resource implements the Controller for global limits and governance.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: result buffers and imprint indexes (non-blocking, fail-fast)
//   - Concurrency: imprint write-back workers
//   - IO: rate-limit background writes so they do not starve selections
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded. A Reservation
// grows in steps, which is how a result buffer accounts for its doublings:
//
//	r, err := rc.Reserve(estimate * 8)
//	if err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer r.Release()
//
// # Background Worker Limits
//
//	if err := rc.AcquireBackground(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseBackground()
//
// # IO Rate Limiting
//
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//
// # Nil Safety
//
// All Controller methods handle a nil receiver gracefully - they become no-ops.
package resource
