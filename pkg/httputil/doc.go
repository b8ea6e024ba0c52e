// Package httputil provides HTTP utilities for the remote schema service
// client.
//
// # Retry
//
// [Retry] wraps an operation with automatic retry for transient failures.
// Only errors wrapped in [RetryableError] are retried; everything else is
// returned at once:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := req.Post(url)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    if httputil.StatusRetryable(resp.StatusCode()) {
//	        return &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode())}
//	    }
//	    return nil
//	})
//
// The delay doubles after each failed attempt. Cancelling ctx stops the wait
// between attempts.
//
// # Configuration
//
// [RetryWithBackoff] uses the defaults: 3 attempts, 1 second initial delay.
package httputil
