// Package retry wraps flaky external calls with exponential backoff and jitter.
//
// It exists mostly for the Google Sheets API, which regularly answers with rate
// limits (429), transient server errors (5xx) or dropped connections. Errors are
// classified as retryable by status code or by a transient-network message
// pattern; everything else fails immediately.
//
// # Backoff
//
// The delay before retry n (1-based) is min(MaxDelay, BaseDelay * 2^(n-1)) plus a
// random jitter in [0, Jitter). Once Retries retries are exhausted the original
// error is returned wrapped in *Error, which records the label and attempt count.
//
// # Usage
//
//	exec := retry.New(cfg, logger)
//	err := exec.Do(ctx, "sheets.update id=42", func(ctx context.Context) error {
//	    return client.Update(ctx, rng, rows)
//	})
package retry
