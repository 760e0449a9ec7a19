// Package resilience provides the reconnect backoff used by the native
// stream client.
//
// A Backoff tracks consecutive failures of one subscription and yields the
// delay before the next attempt:
//
//	b := resilience.NewBackoff(resilience.DefaultRetryConfig())
//	for {
//	    err := dial()
//	    if err == nil {
//	        b.Reset()
//	        continue
//	    }
//	    delay, ok := b.Next(err)
//	    if !ok {
//	        return err
//	    }
//	    if err := resilience.Sleep(ctx, delay); err != nil {
//	        return err
//	    }
//	}
package resilience
