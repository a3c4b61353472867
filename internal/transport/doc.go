// Package transport owns the HTTP client used to reach the coaching API.
//
// # Overview
//
// A Transport holds a mutable base URL and the *http.Client bound to it. The
// application creates exactly one Transport, configures it with the persisted
// server URL, and injects it into the API client. When the user edits the
// server URL the same Transport is reconfigured in place.
//
// # Configuration
//
//	tr := transport.New(transport.Options{Logger: logger, Metrics: metrics})
//	if err := tr.Configure("http://192.168.1.100:8000"); err != nil {
//		return err
//	}
//
// Configure normalizes the URL (default scheme http, path ending in exactly
// one "/") and is a no-op when the result equals the active base. Any other
// call rebuilds the client with:
//
//   - a connect timeout (dial and TLS handshake, default 15s)
//   - a longer read timeout (response headers, default 30s)
//   - a logging round tripper that tags requests with X-Request-ID
//
// # Concurrency
//
// Client may be called from any goroutine. Reconfiguration swaps the client
// under a lock; requests that already captured the previous client finish on
// it. Nothing is cancelled on reconfigure.
//
// # Errors
//
// Client returns ErrUninitialized before the first successful Configure.
// That indicates a wiring bug, and MustClient panics on it.
package transport
