// Package app provides the orchestration layer for the mycoach application.
//
// # Overview
//
// This package wires together configuration, logging, the HTTP transport,
// the screen state holders and the UI. It serves as the composition root
// where all dependencies are initialized and connected. The command line
// interface shares the same Bootstrap step but skips the UI and poller.
//
// # Architecture
//
//  1. Load config.toml and apply MYCOACH_* environment overrides
//  2. Load prefs.toml (theme and saved server URL)
//  3. Set up tint logging to stderr or the log file
//  4. Resolve the server URL and configure the transport
//  5. Build one state holder per screen over the API client
//  6. Optionally serve Prometheus metrics
//  7. Launch the background poller and run the TUI until exit
//
// # Components
//
//   - env.go: Bootstrap and the Env shared by the TUI and CLI
//   - app.go: Run, the TUI entry point
//   - poller.go: Background reload of the focused screen with backoff
//   - metrics.go: Optional /metrics endpoint
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> Bootstrap()          Config, prefs, logging, transport
//	       ├─────> screens.NewSet()     One holder per screen
//	       ├─────> serveMetrics()       When --metrics-addr is set
//	       ├─────> StartPoller()        Launch background reloads
//	       └─────> ui.Run()             Start TUI (blocks)
//
//	Background Poller Loop:
//	┌─────────────────────────────────────────┐
//	│ StartPoller() goroutine                 │
//	│  ├─> set.Focused()                      │
//	│  ├─> holder.Reload()                    │
//	│  │    └─> subscribers notified          │
//	│  └─> UI applies holder.Snapshot()       │
//	└─────────────────────────────────────────┘
//
// # Polling Behavior
//
// Only the screen on display is refreshed, at the configured poll_interval
// (default: 10 seconds). Consecutive failures double the wait up to 30
// seconds; the first success resets it. Failures are recorded in the
// holder's state, so the UI shows them without the poller's involvement.
//
// # Server URL
//
// The base URL is chosen in this order:
//
//   - the --server flag
//   - the server_url saved in prefs.toml
//   - server_url in config.toml, or MYCOACH_SERVER_URL
//   - http://192.168.1.100:8000
//
// Changing it from the settings dialog reconfigures the transport in place
// and saves it to prefs.toml. Requests already in flight finish against the
// old server.
//
// # Error Handling
//
// Fatal errors (returned from Run and Bootstrap):
//   - Invalid config.toml or an invalid duration in it
//   - A log file that cannot be opened
//   - A server URL that cannot be parsed
//
// Everything else, including an unreachable server, is recorded by the
// holders and shown on screen while polling continues.
//
// # Usage Example
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := app.Run(ctx, app.Options{ServerURL: "http://coach.local:8000"}); err != nil {
//		log.Fatalf("mycoach failed: %v", err)
//	}
package app
