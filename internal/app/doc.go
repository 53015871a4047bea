// Package app provides the orchestration layer for bookdash.
//
// # Overview
//
// This package is the composition root. It loads configuration, builds the
// ambient stack (logging, tracing, metrics, response cache), connects the
// book API client to the list controller, starts background polling and
// finally hands control to the terminal UI.
//
// # Components
//
//   - app.go: Run and the cache selection helper
//   - poller.go: ticker goroutine that refreshes the current page
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          defaults, toml, .env, BOOKDASH_* env
//	       ├─────> telemetry.NewLogger()  JSON log file
//	       ├─────> telemetry.InitTracing() OTLP exporter when configured
//	       ├─────> metrics.NewServer()    /metrics and /health
//	       ├─────> books.NewClient()      retry, cache tags, spans
//	       ├─────> dashboard.New()        optimistic list controller
//	       ├─────> StartPoller()          background refresh
//	       └─────> ui.Run()               TUI (blocks)
//
// # Polling Behavior
//
// The poller ticks at the configured interval (default 30 seconds). A tick is
// skipped while a refresh or create is in flight or while an error toast is
// shown, so a failed request is not retried behind the user's back. Poll
// failures are logged at debug level and never surface in the UI.
//
// # Error Handling
//
// Run returns an error only for startup failures: a missing API URL, an
// unreadable config file or a logger that cannot open its file. An
// unreachable redis falls back to the in-memory cache and a metrics listener
// that cannot bind is logged and skipped.
//
// # Usage Example
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := app.Run(ctx, app.Options{PollEvery: 10}); err != nil {
//		log.Fatalf("bookdash failed: %v", err)
//	}
package app
