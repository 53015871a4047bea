// Package telemetry sets up logging and tracing for bookdash.
//
// The TUI owns the terminal, so NewLogger writes JSON lines to a file instead
// of stderr. The log pane reads the same file back through logtail, which
// relies on the keys exported here.
//
// InitTracing installs the global TracerProvider and W3C propagators. The
// book client starts one span per API call and otelhttp propagates the
// context on outgoing requests.
package telemetry
