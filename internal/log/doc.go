// Package log provides the application logger, built on top of the standard
// slog package.
//
// A zero node count in the results file makes the derived per-node throughput
// ±Inf or NaN. encoding/json cannot represent those values, so slog's JSON
// handler would emit an error string in place of the attribute. The
// FiniteHandler rewrites non-finite float attributes to the strings "+Inf",
// "-Inf" and "NaN" before they reach the underlying handler, for text and JSON
// output alike.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Warn("non-finite per-node throughput", "row", 3, "value", math.Inf(1))
//	// level=WARN msg="non-finite per-node throughput" row=3 value=+Inf
package log
