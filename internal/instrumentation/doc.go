// Package instrumentation provides OpenTelemetry metrics and tracing for the
// tarefista client.
//
// The Provider bundles a meter provider and a tracer provider configured from
// environment variables. Metrics cover backend API operations, authentication
// attempts and watch-mode refresh cycles, and can be exported either through
// the Prometheus exporter (scraped via the metrics server in watch mode) or
// the stdout exporter for development. Tracing is off by default and can be
// enabled with the stdout exporter for debugging API call flows.
//
// All recording methods are safe to call on a disabled provider: they degrade
// to no-ops, so callers never need to branch on whether instrumentation is
// active.
package instrumentation
