// Package telemetry groups the face editor's observability packages.
//
// # Operational Metrics (telemetry/metrics)
//
// Operational metrics capture system health and editor usage:
//   - Active sessions and refused connections
//   - Edit and import outcomes by error code
//   - Face codes emitted after debounce
//
// Tracing lives in platform/otel; logging is configured by platform/logging.
package telemetry
