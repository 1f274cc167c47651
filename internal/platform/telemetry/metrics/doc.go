// Package metrics provides operational metrics collection.
//
// This package handles system observability for monitoring and alerting:
//
// # Metric Categories
//
//   - Sessions: active editing sessions and rejected connections
//   - Edits: slider edits and imports by result code
//   - Codes: face codes emitted after debounce or import
//
// # Integration
//
// Metrics are registered on a Prometheus registerer and exposed by the editor
// service on /metrics so standard monitoring infrastructure can scrape them.
package metrics
