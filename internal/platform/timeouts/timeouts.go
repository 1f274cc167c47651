// Package timeouts defines shared timeout constants for the HTTP and
// WebSocket surfaces.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// FrameWrite caps a single WebSocket frame write so a stalled client cannot
// hold a session's writer lock.
const FrameWrite = 5 * time.Second
