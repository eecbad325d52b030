// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - One-shot planning queries and DOT export
//   - Run submission and management
//   - Status queries
//   - Health checks
//   - Prometheus metrics
package http
