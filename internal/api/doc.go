// Package api hosts the HTTP server, middleware, and handlers for the quiz.
// Notable routes:
//   - GET /api/quiz serves one cached quiz entry.
//   - GET /healthz / readyz for Kubernetes probes; readyz reports cache depth.
//   - GET /metrics for Prometheus scraping.
//   - Everything else is served from the static asset directory.
package api
