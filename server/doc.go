// Package server runs the audiodesk HTTP surface: a Gin engine mounted on a
// ServeMux behind h2c, the standard middleware stack, the error boundary that
// turns handler errors into responses, and the /health endpoint.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - RequestID: request id generation and propagation into log context
//   - Tracing: one span per request, parented on incoming trace headers
//   - RequestLogger: status-levelled request logs and request metrics
//   - Recovery: panics become errors for the boundary
//   - CORS and BodySizeLimit: net/http middleware adapted with GinWrap
//   - Session: resolves the signed-in user into the request context
//   - RateLimit: per-user sliding window for expensive routes
//
// # Error boundary
//
// Handlers written as func(*gin.Context) error are adapted with Handle.
// ErrorBoundary writes JSON for API requests and the HTML error page
// otherwise.
package server
