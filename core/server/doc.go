// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app from this Config: the listen port,
// the API key enforced by core/middleware/auth, the request body limit that
// bounds one sync batch, the lifetime of the inventory view cache, and the
// graceful shutdown timeout.
package server
