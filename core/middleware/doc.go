// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation on the X-API-Key header. Disabled when no key is
//     configured; /health and /metrics are exempt.
//   - rayid: a request id (RayID) for every request, taken from X-Ray-ID or
//     generated with uuid, stored in the context and echoed in the response.
//
// RayID is registered first so every log line of a request carries the id.
package middleware
