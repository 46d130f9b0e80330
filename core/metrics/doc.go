// Package metrics exposes Prometheus metrics for sync passes and the HTTP API.
//
// Sync counters are fed by the reconcile engine through ObserveSync; HTTP
// request counters are fed by Middleware. Handler serves them on /metrics.
package metrics
