// Package server exposes the compliance checker over HTTP.
//
// # Routes
//
//	GET  /             service banner
//	GET  /health       liveness probe
//	POST /api/check    validate, render, evaluate and recommend one URL
//	POST /api/cleanup  release the renderer's connections
//	GET  /api/history  stored results for one URL
//	GET  /metrics      Prometheus exposition
//
// Every response passes through the same middleware chain: panic recovery,
// request IDs, access logging, security headers and CORS. /api/check is
// additionally rate limited per client IP.
//
// Error bodies use the {"detail": "..."} shape. In production, internal
// error text is never returned to the client.
package server
