// Package ratelimit tracks Discord's rate-limit state across calls.
//
// A Tracker records every response's X-RateLimit-* headers and the
// request, error and 429 counters into a shared cache.Cache, and raises a
// short-lived block flag when a response reports no remaining quota. The
// gateway consults ShouldBlock before issuing a call.
//
// State is global to the store, not per route: all clients sharing a store
// share one view of the limit.
package ratelimit
