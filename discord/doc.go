// Package discord is a client for the Discord REST API (v10).
//
// The Client is the only place requests are issued. Every call consults a
// shared circuit breaker and rate-limit tracker, retries transport failures
// with linear backoff, and waits out live 429 responses before retrying.
// A pre-emptive local block fails fast with ErrRateLimited instead.
//
// Resource references (GuildRef, ChannelRef, MemberRef, RoleRef) map one
// domain verb to one REST call. Service layers best-effort helpers on top
// that degrade to neutral values when Discord rejects a request.
//
// Errors:
//
//   - ErrCircuitOpen: the breaker is open; back off entirely.
//   - ErrRateLimited: a previous response exhausted the quota.
//   - *APIError: Discord answered with a non-2xx status.
//   - ErrMaxRetriesExceeded: every attempt failed; wraps the last cause.
package discord
