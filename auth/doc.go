// Package auth guards the discordops operations endpoints.
//
// Two credentials are accepted: static API keys in the X-API-Key header
// and HS256 JWTs in the Authorization header. A Chain tries them in order
// and Middleware turns the result into an Identity on the
// request context, answering 401 otherwise. RequireRole narrows a route to
// identities holding a role.
//
// These credentials protect this service only; they are unrelated to the
// Discord bot token.
package auth
