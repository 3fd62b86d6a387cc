package discord

import (
	"crypto/sha256"
	"encoding/hex"
)

// TokenKind distinguishes bot tokens from user OAuth bearer tokens.
type TokenKind int

const (
	// TokenBot authenticates as the application's bot user.
	TokenBot TokenKind = iota + 1
	// TokenBearer authenticates as a user through an OAuth2 access token.
	TokenBearer
)

// String returns the Authorization scheme for the kind.
func (k TokenKind) String() string {
	switch k {
	case TokenBot:
		return "Bot"
	case TokenBearer:
		return "Bearer"
	default:
		return "unknown"
	}
}

// Credential is an immutable bot or bearer token.
type Credential struct {
	kind  TokenKind
	token string
}

// BotToken returns a bot credential.
func BotToken(token string) Credential {
	return Credential{kind: TokenBot, token: token}
}

// BearerToken returns a user bearer credential.
func BearerToken(token string) Credential {
	return Credential{kind: TokenBearer, token: token}
}

// Kind reports the token kind.
func (c Credential) Kind() TokenKind { return c.kind }

// IsZero reports whether c holds no usable token.
func (c Credential) IsZero() bool {
	return c.token == "" || (c.kind != TokenBot && c.kind != TokenBearer)
}

// Header returns the Authorization header value.
func (c Credential) Header() string {
	return c.kind.String() + " " + c.token
}

// String never reveals the token.
func (c Credential) String() string {
	if c.IsZero() {
		return "Credential(none)"
	}
	return "Credential(" + c.kind.String() + " " + c.fingerprint() + ")"
}

// fingerprint is a short stable digest that identifies c in logs.
func (c Credential) fingerprint() string {
	sum := sha256.Sum256([]byte(c.Header()))
	return hex.EncodeToString(sum[:4])
}
