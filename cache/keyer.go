package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DefaultPrefix namespaces every key written by this module.
const DefaultPrefix = "discordops"

// Keyer derives a cache key from a namespace and an arbitrary input. Equal
// inputs must give equal keys, and keys must not reveal their inputs.
type Keyer interface {
	Key(namespace string, input any) (string, error)
}

// HashKeyer builds "<prefix>:<namespace>:<hash>" keys, where hash is the
// first 16 hex digits of the SHA-256 of the input's JSON encoding. Map
// keys are sorted by encoding/json, so map order does not matter.
type HashKeyer struct {
	// Prefix defaults to DefaultPrefix.
	Prefix string
}

// Key implements Keyer.
func (k HashKeyer) Key(namespace string, input any) (string, error) {
	b, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("cache: encode key input: %w", err)
	}
	sum := sha256.Sum256(b)
	return StateKey(k.Prefix, namespace) + ":" + hex.EncodeToString(sum[:8]), nil
}

// StateKey returns "<prefix>:<name>", the key of a named piece of shared
// state. An empty prefix means DefaultPrefix.
func StateKey(prefix, name string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + ":" + name
}

var _ Keyer = HashKeyer{}
