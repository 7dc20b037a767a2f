// Package auth models the API keys allowed to modify tasks.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"slices"

	"github.com/go-faster/errors"
)

// ScopeTasksWrite allows creating, updating and deleting tasks.
const ScopeTasksWrite = "tasks:write"

// ErrKeyNotFound is returned when no active key matches a hash.
var ErrKeyNotFound = errors.New("api key not found")

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// HasScope reports whether the key grants scope.
func (k *APIKeyInfo) HasScope(scope string) bool {
	return slices.Contains(k.Scopes, scope)
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}

// HashKey returns the HMAC-SHA256 of key under pepper. Keys are stored and
// looked up by this hash only.
func HashKey(pepper []byte, key string) []byte {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(key))
	return mac.Sum(nil)
}

// HashKeyHex is HashKey encoded as lowercase hex.
func HashKeyHex(pepper []byte, key string) string {
	return hex.EncodeToString(HashKey(pepper, key))
}

type keyCtx struct{}

// WithKey stores the authenticated key in ctx.
func WithKey(ctx context.Context, k *APIKeyInfo) context.Context {
	return context.WithValue(ctx, keyCtx{}, k)
}

// KeyFromContext returns the authenticated key, if any.
func KeyFromContext(ctx context.Context) (*APIKeyInfo, bool) {
	k, ok := ctx.Value(keyCtx{}).(*APIKeyInfo)
	return k, ok
}
