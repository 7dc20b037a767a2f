package handler

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/bistro/internal/domain/auth"
)

// HeaderAPIKey is the request header carrying the raw API key.
const HeaderAPIKey = "api_key"

var errUnauthorized = errors.New("unauthorized")

// SecurityHandler authenticates requests by the HMAC-SHA256 of their API key.
type SecurityHandler struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewSecurityHandler returns a SecurityHandler using the given key repository
// and HMAC pepper.
func NewSecurityHandler(apikeys auth.Repository, pepper []byte) *SecurityHandler {
	return &SecurityHandler{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// Authenticate resolves key to a stored API key and stores it in the
// returned context.
func (s *SecurityHandler) Authenticate(ctx context.Context, key string) (context.Context, error) {
	if key == "" {
		return ctx, errUnauthorized
	}
	hash := auth.HashKey(s.pepper, key)

	info, err := s.apikeys.FindByHash(ctx, hex.EncodeToString(hash))
	if err != nil {
		if !errors.Is(err, auth.ErrKeyNotFound) {
			zctx.From(ctx).Error("API key lookup failed", zap.Error(err))
		}
		return ctx, errUnauthorized
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
		return ctx, errUnauthorized
	}
	return auth.WithKey(ctx, info), nil
}

// Require returns a middleware rejecting requests whose key is missing,
// unknown, or lacks scope with 401.
func (s *SecurityHandler) Require(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := s.Authenticate(r.Context(), r.Header.Get(HeaderAPIKey))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if key, _ := auth.KeyFromContext(ctx); !key.HasScope(scope) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
