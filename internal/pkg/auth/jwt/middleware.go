package jwt

import (
	"context"
	"net/http"
	"strings"

	"biochat/internal/pkg/logx"
)

type contextKey string

// ContextAuthPayloadKey is the context key holding the parsed *Payload.
const ContextAuthPayloadKey contextKey = "auth_payload"

// QueryTokenKey is the query parameter accepted in place of the Authorization header.
// Browsers cannot set headers on WebSocket upgrades.
const QueryTokenKey = "token"

// IdentityExtractorMiddleware parses a bearer token (or the token query parameter) and
// injects its Payload into the request context. Missing or invalid tokens leave the
// request anonymous; rejection is up to downstream handlers.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided, treating as anonymous", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), payload)))
		})
	}
}

// WithPayload returns a copy of ctx carrying payload.
func WithPayload(ctx context.Context, payload *Payload) context.Context {
	return context.WithValue(ctx, ContextAuthPayloadKey, payload)
}

// GetPayloadFromContext returns the identity payload, or nil for anonymous requests.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)
	if !ok {
		return nil
	}
	return payload
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	return r.URL.Query().Get(QueryTokenKey)
}
