package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/bonsplitser/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ReceiptIDKey is the context key for the receipt the caller's token grants access to.
	ReceiptIDKey contextKey = "receipt_id"
)

// GetReceiptID extracts the authorized receipt ID from the context.
// Returns empty string if not found.
func GetReceiptID(ctx context.Context) string {
	receiptID, _ := ctx.Value(ReceiptIDKey).(string)
	return receiptID
}

// WithClaims returns a context carrying the token claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ReceiptIDKey, claims.ReceiptID)
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// RequireAuth returns a middleware that validates receipt access tokens.
// It extracts the token from the Authorization header, validates it, and adds
// the receipt ID and participants to the request context. Handlers still have
// to check that the requested receipt matches GetReceiptID.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			tokenString, err := bearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			// Validate token
			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			// Call the next handler with enriched context
			return next(WithClaims(ctx, claims), req)
		}
	}
}
