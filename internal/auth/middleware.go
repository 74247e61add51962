package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mnavarro/notas-api/internal/apperror"
	"github.com/mnavarro/notas-api/internal/repository"
)

// contextKey is an unexported type for context keys in this package.
// A package-private key type means no other package can read or shadow the
// values this middleware stores — plain string keys offer no such guarantee.
type contextKey string

const userIDKey contextKey = "userID"

// unauthorizedBody is the single response every authentication failure
// produces. Missing header, malformed token, expired token, unknown user —
// the wire cannot tell them apart, which stops account enumeration. The
// distinction lives only in the server log.
const unauthorizedBody = `{"ok":false,"mensaje":"No autorizado"}`

// RequireAuth returns the middleware that gates protected routes.
//
// Per request it walks a fixed sequence, stopping at the first failure:
//
//	no Authorization header        → 401
//	header not "Bearer <token>"    → 401
//	token invalid/expired/forged   → 401
//	token subject not in the DB    → 401 (the account may have been removed
//	                                      after the token was issued)
//	otherwise                      → userID attached to the context, next
//
// The middleware only reads: it never mutates any store, so a rejected
// request has no side effects whatsoever.
func RequireAuth(tokens *TokenService, users repository.UserRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				logger.Debug("auth: missing bearer token",
					slog.String("path", r.URL.Path),
				)
				writeUnauthorized(w)
				return
			}

			claims, err := tokens.Validate(tokenStr)
			if err != nil {
				// Log the category (expired vs malformed vs forged);
				// the response stays uniform.
				logger.Debug("auth: token rejected",
					slog.String("path", r.URL.Path),
					slog.String("reason", rejectionReason(err)),
				)
				writeUnauthorized(w)
				return
			}

			// The token is cryptographically valid, but the subject must
			// still exist — tokens outlive account deletion.
			if _, err := users.GetUserByID(r.Context(), claims.UserID); err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					logger.Warn("auth: token subject no longer exists",
						slog.String("userID", claims.UserID),
					)
				} else {
					logger.Error("auth: user lookup failed",
						slog.String("userID", claims.UserID),
						slog.String("error", err.Error()),
					)
				}
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID.
// Returns ("", false) when the request did not pass through RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(unauthorizedBody))
}

// rejectionReason maps a Validate error to a short label for logs.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
