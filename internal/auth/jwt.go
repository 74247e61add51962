// Package auth provides JWT token issuing/validation, password hashing, and
// the middleware that gates every protected route.
//
// AUTHENTICATION FLOW:
//  1. POST /api/auth/register stores the user with a bcrypt password hash
//  2. POST /api/auth/login verifies the password and issues a signed JWT
//  3. Every other /api route passes through RequireAuth, which reads the
//     "Authorization: Bearer <token>" header, validates the signature and
//     expiry, and confirms the token's subject still exists in the database
//
// The JWT is stateless: the server stores no session. Everything needed to
// authenticate a request (user ID, email, expiry) travels inside the signed
// token, and the HMAC signature makes it tamper-proof without a DB lookup.
// Rotating the signing secret invalidates every outstanding token — that is
// accepted behaviour, not a bug.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuer is embedded in every token and checked on validation, so tokens
// minted by some other app sharing the secret are still rejected.
const issuer = "notas-api"

// Validation failures, distinguished so the auth gate can log WHY a token
// was rejected. The wire response is a uniform 401 regardless — the caller
// must not be able to probe which check failed.
var (
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenMalformed = errors.New("auth: token malformed")
	ErrTokenInvalid   = errors.New("auth: token invalid")
)

// Claims is what a valid token proves about its bearer.
type Claims struct {
	UserID string
	Email  string
}

// tokenClaims is the on-the-wire JWT payload. The user ID rides in the
// standard "sub" claim; the email is a private claim kept for parity with
// the login response.
type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies access tokens with an HMAC-SHA256 secret.
// The expiry duration is configuration, injected once at startup.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a TokenService.
// The secret should be at least 32 bytes of random data in production
// (e.g. JWT_SECRET=$(openssl rand -hex 32)); anything under 16 characters
// is rejected outright.
func NewTokenService(secret string, expiry time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if expiry <= 0 {
		return nil, errors.New("auth: token expiry must be positive")
	}
	return &TokenService{secret: []byte(secret), expiry: expiry}, nil
}

// Generate creates and signs a token for the given user.
//
// The result is deterministic given secret, payload, and clock — no state
// is written anywhere. HS256 is symmetric (one key signs and verifies),
// which is all a single-server deployment needs.
func (s *TokenService) Generate(userID, email string) (string, error) {
	return s.generateAt(userID, email, time.Now(), s.expiry)
}

// GenerateWithDuration creates a token with a custom lifetime.
// Used by tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID, email string, d time.Duration) (string, error) {
	return s.generateAt(userID, email, time.Now(), d)
}

func (s *TokenService) generateAt(userID, email string, now time.Time, d time.Duration) (string, error) {
	c := tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string and returns its claims.
//
// Checks performed:
//   - the signature matches (nothing was tampered with)
//   - the token has not expired
//   - the issuer is ours
//   - the algorithm is HS256 — restricting the accepted algorithms blocks
//     the classic "alg: none" confusion attack
//
// The returned error wraps one of ErrTokenExpired / ErrTokenMalformed /
// ErrTokenInvalid so callers can log the category.
func (s *TokenService) Validate(tokenStr string) (Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		default:
			// Bad signature, wrong issuer, wrong algorithm, ...
			return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	c, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("%w: bad claims", ErrTokenInvalid)
	}
	if c.Subject == "" {
		return Claims{}, fmt.Errorf("%w: token has no subject", ErrTokenInvalid)
	}

	return Claims{UserID: c.Subject, Email: c.Email}, nil
}
