package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed lifetime of a session token. Expiry is enforced
// by the verifier; there is no server-side revocation list.
const SessionTTL = 30 * 24 * time.Hour

// ErrInvalidToken is returned for any verification failure: bad signature,
// malformed payload, or expiry. Callers must not learn which sub-check failed.
var ErrInvalidToken = errors.New("invalid or expired session token")

type sessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenIssuer creates and validates signed session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration

	// now is overridable for expiry tests.
	now func() time.Time
}

// NewTokenIssuer creates a token issuer with the given signing secret.
// The secret comes from configuration; config validation guarantees it is
// non-empty before the issuer is constructed.
func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{
		secret: secret,
		ttl:    SessionTTL,
		now:    time.Now,
	}
}

// Issue creates a signed session token embedding the user ID.
func (ti *TokenIssuer) Issue(userID string) (string, error) {
	now := ti.now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(ti.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks signature integrity and expiry and returns the embedded
// user ID. All failures collapse into ErrInvalidToken.
func (ti *TokenIssuer) Verify(token string) (string, error) {
	claims := &sessionClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return ti.now() }))
	if err != nil || !tok.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
