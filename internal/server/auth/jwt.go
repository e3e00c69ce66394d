// Package auth issues and verifies the bearer tokens handed out on register
// and login. Tokens are HS256 JWTs: header.payload.signature, each segment
// base64url encoded.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Verification failures. ParseToken returns exactly one of these for any
// rejected token; callers at the service boundary collapse them to "invalid".
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrIssuerMismatch   = errors.New("token issuer mismatch")
	ErrAudienceMismatch = errors.New("token audience mismatch")
	ErrTokenExpired     = errors.New("token expired")
)

// Configuration errors, reported by NewTokenCodec.
var (
	ErrWeakSigningKey = fmt.Errorf("signing key must be at least %d bytes", common.MinSigningKeyLength)
	ErrEmptyIssuer    = errors.New("token issuer must not be empty")
	ErrEmptyAudience  = errors.New("token audience must not be empty")
)

var signingMethod = jwt.SigningMethodHS256

// Claims carried by every token. Subject holds the identity.
type Claims struct {
	jwt.RegisteredClaims
}

// expiryFor rounds now+ttl up to the next NumericDate tick so that a
// positive ttl always yields a token that is valid at issue time.
func expiryFor(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if ttl <= 0 {
		return exp
	}
	if t := exp.Truncate(jwt.TimePrecision); t.Before(exp) {
		return t.Add(jwt.TimePrecision)
	}
	return exp
}

// GenerateToken signs a token for subject valid from now until now+ttl.
// A ttl <= 0 produces a token that is already expired.
func GenerateToken(subject, issuer, audience string, key []byte, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(signingMethod, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiryFor(now, ttl)),
		},
	})

	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ParseToken verifies tokenString against key, issuer and audience as of now
// and returns its claims. Checks run in order: shape, decoding, signature,
// issuer/audience, expiry. Any failure is returned as one of the Err* values
// above.
func ParseToken(tokenString string, key []byte, issuer, audience string, now time.Time) (*Claims, error) {
	if !hasThreeSegments(tokenString) {
		return nil, ErrMalformedToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}

func hasThreeSegments(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// classify maps jwt errors onto our taxonomy. jwt joins every failed claim
// check into one error, so issuer/audience are tested before expiry to keep
// the reported reason stable.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudienceMismatch
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrTokenExpired
	default:
		return ErrMalformedToken
	}
}
