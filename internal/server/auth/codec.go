package auth

import (
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
)

// TokenCodec binds a signing key, issuer, audience and lifetime so callers
// issue and verify tokens without passing secrets around. Several codecs
// with different settings can coexist.
type TokenCodec struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// CodecOption customises a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec validates the signing parameters. A key shorter than
// common.MinSigningKeyLength is rejected here so misconfiguration fails at
// startup rather than on the first request.
func NewTokenCodec(key []byte, issuer, audience string, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(key) < common.MinSigningKeyLength {
		return nil, ErrWeakSigningKey
	}
	if issuer == "" {
		return nil, ErrEmptyIssuer
	}
	if audience == "" {
		return nil, ErrEmptyAudience
	}

	c := &TokenCodec{
		key:      append([]byte(nil), key...),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue returns a signed token for subject.
func (c *TokenCodec) Issue(subject string) (string, error) {
	return GenerateToken(subject, c.issuer, c.audience, c.key, c.ttl, c.now())
}

// Verify parses token and returns its claims, or one of the Err* reasons.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	return ParseToken(token, c.key, c.issuer, c.audience, c.now())
}
