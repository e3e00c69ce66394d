// Package services contains server-side business logic. AuthService handles
// registration, login and token validation on top of a credential store.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/auth"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/credentials"
)

// PasswordHasher turns plaintext passwords into stored hashes and back.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) bool
}

// TokenCodec issues and verifies signed identity tokens.
type TokenCodec interface {
	Issue(subject string) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// AuthResult is returned by a successful Register or Login.
type AuthResult struct {
	Identity string
	Token    string
}

// Option customizes an AuthService.
type Option func(*AuthService)

// WithEmptyIdentityAllowed controls whether "" is accepted as an identity.
func WithEmptyIdentityAllowed(allow bool) Option {
	return func(s *AuthService) { s.allowEmptyIdentity = allow }
}

// WithClock overrides the clock used for credential creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// AuthService is safe for concurrent use. The only shared mutable state lives
// in the credential store.
type AuthService struct {
	store              credentials.Repository
	hasher             PasswordHasher
	tokens             TokenCodec
	logger             logging.Logger
	allowEmptyIdentity bool
	now                func() time.Time

	// dummyHash is verified against on unknown identities so Login takes
	// about as long whether or not the identity exists.
	dummyHash func() string
}

// NewAuthService wires the store, hasher and token codec together.
func NewAuthService(store credentials.Repository, hasher PasswordHasher, tokens TokenCodec, logger logging.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		store:              store,
		hasher:             hasher,
		tokens:             tokens,
		logger:             logger.With("module", "auth"),
		allowEmptyIdentity: true,
		now:                time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.dummyHash = sync.OnceValue(func() string {
		pw, err := common.MakeRandHexString(16)
		if err == nil {
			var h string
			if h, err = hasher.Hash(pw); err == nil {
				return h
			}
		}
		s.logger.Error(context.Background(), "dummy hash unavailable, unknown-identity logins will answer faster", "error", err)
		return ""
	})
	return s
}

// Register creates a credential for identity and returns a fresh token.
// A taken identity yields common.ErrDuplicateIdentity.
func (s *AuthService) Register(ctx context.Context, identity, password string) (*AuthResult, error) {
	if identity == "" && !s.allowEmptyIdentity {
		return nil, common.ErrInvalidIdentity
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	cred, err := s.store.InsertIfAbsent(ctx, identity, hash, s.now().UTC())
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Info(ctx, "registration rejected, identity taken", "identity", identity)
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("store credential: %w", err)
	}

	token, err := s.tokens.Issue(cred.Identity)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info(ctx, "identity registered", "identity", cred.Identity, "id", cred.ID)
	return &AuthResult{Identity: cred.Identity, Token: token}, nil
}

// Login checks password against the stored hash for identity. Unknown
// identities and wrong passwords both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identity, password string) (*AuthResult, error) {
	cred, err := s.store.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash())
			s.logger.Info(ctx, "login failed", "identity", identity)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	if !s.hasher.Verify(password, cred.PasswordHash) {
		s.logger.Info(ctx, "login failed", "identity", identity)
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(cred.Identity)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Debug(ctx, "login succeeded", "identity", cred.Identity)
	return &AuthResult{Identity: cred.Identity, Token: token}, nil
}

// ValidateToken reports whether token is well-formed, correctly signed,
// addressed to this issuer and audience, and unexpired.
func (s *AuthService) ValidateToken(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "reason", err.Error())
		return false
	}

	s.logger.Debug(ctx, "token accepted", "subject", claims.Subject)
	return true
}
