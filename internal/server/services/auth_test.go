package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/cryptox"
	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/auth"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKey  = []byte("0123456789abcdef0123456789abcdef")
	testTime = time.Date(2025, 10, 27, 14, 0, 0, 0, time.UTC)
)

func newHasher(t *testing.T) *cryptox.PasswordHasher {
	t.Helper()
	h, err := cryptox.NewPasswordHasher(cryptox.Argon2Params{
		MemoryKiB: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	require.NoError(t, err)
	return h
}

func newCodec(t *testing.T, ttl time.Duration, now func() time.Time) *auth.TokenCodec {
	t.Helper()
	c, err := auth.NewTokenCodec(testKey, common.DefaultIssuer, common.DefaultAudience, ttl, auth.WithClock(now))
	require.NoError(t, err)
	return c
}

func newService(t *testing.T, opts ...Option) (*AuthService, *credentials.MemoryRepository) {
	t.Helper()
	store := credentials.NewMemoryRepository()
	clock := func() time.Time { return testTime }
	svc := NewAuthService(store, newHasher(t), newCodec(t, time.Hour, clock), logging.Nop{}, append([]Option{WithClock(clock)}, opts...)...)
	return svc, store
}

// --- fakes ---

type fakeStore struct {
	insertErr error
	findOut   *models.Credential
	findErr   error
	calls     int
}

func (f *fakeStore) InsertIfAbsent(_ context.Context, identity, hash string, at time.Time) (*models.Credential, error) {
	f.calls++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	return &models.Credential{ID: "id-1", Identity: identity, PasswordHash: hash, CreatedAt: at}, nil
}

func (f *fakeStore) FindByIdentity(context.Context, string) (*models.Credential, error) {
	f.calls++
	return f.findOut, f.findErr
}

type fakeHasher struct {
	hashErr  error
	verified []string
}

func (f *fakeHasher) Hash(p string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "h:" + p, nil
}

func (f *fakeHasher) Verify(p, encoded string) bool {
	f.verified = append(f.verified, encoded)
	return encoded == "h:"+p
}

type fakeTokens struct{ issueErr error }

func (f fakeTokens) Issue(subject string) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return "a.b.c", nil
}

func (fakeTokens) Verify(string) (*auth.Claims, error) { return nil, auth.ErrMalformedToken }

// --- tests ---

func TestRegister_ThenValidate(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "test@example.com", "Password123!")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", res.Identity)
	assert.Len(t, strings.Split(res.Token, "."), 3)
	assert.True(t, svc.ValidateToken(ctx, res.Token))

	stored, err := store.FindByIdentity(ctx, "test@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123!", stored.PasswordHash)
	assert.True(t, testTime.Equal(stored.CreatedAt))
}

func TestRegister_Duplicate(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dup@example.com", "first")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "dup@example.com", "second")
	require.ErrorIs(t, err, common.ErrDuplicateIdentity)
	assert.Equal(t, 1, store.Len())

	// the original password still wins
	_, err = svc.Login(ctx, "dup@example.com", "first")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "dup@example.com", "second")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestRegister_EmptyIdentityPolicy(t *testing.T) {
	allowed, _ := newService(t)
	res, err := allowed.Register(context.Background(), "", "Password123!")
	require.NoError(t, err)
	assert.Equal(t, "", res.Identity)

	store := &fakeStore{}
	strict := NewAuthService(store, &fakeHasher{}, fakeTokens{}, logging.Nop{}, WithEmptyIdentityAllowed(false))
	_, err = strict.Register(context.Background(), "", "Password123!")
	require.ErrorIs(t, err, common.ErrInvalidIdentity)
	assert.Zero(t, store.calls)
}

func TestRegister_LongPassword(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	long := strings.Repeat("a", 1000)

	_, err := svc.Register(ctx, "long@example.com", long)
	require.NoError(t, err)

	stored, err := store.FindByIdentity(ctx, "long@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, long, stored.PasswordHash)

	_, err = svc.Login(ctx, "long@example.com", long)
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "long@example.com", long[:999])
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestRegister_FailurePropagation(t *testing.T) {
	dbErr := errors.New("connection reset")

	tests := []struct {
		name   string
		store  *fakeStore
		hasher *fakeHasher
		tokens fakeTokens
		want   error
	}{
		{"hash failure", &fakeStore{}, &fakeHasher{hashErr: errors.New("no entropy")}, fakeTokens{}, nil},
		{"store failure", &fakeStore{insertErr: dbErr}, &fakeHasher{}, fakeTokens{}, dbErr},
		{"token failure", &fakeStore{}, &fakeHasher{}, fakeTokens{issueErr: errors.New("sign")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.store, tt.hasher, tt.tokens, logging.Nop{})
			_, err := svc.Register(context.Background(), "u@example.com", "pw")
			require.Error(t, err)
			assert.NotErrorIs(t, err, common.ErrDuplicateIdentity)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "login@example.com", "Password123!")
	require.NoError(t, err)

	tests := []struct {
		name     string
		identity string
		password string
		wantErr  error
	}{
		{"correct", "login@example.com", "Password123!", nil},
		{"wrong password", "login@example.com", "WrongPassword", common.ErrInvalidCredentials},
		{"unknown identity", "nobody@example.com", "Password123!", common.ErrInvalidCredentials},
		{"identity is case sensitive", "LOGIN@example.com", "Password123!", common.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tt.identity, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.identity, res.Identity)
			assert.True(t, svc.ValidateToken(ctx, res.Token))
		})
	}
}

func TestLogin_UnknownIdentityStillVerifies(t *testing.T) {
	h := &fakeHasher{}
	svc := NewAuthService(&fakeStore{findErr: common.ErrorNotFound}, h, fakeTokens{}, logging.Nop{})

	_, err := svc.Login(context.Background(), "ghost", "pw")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	require.Len(t, h.verified, 1)
	assert.True(t, strings.HasPrefix(h.verified[0], "h:"), "verified against %q", h.verified[0])
	assert.Len(t, h.verified[0], len("h:")+32)
}

func TestLogin_DummyHashFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewSlogLogger(&buf, logging.FormatText, slog.LevelInfo)
	require.NoError(t, err)

	h := &fakeHasher{hashErr: errors.New("out of memory")}
	svc := NewAuthService(&fakeStore{findErr: common.ErrorNotFound}, h, fakeTokens{}, logger)

	for range 2 {
		_, err = svc.Login(context.Background(), "ghost", "pw")
		require.ErrorIs(t, err, common.ErrInvalidCredentials)
	}

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "dummy hash unavailable")
	assert.Contains(t, out, "out of memory")
	assert.Equal(t, 1, strings.Count(out, "dummy hash unavailable"), "reported once")
}

func TestLogin_StoreFailureIsNotInvalidCredentials(t *testing.T) {
	dbErr := errors.New("timeout")
	svc := NewAuthService(&fakeStore{findErr: dbErr}, &fakeHasher{}, fakeTokens{}, logging.Nop{})

	_, err := svc.Login(context.Background(), "u", "pw")
	require.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	assert.False(t, svc.ValidateToken(ctx, ""))
	assert.False(t, svc.ValidateToken(ctx, "invalid.token.here"))
	assert.False(t, svc.ValidateToken(ctx, "not-a-token"))

	other, err := auth.NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"), common.DefaultIssuer, common.DefaultAudience, time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue("x@example.com")
	require.NoError(t, err)
	assert.False(t, svc.ValidateToken(ctx, foreign))
}

func TestValidateToken_EmptySkipsCodec(t *testing.T) {
	store := &fakeStore{}
	svc := NewAuthService(store, &fakeHasher{}, fakeTokens{}, logging.Nop{})
	assert.False(t, svc.ValidateToken(context.Background(), ""))
	assert.Zero(t, store.calls)
}

func TestValidateToken_Expiry(t *testing.T) {
	now := testTime
	clock := func() time.Time { return now }

	svc := NewAuthService(credentials.NewMemoryRepository(), newHasher(t), newCodec(t, time.Minute, clock), logging.Nop{})
	res, err := svc.Register(context.Background(), "exp@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, svc.ValidateToken(context.Background(), res.Token))

	now = testTime.Add(time.Minute)
	assert.False(t, svc.ValidateToken(context.Background(), res.Token))
}

func TestValidateToken_NonPositiveTTL(t *testing.T) {
	clock := func() time.Time { return testTime }
	for _, ttl := range []time.Duration{0, -time.Second} {
		svc := NewAuthService(credentials.NewMemoryRepository(), newHasher(t), newCodec(t, ttl, clock), logging.Nop{})
		res, err := svc.Register(context.Background(), "zero@example.com", "pw")
		require.NoError(t, err)
		assert.False(t, svc.ValidateToken(context.Background(), res.Token), "ttl=%s", ttl)
	}
}

func TestRegister_ConcurrentSameIdentity(t *testing.T) {
	svc, store := newService(t)
	const n = 16

	var (
		wg         sync.WaitGroup
		ok, dup    atomic.Int32
		unexpected atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Register(context.Background(), "race@example.com", "pw")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, common.ErrDuplicateIdentity):
				dup.Add(1)
			default:
				unexpected.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, n-1, dup.Load())
	assert.Zero(t, unexpected.Load())
	assert.Equal(t, 1, store.Len())
}
